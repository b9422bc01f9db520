package geometry

import "sort"

// ConvexHull computes the convex hull of a set of points using the monotone
// chain algorithm. Returns the hull vertices in counter-clockwise order.
// Collinear input collapses to a 2-point (or smaller) hull.
func ConvexHull(points []Point2D) []Point2D {
	if len(points) < 3 {
		return points
	}

	pts := make([]Point2D, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Lower hull
	var lower []Point2D
	for _, p := range pts {
		for len(lower) > 1 && crossProduct(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	// Upper hull
	var upper []Point2D
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) > 1 && crossProduct(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Concatenate, dropping the duplicated endpoints.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// PolygonArea returns the area of a simple polygon via the shoelace formula.
// Vertex order does not matter; the result is always non-negative.
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// TriangleArea returns the area of the triangle spanned by three points.
func TriangleArea(a, b, c Point2D) float64 {
	area := crossProduct(a, b, c) / 2
	if area < 0 {
		area = -area
	}
	return area
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
