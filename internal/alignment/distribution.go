package alignment

import (
	"fmt"

	"map-migrate/pkg/geometry"
)

// collinearAreaRatio is the spanned-area/bounding-box-area ratio below which
// a point set is rejected as collinear. lowAreaRatio marks sets that are
// usable but concentrated enough to make the fit twitchy far from them.
const (
	collinearAreaRatio = 1e-6
	lowAreaRatio       = 0.1
)

// DistributionReport describes how well a reference point set is spread out.
type DistributionReport struct {
	Valid     bool
	Warning   string // empty when the distribution is unremarkable
	AreaRatio float64
}

// ValidatePointDistribution checks that the points span enough area to
// support a stable affine fit. Fewer than 3 points is always reported valid
// since no spread check is possible.
func ValidatePointDistribution(points []geometry.Point2D) DistributionReport {
	if len(points) < 3 {
		return DistributionReport{Valid: true}
	}

	bbox := geometry.BoundingBox(points)
	bboxArea := bbox.Area()
	if bboxArea <= 0 {
		// All points on one horizontal/vertical line, or all identical.
		return DistributionReport{
			Valid:   false,
			Warning: "reference points are collinear or duplicated; pick points spread across the map",
		}
	}

	var spanned float64
	if len(points) == 3 {
		spanned = geometry.TriangleArea(points[0], points[1], points[2])
	} else {
		spanned = geometry.PolygonArea(geometry.ConvexHull(points))
	}
	ratio := spanned / bboxArea

	switch {
	case ratio < collinearAreaRatio:
		return DistributionReport{
			Valid:     false,
			Warning:   "reference points are collinear or duplicated; pick points spread across the map",
			AreaRatio: ratio,
		}
	case ratio < lowAreaRatio:
		return DistributionReport{
			Valid:     true,
			Warning:   fmt.Sprintf("reference points span only %.1f%% of their bounding box; the fit may drift away from them", ratio*100),
			AreaRatio: ratio,
		}
	default:
		return DistributionReport{Valid: true, AreaRatio: ratio}
	}
}

// Suggestion proposes a location for an additional reference point, with a
// reason the UI can show next to it.
type Suggestion struct {
	Point  geometry.Point2D
	Reason string
}

// SuggestAdditionalPoints proposes where on the target image (of the given
// size) the user should add reference points. Empty quadrants are filled
// first; once every quadrant has coverage, the corners are suggested since
// they constrain the fit the most.
func SuggestAdditionalPoints(points []geometry.Point2D, bounds geometry.Size) []Suggestion {
	if len(points) == 0 {
		return cornerSuggestions(bounds)
	}

	halfW := bounds.Width / 2
	halfH := bounds.Height / 2
	quadrants := []struct {
		name string
		rect geometry.Rect
	}{
		{"top-left", geometry.Rect{X: 0, Y: 0, Width: halfW, Height: halfH}},
		{"top-right", geometry.Rect{X: halfW, Y: 0, Width: halfW, Height: halfH}},
		{"bottom-left", geometry.Rect{X: 0, Y: halfH, Width: halfW, Height: halfH}},
		{"bottom-right", geometry.Rect{X: halfW, Y: halfH, Width: halfW, Height: halfH}},
	}

	var suggestions []Suggestion
	for _, q := range quadrants {
		covered := false
		for _, p := range points {
			if q.rect.Contains(p) {
				covered = true
				break
			}
		}
		if !covered {
			suggestions = append(suggestions, Suggestion{
				Point:  q.rect.Center(),
				Reason: fmt.Sprintf("no points in %s quadrant", q.name),
			})
		}
	}

	if len(suggestions) == 0 {
		return cornerSuggestions(bounds)
	}
	return suggestions
}

func cornerSuggestions(bounds geometry.Size) []Suggestion {
	corners := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: bounds.Width, Y: 0},
		{X: 0, Y: bounds.Height},
		{X: bounds.Width, Y: bounds.Height},
	}
	suggestions := make([]Suggestion, len(corners))
	for i, c := range corners {
		suggestions[i] = Suggestion{Point: c, Reason: "corner"}
	}
	return suggestions
}
