// Package alignment estimates the affine transform mapping reference points
// on an old map image onto a replacement image, and judges whether that
// transform is trustworthy enough to realign every marker with.
package alignment

import (
	"fmt"
	"math"

	"map-migrate/pkg/geometry"
)

// Result holds an estimated transform together with its degeneracy status.
// A degenerate result is still returned (the caller typically asks the user
// for better reference points) but must not be applied to marker data.
type Result struct {
	Transform   geometry.AffineTransform
	Determinant float64
	Degenerate  bool
}

// ComputeAffineTransform computes the least-squares affine transform mapping
// srcPoints onto dstPoints. At least 3 pairs are required; with exactly 3
// non-collinear pairs the fit is exact.
//
// Collinear or duplicated source points do not produce an error: the result
// is returned with Degenerate set so the caller can warn and collect more
// points instead of aborting.
func ComputeAffineTransform(srcPoints, dstPoints []geometry.Point2D) (Result, error) {
	if len(srcPoints) != len(dstPoints) {
		return Result{}, &ValidationError{
			Reason: fmt.Sprintf("point count mismatch: %d source vs %d target", len(srcPoints), len(dstPoints)),
		}
	}
	if len(srcPoints) < 3 {
		return Result{}, &ValidationError{
			Reason: fmt.Sprintf("need at least 3 point pairs, got %d", len(srcPoints)),
		}
	}

	// Normal equations for the design matrix with rows [x y 1]. The same
	// 3x3 normal matrix serves both axes; only the right-hand side differs.
	var sxx, sxy, syy, sx, sy float64
	for _, p := range srcPoints {
		sxx += p.X * p.X
		sxy += p.X * p.Y
		syy += p.Y * p.Y
		sx += p.X
		sy += p.Y
	}
	n := float64(len(srcPoints))
	normal := [3][3]float64{
		{sxx, sxy, sx},
		{sxy, syy, sy},
		{sx, sy, n},
	}

	var bx, by [3]float64
	for i, p := range srcPoints {
		d := dstPoints[i]
		bx[0] += p.X * d.X
		bx[1] += p.Y * d.X
		bx[2] += d.X
		by[0] += p.X * d.Y
		by[1] += p.Y * d.Y
		by[2] += d.Y
	}

	row1, okX := solveLinear3(normal, bx)
	row2, okY := solveLinear3(normal, by)
	if !okX || !okY {
		// Singular normal matrix: collinear or duplicated source points.
		return Result{Degenerate: true}, nil
	}

	t := geometry.AffineTransform{
		A: row1[0], B: row1[1], TX: row1[2],
		C: row2[0], D: row2[1], TY: row2[2],
	}
	det := t.Determinant()

	return Result{
		Transform:   t,
		Determinant: det,
		Degenerate:  math.Abs(det) < singularEpsilon || math.IsNaN(det),
	}, nil
}

// BatchApply applies the transform to every point, preserving order. Only
// the output slice is allocated.
func BatchApply(points []geometry.Point2D, t geometry.AffineTransform) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// Inverse returns the inverse transform, or a SingularMatrixError when the
// determinant is numerically zero. A near-singular transform has no usable
// inverse; refusing here beats handing the caller corrupted coordinates.
func Inverse(t geometry.AffineTransform) (geometry.AffineTransform, error) {
	inv, ok := t.Inverse()
	if !ok {
		return geometry.AffineTransform{}, &SingularMatrixError{Determinant: t.Determinant()}
	}
	return inv, nil
}
