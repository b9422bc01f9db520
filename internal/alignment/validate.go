package alignment

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"map-migrate/pkg/geometry"
)

// Options configures the anomaly thresholds. The defaults suit map
// replacements where source and target depict the same area at broadly
// similar resolution; widen the scale band when migrating between maps of
// very different pixel density.
type Options struct {
	MinScale float64 // per-axis scale below this is flagged as extreme
	MaxScale float64 // per-axis scale above this is flagged as extreme
	MaxShear float64 // normalized shear magnitude above this is flagged
}

// DefaultOptions returns the default anomaly thresholds.
func DefaultOptions() Options {
	return Options{
		MinScale: 0.2,
		MaxScale: 5.0,
		MaxShear: 0.2,
	}
}

// AnomalyReport describes the structure of an estimated transform in terms a
// user can act on: how much it scales, rotates and shears, and whether any
// of that looks like a point-selection mistake.
type AnomalyReport struct {
	ScaleX          float64 // stretch along the transformed x-axis
	ScaleY          float64 // stretch along the transformed y-axis
	RotationDeg     float64 // orientation of the transformed x-axis, degrees
	Shear           float64 // normalized axis coupling; 0 for similarity transforms
	Determinant     float64
	ConditionNumber float64 // ratio of the 2x2 part's singular values

	Reflected    bool // negative determinant: the map would be mirrored
	ExtremeScale bool
	ExtremeShear bool
	Degenerate   bool
}

// DetectAnomalies inspects a transform's 2x2 linear part and flags
// structural problems. Reflection and degeneracy almost always mean a
// mis-picked reference point; extreme scale or shear usually means the two
// point sets do not describe the same physical layout.
func DetectAnomalies(t geometry.AffineTransform, opts Options) AnomalyReport {
	det := t.Determinant()

	report := AnomalyReport{
		ScaleX:      math.Hypot(t.A, t.C),
		ScaleY:      math.Hypot(t.B, t.D),
		RotationDeg: math.Atan2(t.C, t.A) * 180 / math.Pi,
		Determinant: det,
		Reflected:   det < 0,
		Degenerate:  math.Abs(det) < singularEpsilon || math.IsNaN(det),
	}

	// Off-diagonal coupling between the transformed axes, normalized by the
	// scale factors so the measure is resolution-independent. Zero for any
	// rotation+scale+translation; grows as the axes lose perpendicularity.
	if report.ScaleX > 0 && report.ScaleY > 0 {
		report.Shear = math.Abs(t.A*t.B+t.C*t.D) / (report.ScaleX * report.ScaleY)
	}

	// Singular values of the linear part give the true min/max stretch in
	// any direction, catching anisotropy the per-axis factors can miss.
	var svd mat.SVD
	if svd.Factorize(mat.NewDense(2, 2, []float64{t.A, t.B, t.C, t.D}), mat.SVDNone) {
		values := svd.Values(nil)
		if values[1] > singularEpsilon {
			report.ConditionNumber = values[0] / values[1]
		} else {
			report.ConditionNumber = math.Inf(1)
		}
	}

	report.ExtremeScale = report.ScaleX < opts.MinScale || report.ScaleX > opts.MaxScale ||
		report.ScaleY < opts.MinScale || report.ScaleY > opts.MaxScale
	report.ExtremeShear = report.Shear > opts.MaxShear

	return report
}

// RMSE returns the root-mean-square Euclidean residual, in pixels, between
// the transformed source points and their paired targets. Zero for empty
// input; +Inf for mismatched lengths.
func RMSE(srcPoints, dstPoints []geometry.Point2D, t geometry.AffineTransform) float64 {
	if len(srcPoints) != len(dstPoints) {
		return math.Inf(1)
	}
	if len(srcPoints) == 0 {
		return 0
	}

	squared := make([]float64, len(srcPoints))
	for i := range srcPoints {
		d := t.Apply(srcPoints[i]).Distance(dstPoints[i])
		squared[i] = d * d
	}
	return math.Sqrt(stat.Mean(squared, nil))
}
