package alignment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-migrate/pkg/geometry"
)

const tolerance = 1e-6

func requireTransformNear(t *testing.T, want, got geometry.AffineTransform) {
	t.Helper()
	require.InDelta(t, want.A, got.A, tolerance)
	require.InDelta(t, want.B, got.B, tolerance)
	require.InDelta(t, want.C, got.C, tolerance)
	require.InDelta(t, want.D, got.D, tolerance)
	require.InDelta(t, want.TX, got.TX, tolerance)
	require.InDelta(t, want.TY, got.TY, tolerance)
}

func TestComputeAffineTransformIdentity(t *testing.T) {
	points := []geometry.Point2D{{X: 10, Y: 20}, {X: 300, Y: 40}, {X: 150, Y: 400}}

	result, err := ComputeAffineTransform(points, points)
	require.NoError(t, err)
	require.False(t, result.Degenerate)

	requireTransformNear(t, geometry.Identity(), result.Transform)
	assert.InDelta(t, 1.0, result.Determinant, tolerance)
}

func TestComputeAffineTransformTranslation(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	dst := make([]geometry.Point2D, len(src))
	for i, p := range src {
		dst[i] = p.Add(geometry.Point2D{X: 25, Y: -13})
	}

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)
	require.False(t, result.Degenerate)

	requireTransformNear(t, geometry.Translation(25, -13), result.Transform)
}

func TestComputeAffineTransformScale(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	dst := []geometry.Point2D{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 0, Y: 200}}

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)
	require.False(t, result.Degenerate)

	requireTransformNear(t, geometry.Scale(2, 2), result.Transform)
	assert.InDelta(t, 4.0, result.Determinant, tolerance)
}

func TestComputeAffineTransformRotationRecovery(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}

	for _, degrees := range []float64{45, 90, 180} {
		rot := geometry.Rotation(degrees * math.Pi / 180)
		dst := BatchApply(src, rot)

		result, err := ComputeAffineTransform(src, dst)
		require.NoError(t, err)
		require.False(t, result.Degenerate)
		requireTransformNear(t, rot, result.Transform)
	}
}

func TestComputeAffineTransformOverdetermined(t *testing.T) {
	truth := geometry.AffineTransform{A: 1.5, B: 0.2, TX: 12, C: -0.3, D: 2.0, TY: -7}

	src := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100},
		{X: 50, Y: 50}, {X: 23, Y: 71}, {X: 310, Y: 42}, {X: 7, Y: 260},
		{X: 180, Y: 195}, {X: 66, Y: 8},
	}
	dst := BatchApply(src, truth)

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)
	require.False(t, result.Degenerate)
	requireTransformNear(t, truth, result.Transform)
}

func TestComputeAffineTransformConcreteScenario(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	dst := []geometry.Point2D{{X: 10, Y: 20}, {X: 210, Y: 20}, {X: 10, Y: 220}}

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)

	want := geometry.AffineTransform{A: 2, B: 0, TX: 10, C: 0, D: 2, TY: 20}
	requireTransformNear(t, want, result.Transform)

	moved := result.Transform.Apply(geometry.Point2D{X: 50, Y: 50})
	assert.InDelta(t, 110, moved.X, tolerance)
	assert.InDelta(t, 120, moved.Y, tolerance)
}

func TestComputeAffineTransformCollinearDegenerate(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}}
	dst := []geometry.Point2D{{X: 5, Y: 1}, {X: 50, Y: 2}, {X: 95, Y: 3}}

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)
	assert.True(t, result.Degenerate)
	assert.False(t, math.IsNaN(result.Transform.A))
}

func TestComputeAffineTransformDuplicateDegenerate(t *testing.T) {
	p := geometry.Point2D{X: 42, Y: 17}
	src := []geometry.Point2D{p, p, p}
	dst := []geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}

	result, err := ComputeAffineTransform(src, dst)
	require.NoError(t, err)
	assert.True(t, result.Degenerate)
}

func TestComputeAffineTransformValidation(t *testing.T) {
	var vErr *ValidationError

	_, err := ComputeAffineTransform(
		[]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}},
		[]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}},
	)
	require.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "at least 3")

	_, err = ComputeAffineTransform(
		[]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		[]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}},
	)
	require.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "mismatch")
}

func TestBatchApplyPreservesOrder(t *testing.T) {
	points := []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}, {X: 7, Y: 8}}
	shift := geometry.Translation(10, 100)

	out := BatchApply(points, shift)
	require.Len(t, out, len(points))
	for i, p := range points {
		assert.Equal(t, p.X+10, out[i].X)
		assert.Equal(t, p.Y+100, out[i].Y)
	}

	assert.Empty(t, BatchApply(nil, shift))
}

func TestInverseRoundTrip(t *testing.T) {
	transforms := []geometry.AffineTransform{
		geometry.Identity(),
		geometry.Translation(13, -7),
		geometry.Rotation(0.7),
		geometry.Scale(2.5, 0.4),
		{A: 1.5, B: 0.2, TX: 12, C: -0.3, D: 2.0, TY: -7},
	}
	points := []geometry.Point2D{{X: 0, Y: 0}, {X: 123, Y: -45}, {X: 0.5, Y: 1e4}}

	for _, tr := range transforms {
		inv, err := Inverse(tr)
		require.NoError(t, err)

		for _, p := range points {
			back := inv.Apply(tr.Apply(p))
			assert.InDelta(t, p.X, back.X, tolerance)
			assert.InDelta(t, p.Y, back.Y, tolerance)
		}
	}
}

func TestInverseSingularRejected(t *testing.T) {
	singular := geometry.AffineTransform{A: 1, B: 2, C: 2, D: 4}

	_, err := Inverse(singular)
	require.Error(t, err)

	var sErr *SingularMatrixError
	require.True(t, errors.As(err, &sErr))
	assert.InDelta(t, 0, sErr.Determinant, tolerance)
}

func TestSolveLinear3(t *testing.T) {
	// x=1, y=-2, z=3
	a := [3][3]float64{{2, 1, 1}, {1, 3, 2}, {1, 0, 0}}
	b := [3]float64{3, 1, 1}

	v, ok := solveLinear3(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1, v[0], tolerance)
	assert.InDelta(t, -2, v[1], tolerance)
	assert.InDelta(t, 3, v[2], tolerance)

	_, ok = solveLinear3([3][3]float64{{1, 2, 3}, {2, 4, 6}, {3, 6, 9}}, [3]float64{1, 2, 3})
	assert.False(t, ok)
}
