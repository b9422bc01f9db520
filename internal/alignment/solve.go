package alignment

import "math"

// singularEpsilon is the pivot/determinant magnitude below which a matrix is
// treated as singular. It marks the boundary between a noisy-but-usable fit
// and a degenerate one.
const singularEpsilon = 1e-10

// solveLinear3 solves the 3x3 system A*v = b using Gaussian elimination with
// partial pivoting. Returns ok=false when a pivot falls below
// singularEpsilon, i.e. the system is singular or near-singular.
func solveLinear3(a [3][3]float64, b [3]float64) (v [3]float64, ok bool) {
	// Augmented matrix, worked on in place.
	var m [3][4]float64
	for i := 0; i < 3; i++ {
		m[i][0], m[i][1], m[i][2], m[i][3] = a[i][0], a[i][1], a[i][2], b[i]
	}

	for col := 0; col < 3; col++ {
		// Pick the row with the largest pivot magnitude.
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < singularEpsilon {
			return [3]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		// Eliminate below.
		for row := col + 1; row < 3; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	// Back substitution.
	for i := 2; i >= 0; i-- {
		sum := m[i][3]
		for k := i + 1; k < 3; k++ {
			sum -= m[i][k] * v[k]
		}
		v[i] = sum / m[i][i]
	}

	return v, true
}
