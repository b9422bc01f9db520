package alignment

import "fmt"

// ValidationError reports a malformed estimation call: too few point pairs
// or source/target sets of different lengths.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid point correspondences: " + e.Reason
}

// SingularMatrixError reports an attempt to invert a transform whose
// determinant is numerically zero.
type SingularMatrixError struct {
	Determinant float64
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("singular matrix (determinant %g): transform is not invertible", e.Determinant)
}
