package normalizer

import (
	"errors"
	"strings"
)

// ErrStructuralValidation indicates a required top-level section is missing or malformed.
var ErrStructuralValidation = errors.New("structural validation error")

// StructuralValidationError lists every required section problem found in a document.
// It is fatal: the document is never written once this is returned.
type StructuralValidationError struct {
	Problems []string
}

func (e *StructuralValidationError) Error() string {
	return "structural validation failed: " + strings.Join(e.Problems, "; ")
}

// Is reports whether target matches this error type.
func (e *StructuralValidationError) Is(target error) bool {
	return target == ErrStructuralValidation
}
