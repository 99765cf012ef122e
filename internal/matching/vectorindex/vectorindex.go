// internal/matching/vectorindex/vectorindex.go
package vectorindex

import "errors"

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyID           = errors.New("vector id is required")
)
