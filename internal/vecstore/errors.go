package vecstore

import "errors"

var (
	// ErrVectorLengthMismatch indicates two vectors have different dimensions.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")

	// ErrNoLabels indicates a build was requested for an empty vocabulary.
	ErrNoLabels = errors.New("no labels to embed")

	// ErrDuplicateLabel indicates a label occurs on more than one store row.
	ErrDuplicateLabel = errors.New("duplicate label")

	// ErrLabelNotNormalized indicates a stored label is empty or differs
	// from its normalized form.
	ErrLabelNotNormalized = errors.New("label is not normalized")

	// ErrNotUnitLength indicates a row of a normalized store is not unit length.
	ErrNotUnitLength = errors.New("vector is not unit length")
)
