package simtable

import "errors"

var (
	// ErrShape indicates the value grid does not match the label vocabularies.
	ErrShape = errors.New("similarity table shape mismatch")

	// ErrDuplicateLabel indicates a row or column label appears twice.
	ErrDuplicateLabel = errors.New("duplicate similarity table label")
)
