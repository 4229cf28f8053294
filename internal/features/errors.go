package features

import (
	"errors"
	"fmt"
)

var (
	// ErrJoinMismatch means a merge step lost rows, which signals an upstream schema or key mismatch.
	ErrJoinMismatch = errors.New("join mismatch")

	// ErrUnknownEntity means a queried player or team has no matching rows.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrIncompleteMatchup means a shooting-profile merge produced no row at inference time.
	ErrIncompleteMatchup = fmt.Errorf("incomplete matchup data: %w", ErrUnknownEntity)

	// ErrNonNumeric means a feature value could not be represented as a number.
	ErrNonNumeric = errors.New("non-numeric feature value")
)
