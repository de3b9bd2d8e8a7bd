package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidRationality is returned for negative, NaN or infinite rationality
// values and for inverted sweep ranges.
var ErrInvalidRationality = errors.New("invalid rationality")

// NotFoundError is returned when a melody or QUD is outside the inventory.
type NotFoundError struct {
	Kind string // "melody" or "qud"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Key)
}

func melodyNotFound(m Melody) error {
	return &NotFoundError{Kind: "melody", Key: m.String()}
}

func qudNotFound(q QUD) error {
	return &NotFoundError{Kind: "qud", Key: string(q)}
}

// DegenerateCompatibilityError is returned when a melody has no compatible
// QUD, which would leave its speaker utility undefined.
type DegenerateCompatibilityError struct {
	Melody Melody
	Row    int // 1-based data row, header excluded
}

func (e *DegenerateCompatibilityError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("melody %q (row %d) has no compatible QUD", e.Melody, e.Row)
	}
	return fmt.Sprintf("melody %q has no compatible QUD", e.Melody)
}

// MalformedInputError describes a compatibility table that does not match the
// inventory. Row and Column are 1-based positions in the raw input; zero means
// the error is not tied to that dimension.
type MalformedInputError struct {
	Row    int
	Column int
	Value  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	msg := "malformed input"
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Column > 0 {
		msg += fmt.Sprintf(" column %d", e.Column)
	}
	msg += ": " + e.Reason
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: %q)", e.Value)
	}
	return msg
}
