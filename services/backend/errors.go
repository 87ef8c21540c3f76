package backend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup or update matched no row
var ErrNotFound = errors.New("record not found")

// ErrCodeNotGenerated is returned when a created case came back without a
// kode_kjsb
var ErrCodeNotGenerated = errors.New("kode_kjsb not generated")

// Error is a failure reported by the backend. Message is shown to the user
// verbatim.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %s", e.Code)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message extracts the user-facing message from any backend failure
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Error()
	}
	return err.Error()
}
