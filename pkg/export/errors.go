package export

import (
	"fmt"
	"strings"
)

// AllowedFormats lists the recognized export formats in the order they
// are reported to callers.
var AllowedFormats = []string{"json", "csv"}

// InvalidFormatError indicates a format value outside the recognized
// set. It is a caller-input error, not a system fault.
type InvalidFormatError struct {
	Format  string
	Allowed []string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("export: invalid format %q (allowed: %s)", e.Format, strings.Join(e.Allowed, ", "))
}

// NewInvalidFormatError creates an invalid format error carrying the
// full allowed set.
func NewInvalidFormatError(format string) *InvalidFormatError {
	return &InvalidFormatError{Format: format, Allowed: AllowedFormats}
}

// SerializationError indicates records could not be rendered even after
// degrading unencodable values to strings.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("export: serialization failed: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a serialization error wrapping the
// encoder failure.
func NewSerializationError(cause error) *SerializationError {
	return &SerializationError{Cause: cause}
}
