package vbb

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError reports a violation of the VBB byte format. Offset is the
// absolute file position of the offending byte.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vbb: format error at offset %d: %s", e.Offset, e.Reason)
}

func formatErrorf(offset int64, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is, or wraps, a FormatError. False for
// IO failures.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
