// Package ptdberr collects the sentinel error values shared across the
// table engine, so callers can classify a failure with errors.Is instead
// of matching on strings.
package ptdberr

import "errors"

var (
	// ErrParse is returned when a REPL command is malformed or an id
	// token does not parse as a signed decimal integer.
	ErrParse = errors.New("parse error")

	// ErrFieldTooLong is returned when username or email exceeds its
	// fixed byte budget.
	ErrFieldTooLong = errors.New("field too long")

	// ErrOutOfCapacity is returned when a page number would exceed the
	// pager's bounded slot array, or the table is already at max rows.
	ErrOutOfCapacity = errors.New("out of capacity")

	// ErrDuplicateKey is returned when an insert's id already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrCorruptFile is returned when a database file's length is not a
	// multiple of the page size, or a page read came back short.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrUnsupported is returned by operations the one-level core cannot
	// perform, such as splitting a non-root internal node.
	ErrUnsupported = errors.New("unsupported")
)
