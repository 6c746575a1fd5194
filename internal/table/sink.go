package table

import (
	"fmt"
	"io"

	"github.com/ptdb/ptdb/internal/row"
)

// ConsoleSink writes each row's text representation to w, one per line,
// the sink the REPL's "select" command feeds.
type ConsoleSink struct {
	W io.Writer
}

func (s ConsoleSink) Accept(r row.Row) error {
	_, err := fmt.Fprintln(s.W, r.String())
	return err
}

// SliceSink collects every row it receives, in the order seen. Tests use
// it to assert a scan's exact output.
type SliceSink struct {
	Rows []row.Row
}

func (s *SliceSink) Accept(r row.Row) error {
	s.Rows = append(s.Rows, r)
	return nil
}
