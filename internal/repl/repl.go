// Package repl implements the line-oriented command loop: parsing
// "insert"/"select" statements and the ".exit"/".btree" meta-commands,
// and dispatching each to the table engine.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ptdb/ptdb/internal/ptdberr"
	"github.com/ptdb/ptdb/internal/row"
	"github.com/ptdb/ptdb/internal/table"
)

type statementType int

const (
	stmtInsert statementType = iota
	stmtSelect
)

type statement struct {
	typ statementType
	row row.Row
}

// prepareStatement parses one non-meta input line into a statement.
// insert requires exactly four whitespace-separated tokens; the id token
// must parse as a signed decimal integer.
func prepareStatement(line string) (statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return statement{}, fmt.Errorf("repl: empty command: %w", ptdberr.ErrParse)
	}

	switch fields[0] {
	case "insert":
		if len(fields) != 4 {
			return statement{}, fmt.Errorf("repl: insert wants 3 arguments, got %d: %w", len(fields)-1, ptdberr.ErrParse)
		}
		id, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return statement{}, fmt.Errorf("repl: id %q is not an integer: %w", fields[1], ptdberr.ErrParse)
		}
		r, err := row.New(int32(id), fields[2], fields[3])
		if err != nil {
			return statement{}, err
		}
		return statement{typ: stmtInsert, row: r}, nil
	case "select":
		if len(fields) != 1 {
			return statement{}, fmt.Errorf("repl: select takes no arguments: %w", ptdberr.ErrParse)
		}
		return statement{typ: stmtSelect}, nil
	default:
		return statement{}, fmt.Errorf("repl: unrecognized keyword %q: %w", fields[0], ptdberr.ErrParse)
	}
}

// Run drives the command loop over in, writing output and the "db > "
// prompt to out, until ".exit" or in reaches EOF. It returns nil on a
// clean ".exit".
func Run(tbl *table.Table, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "db > ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch line {
			case ".exit":
				return nil
			case ".btree":
				if err := tbl.PrintTree(out); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
			default:
				fmt.Fprintf(out, "Error: unrecognized meta-command %q\n", line)
			}
			continue
		}

		stmt, err := prepareStatement(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		execute(tbl, stmt, out)
	}
}

func execute(tbl *table.Table, stmt statement, out io.Writer) {
	switch stmt.typ {
	case stmtInsert:
		if err := tbl.Insert(stmt.row); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Executed.")
	case stmtSelect:
		if err := tbl.Scan(table.ConsoleSink{W: out}); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Executed.")
	}
}
