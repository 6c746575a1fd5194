// Command ptdb is the line-oriented REPL over the table engine.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ptdb/ptdb/internal/repl"
	"github.com/ptdb/ptdb/internal/table"
)

func main() {
	path := "ptdb.db"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	tbl, err := table.Open(path)
	if err != nil {
		log.Fatalf("ptdb: open %s: %v", path, err)
	}

	if err := repl.Run(tbl, os.Stdin, os.Stdout); err != nil {
		tbl.Close()
		log.Fatalf("ptdb: %v", err)
	}

	if err := tbl.Close(); err != nil {
		log.Fatalf("ptdb: close: %v", err)
	}
	fmt.Fprintln(os.Stdout, "bye")
}
