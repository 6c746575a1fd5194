// Command ptdbbench runs the same insert-then-scan workload against the
// table engine and against Pebble, writes a latency/memory CSV, and
// optionally renders a page-fill chart of the table engine's leaves.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ptdb/ptdb/internal/benchcompare"
	"github.com/ptdb/ptdb/internal/table"
)

func main() {
	rows := flag.Int("rows", 42, "rows to insert into each engine (capped by the one-level core's true ceiling; see DESIGN.md)")
	outDir := flag.String("out", "bench-out", "directory for the database files, CSV, and chart")
	plotPath := flag.String("plot", "", "if set, render a leaf page-fill bar chart to this PNG path")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("ptdbbench: %v", err)
	}

	tbl, err := table.Open(filepath.Join(*outDir, "ptdb.db"))
	if err != nil {
		log.Fatalf("ptdbbench: open table: %v", err)
	}
	defer tbl.Close()

	pebbleDir := filepath.Join(*outDir, "pebble")
	store, err := benchcompare.OpenPebbleStore(pebbleDir)
	if err != nil {
		log.Fatalf("ptdbbench: open pebble: %v", err)
	}
	defer store.Close()

	ptdbInsert, ptdbScan, err := benchcompare.InsertThenScan(tbl, *rows)
	if err != nil {
		log.Fatalf("ptdbbench: ptdb workload: %v", err)
	}
	pebbleInsert, pebbleScan, err := benchcompare.InsertThenScanPebble(store, *rows)
	if err != nil {
		log.Fatalf("ptdbbench: pebble workload: %v", err)
	}

	csvPath := filepath.Join(*outDir, "results.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("ptdbbench: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	results := []benchcompare.Result{ptdbInsert, ptdbScan, pebbleInsert, pebbleScan}
	if err := benchcompare.WriteCSV(w, results); err != nil {
		log.Fatalf("ptdbbench: write csv: %v", err)
	}
	fmt.Printf("wrote %s\n", csvPath)

	if *plotPath != "" {
		pageNums, fill, err := tbl.LeafFill()
		if err != nil {
			log.Fatalf("ptdbbench: leaf fill: %v", err)
		}
		if err := benchcompare.PlotLeafFill(pageNums, fill, *plotPath); err != nil {
			log.Fatalf("ptdbbench: plot: %v", err)
		}
		fmt.Printf("wrote %s\n", *plotPath)
	}
}
