package benchcompare

import (
	"time"

	"github.com/ptdb/ptdb/internal/row"
	"github.com/ptdb/ptdb/internal/table"
)

// InsertThenScan inserts ids 1..n as rows into tbl, timing the inserts and
// the subsequent full scan separately.
func InsertThenScan(tbl *table.Table, n int) (insert Result, scan Result, err error) {
	start := time.Now()
	for id := 1; id <= n; id++ {
		r, err := row.New(int32(id), "bench", "bench@example.com")
		if err != nil {
			return Result{}, Result{}, err
		}
		if err := tbl.Insert(r); err != nil {
			return Result{}, Result{}, err
		}
	}
	insert = Result{Engine: "ptdb", Operation: "insert", Rows: n, LatencyNs: time.Since(start).Nanoseconds(), AllocMB: MemStats()}

	start = time.Now()
	count := 0
	err = tbl.Scan(sinkFunc(func(row.Row) error { count++; return nil }))
	scan = Result{Engine: "ptdb", Operation: "scan", Rows: count, LatencyNs: time.Since(start).Nanoseconds(), AllocMB: MemStats()}
	return insert, scan, err
}

// InsertThenScanPebble runs the same workload against a PebbleStore.
func InsertThenScanPebble(store *PebbleStore, n int) (insert Result, scan Result, err error) {
	start := time.Now()
	for id := 1; id <= n; id++ {
		r, err := row.New(int32(id), "bench", "bench@example.com")
		if err != nil {
			return Result{}, Result{}, err
		}
		if err := store.Insert(r); err != nil {
			return Result{}, Result{}, err
		}
	}
	insert = Result{Engine: "pebble", Operation: "insert", Rows: n, LatencyNs: time.Since(start).Nanoseconds(), AllocMB: MemStats()}

	start = time.Now()
	count := 0
	err = store.Scan(func(row.Row) error { count++; return nil })
	scan = Result{Engine: "pebble", Operation: "scan", Rows: count, LatencyNs: time.Since(start).Nanoseconds(), AllocMB: MemStats()}
	return insert, scan, err
}

type sinkFunc func(row.Row) error

func (f sinkFunc) Accept(r row.Row) error { return f(r) }
