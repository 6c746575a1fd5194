package benchcompare

import (
	"encoding/csv"
	"runtime"
	"strconv"
)

// Result is one recorded measurement: which engine, which operation, and
// its cost.
type Result struct {
	Engine    string
	Operation string
	Rows      int
	LatencyNs int64
	AllocMB   uint64
}

// MemStats snapshots live heap usage, forcing a GC first so transient
// garbage from the run just finished isn't counted.
func MemStats() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}

// WriteCSV appends one row per Result to w.
func WriteCSV(w *csv.Writer, results []Result) error {
	for _, r := range results {
		if err := w.Write([]string{
			r.Engine,
			r.Operation,
			strconv.Itoa(r.Rows),
			strconv.FormatInt(r.LatencyNs, 10),
			strconv.FormatUint(r.AllocMB, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
