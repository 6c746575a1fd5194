package table

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ptdb/ptdb/internal/btpage"
	"github.com/ptdb/ptdb/internal/ptdberr"
	"github.com/ptdb/ptdb/internal/row"
)

func openTemp(t *testing.T) (*Table, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ptdb.db")
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tbl, path
}

func mustInsert(t *testing.T, tbl *Table, id int32) {
	t.Helper()
	r, err := row.New(id, "u", "e@e.com")
	if err != nil {
		t.Fatalf("row.New(%d): %v", id, err)
	}
	if err := tbl.Insert(r); err != nil {
		t.Fatalf("Insert(%d): %v", id, err)
	}
}

func scanIDs(t *testing.T, tbl *Table) []int32 {
	t.Helper()
	sink := &SliceSink{}
	if err := tbl.Scan(sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	ids := make([]int32, len(sink.Rows))
	for i, r := range sink.Rows {
		ids[i] = r.ID
	}
	return ids
}

func assertAscending(t *testing.T, ids []int32, n int) {
	t.Helper()
	if len(ids) != n {
		t.Fatalf("got %d rows, want %d", len(ids), n)
	}
	for i, id := range ids {
		if id != int32(i+1) {
			t.Fatalf("ids[%d] = %d, want %d", i, id, i+1)
		}
	}
}

// S1: fresh DB, single insert and select.
func TestS1SingleRow(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	r, err := row.New(1, "ashishnegi", "abc@abc.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Insert(r); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	sink := &SliceSink{}
	if err := tbl.Scan(sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(sink.Rows) != 1 || sink.Rows[0] != r {
		t.Fatalf("Scan = %+v, want [%+v]", sink.Rows, r)
	}
}

// S2: fill exactly one leaf, no split.
func TestS2FillsOneLeaf(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	for id := int32(1); id <= btpage.CellsPerPage; id++ {
		mustInsert(t, tbl, id)
	}

	assertAscending(t, scanIDs(t, tbl), btpage.CellsPerPage)
	if tbl.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", tbl.NumPages())
	}
	root, err := tbl.pg.GetPage(RootPageNum)
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsLeaf() {
		t.Fatalf("root should still be a leaf")
	}
}

// S3: one row past a full leaf triggers split and root promotion.
func TestS3OverflowSplitsAndPromotesRoot(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	for id := int32(1); id <= btpage.CellsPerPage+1; id++ {
		mustInsert(t, tbl, id)
	}

	assertAscending(t, scanIDs(t, tbl), btpage.CellsPerPage+1)

	if tbl.NumPages() != 3 {
		t.Fatalf("NumPages() = %d, want 3", tbl.NumPages())
	}
	root, err := tbl.pg.GetPage(RootPageNum)
	if err != nil {
		t.Fatal(err)
	}
	if root.IsLeaf() {
		t.Fatalf("root should be internal after overflow")
	}
	if root.NumCells() != 1 {
		t.Fatalf("root NumCells() = %d, want 1 separator", root.NumCells())
	}

	leftNum := root.GetPageNum(0)
	rightNum := root.GetPageNum(1)
	left, err := tbl.pg.GetPage(leftNum)
	if err != nil {
		t.Fatal(err)
	}
	right, err := tbl.pg.GetPage(rightNum)
	if err != nil {
		t.Fatal(err)
	}
	if left.IsRoot() || right.IsRoot() {
		t.Fatalf("leaves must not be marked root")
	}
	if left.NextSibling() != rightNum {
		t.Fatalf("left.NextSibling() = %d, want %d", left.NextSibling(), rightNum)
	}
	if right.NextSibling() != 0 {
		t.Fatalf("right.NextSibling() = %d, want 0", right.NextSibling())
	}
	if root.GetKeyAt(0) != left.MaxKey() {
		t.Fatalf("separator = %d, want left.MaxKey()=%d", root.GetKeyAt(0), left.MaxKey())
	}
}

// S4: reverse insertion order still yields ascending scan.
func TestS4ReverseOrder(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	for id := int32(btpage.CellsPerPage); id >= 1; id-- {
		mustInsert(t, tbl, id)
	}

	assertAscending(t, scanIDs(t, tbl), btpage.CellsPerPage)
}

// S5: durability across close/reopen.
func TestS5DurabilityAcrossReopen(t *testing.T) {
	tbl, path := openTemp(t)
	for id := int32(1); id <= btpage.CellsPerPage; id++ {
		mustInsert(t, tbl, id)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	assertAscending(t, scanIDs(t, reopened), btpage.CellsPerPage)
}

// S6 (adapted): the one-level core supports exactly one split -- its
// parent-fixup path for a second split is unreachable by construction,
// since pager.MaxPages is sized to run out at precisely that point (see
// DESIGN.md). Ascending insertion fills the root leaf to capacity, the
// overflow split produces two half-full leaves, and every further key
// lands in the right leaf until it too reaches capacity: a true ceiling
// of CellsPerPage + CellsPerPage/2 rows, not the CellsPerPage*MaxPages
// figure a multi-level tree would reach. The row past that ceiling fails
// with OutOfCapacity and leaves the table unchanged.
func TestS6MaxCapacity(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	const maxRows = btpage.CellsPerPage + btpage.CellsPerPage/2
	for id := int32(1); id <= maxRows; id++ {
		mustInsert(t, tbl, id)
	}

	assertAscending(t, scanIDs(t, tbl), maxRows)

	overflow, err := row.New(int32(maxRows+1), "u", "e@e.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Insert(overflow); !errors.Is(err, ptdberr.ErrOutOfCapacity) {
		t.Fatalf("Insert beyond capacity: got %v, want ErrOutOfCapacity", err)
	}
	assertAscending(t, scanIDs(t, tbl), maxRows)
}

func TestDuplicateKeyRejectedWithoutChangingScan(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	mustInsert(t, tbl, 1)
	before := scanIDs(t, tbl)

	dup, err := row.New(1, "other", "other@e.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Insert(dup); !errors.Is(err, ptdberr.ErrDuplicateKey) {
		t.Fatalf("duplicate insert: got %v, want ErrDuplicateKey", err)
	}

	after := scanIDs(t, tbl)
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("scan changed after rejected duplicate: before=%v after=%v", before, after)
	}
}

func TestFindLocatesExistingAndMissingKeys(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	for _, id := range []int32{5, 1, 9, 3} {
		mustInsert(t, tbl, id)
	}

	cur, found, err := tbl.Find(9)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatalf("Find(9): found = false, want true")
	}
	buf, err := cur.Value()
	if err != nil {
		t.Fatal(err)
	}
	if row.Key(buf) != 9 {
		t.Fatalf("Find(9) value key = %d, want 9", row.Key(buf))
	}

	if _, found, err := tbl.Find(42); err != nil || found {
		t.Fatalf("Find(42): found=%v err=%v, want false/nil", found, err)
	}
}

func TestPrintTreeReportsPromotedRoot(t *testing.T) {
	tbl, _ := openTemp(t)
	defer tbl.Close()

	for id := int32(1); id <= btpage.CellsPerPage+1; id++ {
		mustInsert(t, tbl, id)
	}

	var buf strings.Builder
	if err := tbl.PrintTree(&buf); err != nil {
		t.Fatalf("PrintTree: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "internal") {
		t.Fatalf("PrintTree output missing internal node: %s", out)
	}
	if !strings.Contains(out, "root") {
		t.Fatalf("PrintTree output missing root marker: %s", out)
	}
}
