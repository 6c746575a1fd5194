// Package table implements key lookup and key-ordered scanning on top of
// pager and btpage: a Table binds the two operations the rest of the
// engine needs, and a Cursor is the shared (page_num, cell_num) position
// used for both insertion and iteration.
package table

import (
	"fmt"
	"math"

	"github.com/ptdb/ptdb/internal/btpage"
	"github.com/ptdb/ptdb/internal/pager"
	"github.com/ptdb/ptdb/internal/ptdberr"
	"github.com/ptdb/ptdb/internal/row"
)

// RootPageNum is the fixed page number of the table's root; it never
// changes across the table's lifetime, even after the root is promoted
// from leaf to internal.
const RootPageNum = 0

// Table is the ordered multiset of rows keyed by id, backed by one
// pager-managed file.
type Table struct {
	pg *pager.Pager
}

// Open opens path (creating it if absent) and ensures page 0 exists.
func Open(path string) (*Table, error) {
	pg, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := pg.GetPage(RootPageNum); err != nil {
		pg.Close()
		return nil, err
	}
	return &Table{pg: pg}, nil
}

// Close flushes every page and closes the file.
func (t *Table) Close() error { return t.pg.Close() }

// NumPages reports the current physical page count.
func (t *Table) NumPages() uint64 { return t.pg.NumPages() }

// findLeaf descends from the root to the leaf that does, or would,
// contain key. The one-level core descends at most one level: the root
// is either itself a leaf, or an internal node whose children are all
// leaves.
func (t *Table) findLeaf(key int32) (uint64, *btpage.Page, error) {
	root, err := t.pg.GetPage(RootPageNum)
	if err != nil {
		return 0, nil, err
	}
	if root.IsLeaf() {
		return RootPageNum, root, nil
	}

	i := root.FindKeyPos(key)
	childNum := root.GetPageNum(i)
	child, err := t.pg.GetPage(childNum)
	if err != nil {
		return 0, nil, err
	}
	return childNum, child, nil
}

// FindKeyPos locates the leaf page and in-page cell position for key:
// the insertion point if absent, or the position of the matching cell
// if present.
func (t *Table) FindKeyPos(key int32) (pageNum uint64, cellNum uint64, err error) {
	pageNum, leaf, err := t.findLeaf(key)
	if err != nil {
		return 0, 0, err
	}
	return pageNum, leaf.FindKeyPos(key), nil
}

// Insert adds r to the table. Duplicate detection runs before any
// mutation, so a duplicate insert leaves the table completely unchanged
// -- including its page structure -- unlike the split-before-check order
// of the reference this engine is descended from.
func (t *Table) Insert(r row.Row) error {
	key := r.ID

	pageNum, leaf, err := t.findLeaf(key)
	if err != nil {
		return err
	}
	cellNum := leaf.FindKeyPos(key)
	if cellNum < leaf.NumCells() && leaf.GetKeyAt(cellNum) == key {
		return fmt.Errorf("table: insert id %d: %w", key, ptdberr.ErrDuplicateKey)
	}

	if leaf.NumCells() == btpage.CellsPerPage {
		if err := t.splitLeaf(pageNum, leaf); err != nil {
			return err
		}
		pageNum, leaf, err = t.findLeaf(key)
		if err != nil {
			return err
		}
		cellNum = leaf.FindKeyPos(key)
	}

	data, err := row.Serialize(r)
	if err != nil {
		return err
	}
	if err := leaf.AddData(cellNum, data); err != nil {
		return err
	}
	return t.pg.WritePage(pageNum)
}

// splitLeaf grows the tree by one level of fan-out: the leaf at pageNum
// is halved, and if it was the root, page 0 is rewritten in place as an
// internal node over two freshly allocated leaves. Splitting a leaf that
// is not the root would require inserting a new separator into an
// already-internal root -- parent-fixup the one-level core does not
// implement -- so that path reports Unsupported. In practice this core
// never reaches it: pager.MaxPages is sized so the physical page budget
// is exhausted (OutOfCapacity, raised below) at exactly the point a
// second split would otherwise be attempted.
func (t *Table) splitLeaf(pageNum uint64, leaf *btpage.Page) error {
	if t.pg.NumPages() >= pager.MaxPages {
		return fmt.Errorf("table: split page %d: %w", pageNum, ptdberr.ErrOutOfCapacity)
	}

	wasRoot := leaf.IsRoot()

	newSibling, err := leaf.Split()
	if err != nil {
		return err
	}
	siblingNum := t.pg.GetUnusedPageNum()
	if err := t.pg.InstallPage(siblingNum, newSibling); err != nil {
		return err
	}

	if !wasRoot {
		return fmt.Errorf("table: split non-root page %d: %w", pageNum, ptdberr.ErrUnsupported)
	}

	leftNum := t.pg.GetUnusedPageNum()
	left := leaf.CloneAsNonRoot()
	left.SetNextSibling(siblingNum)
	if err := t.pg.InstallPage(leftNum, left); err != nil {
		return err
	}

	newRoot := btpage.NewRoot(leftNum, siblingNum, left)
	if err := t.pg.InstallPage(RootPageNum, newRoot); err != nil {
		return err
	}

	if err := t.pg.WritePage(leftNum); err != nil {
		return err
	}
	if err := t.pg.WritePage(siblingNum); err != nil {
		return err
	}
	return t.pg.WritePage(RootPageNum)
}

// Cursor is a logical position (page_num, cell_num) into the table, used
// both for scanning and to report an insertion point.
type Cursor struct {
	t          *Table
	PageNum    uint64
	CellNum    uint64
	EndOfTable bool
}

// Start returns a cursor positioned at the first row in key order.
func (t *Table) Start() (*Cursor, error) {
	pageNum, leaf, err := t.findLeaf(math.MinInt32)
	if err != nil {
		return nil, err
	}
	return &Cursor{t: t, PageNum: pageNum, CellNum: 0, EndOfTable: leaf.NumCells() == 0}, nil
}

// Find returns a cursor at key's position, plus whether key is present.
func (t *Table) Find(key int32) (*Cursor, bool, error) {
	pageNum, leaf, err := t.findLeaf(key)
	if err != nil {
		return nil, false, err
	}
	cellNum := leaf.FindKeyPos(key)
	found := cellNum < leaf.NumCells() && leaf.GetKeyAt(cellNum) == key
	return &Cursor{t: t, PageNum: pageNum, CellNum: cellNum, EndOfTable: false}, found, nil
}

// Value returns the raw row record the cursor currently points at.
func (c *Cursor) Value() ([]byte, error) {
	leaf, err := c.t.pg.GetPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	return leaf.CellValue(c.CellNum), nil
}

// Advance moves the cursor to the next cell, following the leaf sibling
// chain across page boundaries and setting EndOfTable once the chain
// runs out.
func (c *Cursor) Advance() error {
	leaf, err := c.t.pg.GetPage(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum >= leaf.NumCells() {
		next := leaf.NextSibling()
		if next == 0 {
			c.EndOfTable = true
			return nil
		}
		c.PageNum = next
		c.CellNum = 0
	}
	return nil
}

// RowSink consumes the rows a scan produces, in key order.
type RowSink interface {
	Accept(row.Row) error
}

// Scan feeds every row in ascending key order to sink, stopping at the
// first error either the scan or the sink reports.
func (t *Table) Scan(sink RowSink) error {
	cur, err := t.Start()
	if err != nil {
		return err
	}
	for !cur.EndOfTable {
		buf, err := cur.Value()
		if err != nil {
			return err
		}
		r, err := row.Deserialize(buf)
		if err != nil {
			return err
		}
		if err := sink.Accept(r); err != nil {
			return err
		}
		if err := cur.Advance(); err != nil {
			return err
		}
	}
	return nil
}
