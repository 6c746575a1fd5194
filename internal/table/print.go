package table

import (
	"fmt"
	"io"

	"github.com/ptdb/ptdb/internal/btpage"
)

// PrintTree implements the ".btree" diagnostic: one line per page, in
// page-number order, naming its kind, root status, cell count, and the
// keys it stores (plus child page numbers for internal nodes).
func (t *Table) PrintTree(w io.Writer) error {
	for n := uint64(0); n < t.pg.NumPages(); n++ {
		page, err := t.pg.GetPage(n)
		if err != nil {
			return err
		}

		kind := "leaf"
		if !page.IsLeaf() {
			kind = "internal"
		}
		root := ""
		if page.IsRoot() {
			root = " root"
		}

		keys := make([]int32, page.NumCells())
		for i := range keys {
			keys[i] = page.GetKeyAt(uint64(i))
		}
		fmt.Fprintf(w, "page %d: %s%s num_cells=%d keys=%v", n, kind, root, page.NumCells(), keys)

		if !page.IsLeaf() {
			children := make([]uint64, page.NumCells()+1)
			for i := range children {
				children[i] = page.GetPageNum(uint64(i))
			}
			fmt.Fprintf(w, " children=%v", children)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// LeafFill reports, for each leaf page in page-number order, its page
// number and the percentage (0-100) of CellsPerPage it currently holds. Used by the
// benchmark tool's page-fill chart.
func (t *Table) LeafFill() ([]uint64, []float64, error) {
	var pageNums []uint64
	var fill []float64
	for n := uint64(0); n < t.pg.NumPages(); n++ {
		page, err := t.pg.GetPage(n)
		if err != nil {
			return nil, nil, err
		}
		if !page.IsLeaf() {
			continue
		}
		pageNums = append(pageNums, n)
		fill = append(fill, float64(page.NumCells())/float64(btpage.CellsPerPage)*100)
	}
	return pageNums, fill, nil
}
