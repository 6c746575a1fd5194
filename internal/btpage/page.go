// Package btpage provides the on-disk page layout shared by leaf and
// internal nodes of the table's B+-tree: header decode/encode, the cell
// array, binary search by key, in-place insertion with shift, and the
// leaf half-split. Two variants (Leaf, Internal) share a 18-byte header
// and diverge in body layout; page.go discriminates between them by the
// decoded node-type cache rather than reinterpreting bytes every call.
package btpage

import (
	"encoding/binary"
	"fmt"

	"github.com/ptdb/ptdb/internal/ptdberr"
)

// Page layout (fixed offsets, big-endian integers):
//
//	[0,1)   page_type: TypeLeaf or TypeInternal
//	[1,2)   is_root: rootMarker or nonRootMarker
//	[2,10)  num_cells (u64)
//	[10,18) leaf-only: next_sibling (u64); 0 = none
//	[18,…)  body
//
// Leaf body is consecutive CellSize cells: {key i32 at +0, value RowSize
// bytes at +4}. Internal body is [right_page_num u64] followed by
// consecutive InternalCellSize cells: {left_page_num u64, separator_key
// i32}.
const (
	PageSize = 2046

	offType        = 0
	offIsRoot      = 1
	offNumCells    = 2
	offNextSibling = 10
	HeaderSize     = 18

	TypeLeaf     byte = 1
	TypeInternal byte = 2

	rootMarker    byte = 67
	nonRootMarker byte = 66

	KeySize  = 4  // int32
	RowSize  = 68 // row.Size, duplicated here so btpage does not import internal/row
	CellSize = KeySize + RowSize

	// CellsPerPage is the maximum number of leaf cells that fit in a page
	// body: floor((PageSize - HeaderSize) / CellSize).
	CellsPerPage = (PageSize - HeaderSize) / CellSize

	offRightPageNum         = HeaderSize
	internalCellsStartOffset = offRightPageNum + 8
	internalLeftPageNumSize  = 8
	// InternalKeyOffset is the offset of the separator key within one
	// internal cell, after the 8-byte left_page_num.
	InternalKeyOffset  = internalLeftPageNumSize
	InternalCellSize   = internalLeftPageNumSize + KeySize
)

// NodeType discriminates a page's body layout.
type NodeType byte

const (
	Leaf     NodeType = NodeType(TypeLeaf)
	Internal NodeType = NodeType(TypeInternal)
)

// Page is the typed facade over one fixed-size page buffer: a decoded
// header cache plus the raw bytes that are the system of record. Flush
// must be called before the bytes are persisted.
type Page struct {
	buf         [PageSize]byte
	isRoot      bool
	nodeType    NodeType
	numCells    uint64
	nextSibling uint64 // meaningful for leaves only
}

// NewLeaf allocates a zeroed leaf page, optionally marked as root.
func NewLeaf(isRoot bool) *Page {
	return &Page{isRoot: isRoot, nodeType: Leaf}
}

// FromBytes decodes an existing on-disk buffer into a Page facade.
func FromBytes(buf [PageSize]byte) *Page {
	p := &Page{buf: buf}
	p.nodeType = NodeType(buf[offType])
	p.isRoot = buf[offIsRoot] == rootMarker
	p.numCells = binary.BigEndian.Uint64(buf[offNumCells : offNumCells+8])
	if p.nodeType == Leaf {
		p.nextSibling = binary.BigEndian.Uint64(buf[offNextSibling : offNextSibling+8])
	}
	return p
}

// NewRoot builds the internal root page produced by the first leaf split:
// one cell separating leftPageNum (keys <= left.MaxKey()) from
// rightPageNum (keys > left.MaxKey()).
func NewRoot(leftPageNum, rightPageNum uint64, left *Page) *Page {
	p := &Page{isRoot: true, nodeType: Internal}
	p.setRightmost(rightPageNum)
	cell := make([]byte, InternalCellSize)
	binary.BigEndian.PutUint64(cell[0:8], leftPageNum)
	binary.BigEndian.PutUint32(cell[InternalKeyOffset:InternalKeyOffset+KeySize], uint32(left.MaxKey()))
	if err := p.AddData(0, cell); err != nil {
		// Cannot happen: a fresh root is empty, so it has room for this cell.
		panic(fmt.Sprintf("btpage: NewRoot: %v", err))
	}
	return p
}

func (p *Page) IsRoot() bool      { return p.isRoot }
func (p *Page) SetRoot(root bool) { p.isRoot = root }
func (p *Page) NodeType() NodeType { return p.nodeType }
func (p *Page) IsLeaf() bool      { return p.nodeType == Leaf }
func (p *Page) NumCells() uint64  { return p.numCells }

// NextSibling returns the page number of the next leaf in key order, or 0
// if this is the last leaf. Only valid for leaf pages.
func (p *Page) NextSibling() uint64 { return p.nextSibling }

func (p *Page) SetNextSibling(n uint64) { p.nextSibling = n }

// Bytes returns the raw backing buffer. Callers that mutate decoded state
// must call Flush before reading Bytes for persistence.
func (p *Page) Bytes() *[PageSize]byte { return &p.buf }

// Flush re-encodes the decoded header cache into the backing buffer. The
// pager calls this immediately before writing a page to disk.
func (p *Page) Flush() {
	p.buf[offType] = byte(p.nodeType)
	if p.isRoot {
		p.buf[offIsRoot] = rootMarker
	} else {
		p.buf[offIsRoot] = nonRootMarker
	}
	binary.BigEndian.PutUint64(p.buf[offNumCells:offNumCells+8], p.numCells)
	if p.nodeType == Leaf {
		binary.BigEndian.PutUint64(p.buf[offNextSibling:offNextSibling+8], p.nextSibling)
	}
}

func (p *Page) cellOffset(i uint64) int {
	if p.nodeType == Leaf {
		return HeaderSize + int(i)*CellSize
	}
	return internalCellsStartOffset + int(i)*InternalCellSize
}

func (p *Page) cellSize() int {
	if p.nodeType == Leaf {
		return CellSize
	}
	return InternalCellSize
}

// GetKeyAt reads the i-th stored key: the leaf cell's key field, or the
// internal cell's separator key.
func (p *Page) GetKeyAt(i uint64) int32 {
	off := p.cellOffset(i)
	if p.nodeType == Leaf {
		return int32(binary.BigEndian.Uint32(p.buf[off : off+KeySize]))
	}
	off += InternalKeyOffset
	return int32(binary.BigEndian.Uint32(p.buf[off : off+KeySize]))
}

// FindKeyPos returns the leftmost index i such that GetKeyAt(i) >= key, or
// NumCells() if every stored key is less than key. num_cells == 0 returns
// 0. Used both to locate an existing key and to locate an insertion
// point.
func (p *Page) FindKeyPos(key int32) uint64 {
	n := p.numCells
	if n == 0 {
		return 0
	}

	lo, hi := uint64(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if p.GetKeyAt(mid) < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// AddData inserts data as a new cell at pos, shifting cells [pos,
// num_cells) right by one slot. data is a RowSize record for leaves (the
// key is its first KeySize bytes) or an InternalCellSize cell for
// internal nodes.
func (p *Page) AddData(pos uint64, data []byte) error {
	if pos > p.numCells {
		return fmt.Errorf("btpage: insert pos %d beyond num_cells %d: %w", pos, p.numCells, ptdberr.ErrOutOfCapacity)
	}
	if p.numCells >= p.capacity() {
		return fmt.Errorf("btpage: page full at %d cells: %w", p.numCells, ptdberr.ErrOutOfCapacity)
	}

	size := p.cellSize()
	for i := p.numCells; i > pos; i-- {
		copy(p.buf[p.cellOffset(i):p.cellOffset(i)+size], p.buf[p.cellOffset(i-1):p.cellOffset(i-1)+size])
	}
	off := p.cellOffset(pos)
	if p.nodeType == Leaf {
		copy(p.buf[off:off+KeySize], data[:KeySize])
		copy(p.buf[off+KeySize:off+size], data)
	} else {
		copy(p.buf[off:off+size], data)
	}
	p.numCells++
	return nil
}

// UpdateData overwrites the cell at pos in place, without shifting.
func (p *Page) UpdateData(pos uint64, data []byte) error {
	if pos >= p.numCells {
		return fmt.Errorf("btpage: update pos %d >= num_cells %d", pos, p.numCells)
	}
	size := p.cellSize()
	off := p.cellOffset(pos)
	copy(p.buf[off:off+size], data)
	return nil
}

func (p *Page) capacity() uint64 {
	if p.nodeType == Leaf {
		return CellsPerPage
	}
	// Internal cell capacity follows the same header/body arithmetic;
	// the one-level core only ever stores a single internal cell.
	return uint64((PageSize - internalCellsStartOffset) / InternalCellSize)
}

// MaxKey is the greatest stored key, i.e. the key of the last cell.
func (p *Page) MaxKey() int32 {
	return p.GetKeyAt(p.numCells - 1)
}

// Split applies to a full leaf (num_cells == CellsPerPage). It allocates a
// new leaf holding the upper half of the cells, carries this page's
// current NextSibling onto the new page, and shrinks this page to its
// lower half. The caller is responsible for setting this page's
// NextSibling to the new page's eventual page number.
func (p *Page) Split() (*Page, error) {
	if p.nodeType != Leaf {
		return nil, fmt.Errorf("btpage: split internal node: %w", ptdberr.ErrUnsupported)
	}

	lowerCount := p.numCells / 2
	upperCount := p.numCells - lowerCount

	newPage := NewLeaf(false)
	newPage.nextSibling = p.nextSibling
	newPage.numCells = upperCount

	srcOff := HeaderSize + int(lowerCount)*CellSize
	moveLen := int(upperCount) * CellSize
	copy(newPage.buf[HeaderSize:HeaderSize+moveLen], p.buf[srcOff:srcOff+moveLen])

	p.numCells = lowerCount
	return newPage, nil
}

// GetPageNum returns the child page number to descend into for the search
// position i returned by FindKeyPos on an internal node: the left child of
// cell i when i < num_cells, otherwise the header's right_page_num.
func (p *Page) GetPageNum(i uint64) uint64 {
	if i == p.numCells {
		return p.rightmost()
	}
	off := p.cellOffset(i)
	return binary.BigEndian.Uint64(p.buf[off : off+8])
}

func (p *Page) rightmost() uint64 {
	return binary.BigEndian.Uint64(p.buf[offRightPageNum : offRightPageNum+8])
}

func (p *Page) setRightmost(n uint64) {
	binary.BigEndian.PutUint64(p.buf[offRightPageNum:offRightPageNum+8], n)
}

// UpdateRightmost rewrites the internal header's right_page_num, used
// when a separator's subtree changes.
func (p *Page) UpdateRightmost(n uint64) {
	p.setRightmost(n)
}

// LeftPageNum reads the left_page_num of internal cell i directly,
// without the i==num_cells right-pointer fallback GetPageNum applies.
func (p *Page) LeftPageNum(i uint64) uint64 {
	off := p.cellOffset(i)
	return binary.BigEndian.Uint64(p.buf[off : off+8])
}

// CellValue returns the RowSize value bytes of leaf cell i.
func (p *Page) CellValue(i uint64) []byte {
	off := p.cellOffset(i) + KeySize
	return p.buf[off : off+RowSize]
}

// CloneAsNonRoot deep-copies the page, with is_root forced false. Used
// when a root leaf is promoted: its shrunk contents are copied into a
// freshly allocated non-root page before the root slot is overwritten
// with the new internal node.
func (p *Page) CloneAsNonRoot() *Page {
	c := *p
	c.isRoot = false
	return &c
}
