// Package pager owns the single database file: demand-loading pages into
// a bounded in-memory slot array, writing mutated pages straight through
// to disk, and flushing everything on close. It knows nothing about key
// order or the B+-tree shape above it; internal/table owns that.
package pager

import (
	"fmt"
	"io"
	"os"

	"github.com/ptdb/ptdb/internal/btpage"
	"github.com/ptdb/ptdb/internal/ptdberr"
)

// MaxPages bounds both the in-memory slot array and the number of pages
// the file may ever hold, matching the one-level tree's root-plus-two
// leaves ceiling.
const MaxPages = 3

// Pager reads and writes fixed-size pages of a single on-disk file
// through a bounded cache of decoded *btpage.Page slots.
type Pager struct {
	file     *os.File
	slots    [MaxPages]*btpage.Page
	numPages uint64
}

// Open opens (creating if absent) the database file at path and derives
// the current page count from its length.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}

	if info.Size()%btpage.PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("pager: %s length %d is not a multiple of page size %d: %w", path, info.Size(), btpage.PageSize, ptdberr.ErrCorruptFile)
	}

	numPages := uint64(info.Size() / btpage.PageSize)
	if numPages > MaxPages {
		f.Close()
		return nil, fmt.Errorf("pager: %s holds %d pages, exceeds max %d: %w", path, numPages, MaxPages, ptdberr.ErrOutOfCapacity)
	}

	return &Pager{file: f, numPages: numPages}, nil
}

// NumPages reports how many pages the file currently holds.
func (p *Pager) NumPages() uint64 { return p.numPages }

// GetPage returns the decoded page n, loading it from disk on first
// access. Requesting a page at exactly NumPages() grows the table by one
// page, returned as a fresh leaf; any other out-of-range page is an
// error.
func (p *Pager) GetPage(n uint64) (*btpage.Page, error) {
	if n >= MaxPages {
		return nil, fmt.Errorf("pager: page %d exceeds max pages %d: %w", n, MaxPages, ptdberr.ErrOutOfCapacity)
	}

	if p.slots[n] != nil {
		return p.slots[n], nil
	}

	if n >= p.numPages {
		if n != p.numPages {
			return nil, fmt.Errorf("pager: page %d requested before page %d exists: %w", n, p.numPages, ptdberr.ErrCorruptFile)
		}
		page := btpage.NewLeaf(n == 0)
		p.slots[n] = page
		p.numPages++
		return page, nil
	}

	buf, err := p.readPageBytes(n)
	if err != nil {
		return nil, err
	}
	page := btpage.FromBytes(buf)
	p.slots[n] = page
	return page, nil
}

func (p *Pager) readPageBytes(n uint64) ([btpage.PageSize]byte, error) {
	var buf [btpage.PageSize]byte
	off := int64(n) * btpage.PageSize
	read, err := p.file.ReadAt(buf[:], off)
	if err != nil && err != io.EOF {
		return buf, fmt.Errorf("pager: read page %d: %w", n, err)
	}
	if read != btpage.PageSize {
		return buf, fmt.Errorf("pager: page %d returned %d bytes, want %d: %w", n, read, btpage.PageSize, ptdberr.ErrCorruptFile)
	}
	return buf, nil
}

// GetUnusedPageNum returns the page number that the next newly allocated
// page will occupy.
func (p *Pager) GetUnusedPageNum() uint64 { return p.numPages }

// InstallPage places an already-constructed page into slot n, used by
// the split/root-promotion sequence to register a freshly allocated
// sibling or to overwrite the root slot in place. n must be an existing
// slot or exactly the next unused one; page numbers stay dense.
func (p *Pager) InstallPage(n uint64, page *btpage.Page) error {
	if n >= MaxPages {
		return fmt.Errorf("pager: install page %d exceeds max pages %d: %w", n, MaxPages, ptdberr.ErrOutOfCapacity)
	}
	if n > p.numPages {
		return fmt.Errorf("pager: install page %d beyond page %d: %w", n, p.numPages, ptdberr.ErrCorruptFile)
	}
	p.slots[n] = page
	if n == p.numPages {
		p.numPages++
	}
	return nil
}

// WritePage flushes the decoded header cache of the in-memory slot n and
// writes it to disk immediately, implementing write-through semantics.
func (p *Pager) WritePage(n uint64) error {
	page := p.slots[n]
	if page == nil {
		return fmt.Errorf("pager: write page %d: not loaded", n)
	}
	page.Flush()
	off := int64(n) * btpage.PageSize
	if _, err := p.file.WriteAt(page.Bytes()[:], off); err != nil {
		return fmt.Errorf("pager: write page %d: %w", n, err)
	}
	return nil
}

// Close flushes every loaded slot, then the file handle.
func (p *Pager) Close() error {
	for n := uint64(0); n < p.numPages; n++ {
		if p.slots[n] == nil {
			continue
		}
		if err := p.WritePage(n); err != nil {
			return err
		}
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("pager: close: %w", err)
	}
	return nil
}
