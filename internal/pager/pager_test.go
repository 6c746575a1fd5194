package pager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ptdb/ptdb/internal/ptdberr"
)

func openTemp(t *testing.T) *Pager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ptdb.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestOpenFreshFileHasNoPages(t *testing.T) {
	p := openTemp(t)
	if p.NumPages() != 0 {
		t.Fatalf("NumPages() = %d, want 0", p.NumPages())
	}
}

func TestGetPageGrowsSequentially(t *testing.T) {
	p := openTemp(t)
	page0, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	if !page0.IsRoot() {
		t.Fatalf("page 0 should be marked root")
	}
	if p.NumPages() != 1 {
		t.Fatalf("NumPages() after GetPage(0) = %d, want 1", p.NumPages())
	}

	if _, err := p.GetPage(2); !errors.Is(err, ptdberr.ErrCorruptFile) {
		t.Fatalf("GetPage(2) before page 1 exists: got %v, want ErrCorruptFile", err)
	}
}

func TestGetPageRejectsBeyondMaxPages(t *testing.T) {
	p := openTemp(t)
	if _, err := p.GetPage(MaxPages); !errors.Is(err, ptdberr.ErrOutOfCapacity) {
		t.Fatalf("GetPage(MaxPages): got %v, want ErrOutOfCapacity", err)
	}
}

func TestWritePagePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptdb.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	page, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	page.SetNextSibling(77)
	if err := p.WritePage(0); err != nil {
		t.Fatalf("WritePage(0): %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.NumPages() != 1 {
		t.Fatalf("reopened NumPages() = %d, want 1", reopened.NumPages())
	}
	got, err := reopened.GetPage(0)
	if err != nil {
		t.Fatalf("reopened GetPage(0): %v", err)
	}
	if got.NextSibling() != 77 {
		t.Fatalf("reopened NextSibling() = %d, want 77", got.NextSibling())
	}
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptdb.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p.Close()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte{1, 2, 3})
	f.Close()

	if _, err := Open(path); !errors.Is(err, ptdberr.ErrCorruptFile) {
		t.Fatalf("Open truncated file: got %v, want ErrCorruptFile", err)
	}
}
