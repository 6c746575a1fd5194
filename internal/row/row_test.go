package row

import (
	"errors"
	"strings"
	"testing"

	"github.com/ptdb/ptdb/internal/ptdberr"
)

func TestRoundTrip(t *testing.T) {
	cases := []Row{
		{ID: 1, Username: "ashishnegi", Email: "abc@abc.com"},
		{ID: -5, Username: "", Email: ""},
		{ID: 2147483647, Username: strings.Repeat("u", UsernameSize), Email: strings.Repeat("e", EmailSize)},
	}

	for _, want := range cases {
		buf, err := Serialize(want)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", want, err)
		}
		if len(buf) != Size {
			t.Fatalf("Serialize(%v) produced %d bytes, want %d", want, len(buf), Size)
		}
		got, err := Deserialize(buf)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestFieldTooLong(t *testing.T) {
	long := strings.Repeat("x", UsernameSize+1)

	if _, err := New(1, long, "a@b.com"); !errors.Is(err, ptdberr.ErrFieldTooLong) {
		t.Fatalf("New with long username: got %v, want ErrFieldTooLong", err)
	}
	if _, err := New(1, "a", long); !errors.Is(err, ptdberr.ErrFieldTooLong) {
		t.Fatalf("New with long email: got %v, want ErrFieldTooLong", err)
	}
	if _, err := New(1, strings.Repeat("x", UsernameSize), "a@b.com"); err != nil {
		t.Fatalf("New at exactly %d bytes should succeed: %v", UsernameSize, err)
	}
}

func TestKeyMatchesDecodedID(t *testing.T) {
	buf, err := Serialize(Row{ID: 42, Username: "u", Email: "e"})
	if err != nil {
		t.Fatal(err)
	}
	if got := Key(buf); got != 42 {
		t.Fatalf("Key() = %d, want 42", got)
	}
}

func TestStringPrintsTrimmedFields(t *testing.T) {
	buf, err := Serialize(Row{ID: 1, Username: "ashishnegi", Email: "abc@abc.com"})
	if err != nil {
		t.Fatal(err)
	}
	r, err := Deserialize(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := "(1, ashishnegi, abc@abc.com)"
	if got := r.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
