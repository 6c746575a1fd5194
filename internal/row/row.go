// Package row implements the fixed-width codec for the table's single
// tuple shape: (id int32, username []byte<=32, email []byte<=32).
package row

import (
	"encoding/binary"
	"fmt"

	"github.com/ptdb/ptdb/internal/ptdberr"
)

const (
	IDOffset       = 0
	IDSize         = 4
	UsernameOffset = IDOffset + IDSize
	UsernameSize   = 32
	EmailOffset    = UsernameOffset + UsernameSize
	EmailSize      = 32

	// Size is the number of bytes a serialized row occupies on disk.
	Size = EmailOffset + EmailSize
)

// Row is the decoded logical tuple. Username and Email are the text up to
// (not including) the first zero byte of their on-disk field.
type Row struct {
	ID       int32
	Username string
	Email    string
}

// New validates username/email length and builds a Row, mirroring the
// prepare_insert_statement checks in the reference REPL.
func New(id int32, username, email string) (Row, error) {
	if len(username) > UsernameSize {
		return Row{}, fmt.Errorf("username %q exceeds %d bytes: %w", username, UsernameSize, ptdberr.ErrFieldTooLong)
	}
	if len(email) > EmailSize {
		return Row{}, fmt.Errorf("email %q exceeds %d bytes: %w", email, EmailSize, ptdberr.ErrFieldTooLong)
	}
	return Row{ID: id, Username: username, Email: email}, nil
}

// Serialize encodes r into a Size-byte record: big-endian id, then
// zero-padded username and email.
func Serialize(r Row) ([]byte, error) {
	if len(r.Username) > UsernameSize {
		return nil, fmt.Errorf("username %q exceeds %d bytes: %w", r.Username, UsernameSize, ptdberr.ErrFieldTooLong)
	}
	if len(r.Email) > EmailSize {
		return nil, fmt.Errorf("email %q exceeds %d bytes: %w", r.Email, EmailSize, ptdberr.ErrFieldTooLong)
	}

	buf := make([]byte, Size)
	binary.BigEndian.PutUint32(buf[IDOffset:IDOffset+IDSize], uint32(r.ID))
	copy(buf[UsernameOffset:UsernameOffset+UsernameSize], r.Username)
	copy(buf[EmailOffset:EmailOffset+EmailSize], r.Email)
	return buf, nil
}

// Deserialize decodes a Size-byte record back into a Row, trimming each
// text field at its first zero byte.
func Deserialize(buf []byte) (Row, error) {
	if len(buf) != Size {
		return Row{}, fmt.Errorf("row: record is %d bytes, want %d", len(buf), Size)
	}

	id := int32(binary.BigEndian.Uint32(buf[IDOffset : IDOffset+IDSize]))
	username := trimZero(buf[UsernameOffset : UsernameOffset+UsernameSize])
	email := trimZero(buf[EmailOffset : EmailOffset+EmailSize])
	return Row{ID: id, Username: username, Email: email}, nil
}

// Key reads just the big-endian id out of a Size-byte record, used by
// callers that only need the key without a full decode.
func Key(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf[IDOffset : IDOffset+IDSize]))
}

func trimZero(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (r Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}
