// Package benchcompare runs the same insert-then-scan workload against
// the table engine and against Pebble, so the two can be compared on
// equal footing, and renders a page-fill chart of the table engine's
// leaves.
package benchcompare

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/ptdb/ptdb/internal/row"
)

// PebbleStore wraps a Pebble database keyed by the same big-endian int32
// id the table engine uses, storing the identical serialized row record
// as the value so both engines do comparable I/O per operation.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (or creates) a Pebble database at dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	opts := &pebble.Options{
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("benchcompare: pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close flushes and closes the database.
func (s *PebbleStore) Close() error { return s.db.Close() }

// Insert stores r under its id, mirroring table.Table.Insert's contract
// except duplicates are silently overwritten (Pebble is a plain KV
// store; it has no notion of a primary-key violation).
func (s *PebbleStore) Insert(r row.Row) error {
	buf, err := row.Serialize(r)
	if err != nil {
		return err
	}
	return s.db.Set(encodeKey(r.ID), buf, pebble.NoSync)
}

// Scan iterates every stored row in ascending key order.
func (s *PebbleStore) Scan(sink func(row.Row) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("benchcompare: new iter: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		r, err := row.Deserialize(iter.Value())
		if err != nil {
			return err
		}
		if err := sink(r); err != nil {
			return err
		}
	}
	return iter.Error()
}

func encodeKey(id int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(id))
	return b
}
