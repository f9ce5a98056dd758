// Package journal durably records every update the book actually
// applied, keyed by sequence number, in an embedded pebble store. It is
// a write-only audit sink: there is no Load or replay path, and the
// book never reads the journal back to reconstruct its own state.
package journal

import (
	"encoding/binary"

	"lobengine/update"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// Journal wraps a pebble store keyed by an 8-byte big-endian sequence
// number so that keys sort in apply order.
type Journal struct {
	db *pebble.DB
}

// Open opens (or creates) the pebble store at dir.
func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "journal: open %s", dir)
	}
	return &Journal{db: db}, nil
}

// Close flushes and closes the underlying store.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append persists the update applied at seq. Callers are expected to
// call this once per successful Book.Apply, after the mutation lands,
// from the same apply-thread that owns the book.
func (j *Journal) Append(seq uint64, u update.Update) error {
	key := encodeKey(seq)
	buf := make([]byte, update.WireSize())
	if err := u.Encode(buf); err != nil {
		return errors.Wrapf(err, "journal: encode update at seq %d", seq)
	}
	return j.db.Set(key, buf, pebble.Sync)
}

// encodeKey renders seq as 8-byte big-endian so that pebble's natural
// byte-order iteration matches apply order.
func encodeKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
