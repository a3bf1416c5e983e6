package repository

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUIDv7 ids carry a 48-bit big-endian unix-millisecond prefix, which is
// where the Postgres store reads created_at from.

// timeFromUUIDv7 extracts the creation time embedded in id
func timeFromUUIDv7(id uuid.UUID) time.Time {
	var buf [8]byte
	copy(buf[2:], id[:6])
	ms := int64(binary.BigEndian.Uint64(buf[:]))
	return time.UnixMilli(ms).UTC()
}

// uuidv7Lower is the smallest v7 id minted at t
func uuidv7Lower(t time.Time) uuid.UUID {
	var id uuid.UUID
	putMillis(id[:], t)
	return id
}

// uuidv7Upper is the largest id minted within the millisecond of t
func uuidv7Upper(t time.Time) uuid.UUID {
	var id uuid.UUID
	for i := range id {
		id[i] = 0xff
	}
	putMillis(id[:], t)
	return id
}

func putMillis(dst []byte, t time.Time) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.UnixMilli()))
	copy(dst[:6], buf[2:])
}
