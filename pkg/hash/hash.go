// Copyright 2025 Certen Protocol
//
// Component A: canonical serialization and domain-separated hashing.
//
// Canonical serialization is a length-prefixed, little-endian,
// explicit-schema byte encoding (spec.md §6). Field order and
// per-field encoding are fixed per record type and must match the
// pre-existing wire format byte-for-byte.

package hash

import "encoding/binary"

// Value is a 32-byte cryptographic digest. Equality and total order
// are defined byte-wise.
type Value [32]byte

// Less implements the byte-wise total order spec.md §3 requires of
// HashValue.
func (v Value) Less(other Value) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}

func (v Value) IsZero() bool {
	return v == Value{}
}

// Canonical is implemented by every record type this package can hash.
// CanonicalEncode appends the record's canonical byte encoding (not
// including its domain tag) to buf and returns the result.
type Canonical interface {
	CanonicalEncode(buf []byte) []byte
}

// Encoder accumulates a canonical byte encoding. Its zero value is
// ready to use.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// U64 appends a little-endian uint64.
func (e *Encoder) U64(v uint64) *Encoder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
	return e
}

// Bytes appends a little-endian uint32 length prefix followed by the
// raw bytes.
func (e *Encoder) Bytes(b []byte) *Encoder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(b)))
	e.buf = append(e.buf, tmp[:]...)
	e.buf = append(e.buf, b...)
	return e
}

// RawBytes appends b with no length prefix, for fixed-size fields
// (e.g. a 32-byte hash embedded as raw bytes, as VoteMsg's
// proposed_block_id is per spec.md §6).
func (e *Encoder) RawBytes(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Struct recursively encodes a nested Canonical value in place (no
// additional length prefix — the nested struct's own fields are
// simply concatenated, per spec.md §6's "nested struct recursively").
func (e *Encoder) Struct(c Canonical) *Encoder {
	e.buf = c.CanonicalEncode(e.buf)
	return e
}

// Finish returns the accumulated canonical byte encoding.
func (e *Encoder) Finish() []byte {
	return e.buf
}

// CanonicalEncode implements Canonical trivially for Encoder so it can
// itself be composed.
func (e *Encoder) CanonicalEncode(buf []byte) []byte {
	return append(buf, e.buf...)
}
