// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pbio implements the sequential-data abstraction codecs read from
// and write to: buffer-backed cursors with random access, and stream-backed
// cursors that are forward-only. See spec.md §3 and §4.B for the contract.
//
// The capability set is split into independent interfaces (Reader, Writer,
// RandomAccess) so a codec can demand only the minimum capability it needs,
// per the "stream vs buffer unification" design note.
package pbio

import "github.com/hashgraph/pbj-go/internal/pberrs"

// Reader is the readable half of the cursor capability set.
type Reader interface {
	// Remaining returns the number of bytes left to read, or -1 if the
	// cursor is stream-backed and the remaining length is unknown.
	Remaining() int64
	// ReadByte reads and returns a single byte. It returns an EndOfInput
	// error if no bytes remain.
	ReadByte() (byte, error)
	// ReadBytes reads exactly n bytes. It returns an EndOfInput error if
	// fewer than n bytes remain.
	ReadBytes(n int) ([]byte, error)
	// Skip advances past n bytes without returning them.
	Skip(n int) error
}

// Writer is the writable half of the cursor capability set.
type Writer interface {
	// WriteByte writes a single byte. It returns a CapacityExceeded error
	// if the cursor has finite capacity and no room remains.
	WriteByte(b byte) error
	// WriteBytes writes p in full or not at all.
	WriteBytes(p []byte) error
	// Skip advances the write position by n bytes, zero-filling them on a
	// stream-backed writer.
	Skip(n int) error
}

// RandomAccess is implemented only by buffer-backed cursors.
type RandomAccess interface {
	// Position returns the current cursor position.
	Position() int64
	// SetPosition moves the cursor to an arbitrary position in [0, Limit()].
	SetPosition(pos int64) error
	// Limit returns the current limit (the end of readable/writable data).
	Limit() int64
	// Capacity returns the total storage size.
	Capacity() int64
	// Flip sets limit=position and position=0, readying a just-written
	// buffer for reading.
	Flip()
	// ResetPosition sets position back to zero without touching the limit.
	ResetPosition()
}

// eofErr and capErr are shared sentinel-shaped errors; generated code
// compares kinds via errors.Is, not identity, so these are just
// convenience constructors.
func eofErr(want, have int64) error {
	return pberrs.New(pberrs.EndOfInput, "requested %d bytes, %d remain", want, have)
}

func capErr(want, have int64) error {
	return pberrs.New(pberrs.CapacityExceeded, "requested %d bytes, %d remain", want, have)
}
