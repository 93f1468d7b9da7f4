// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbio

// Buffer is a buffer-backed cursor: finite capacity, a movable position in
// [0, limit], and a limit in [0, capacity]. It implements Reader, Writer and
// RandomAccess. A Buffer either owns its storage (constructed via NewBuffer
// with a capacity) or borrows a caller-provided slice as a read-only view
// (constructed via NewBufferView); a borrowed Buffer rejects writes.
type Buffer struct {
	buf      []byte
	position int64
	limit    int64
	borrowed bool
}

// NewBuffer allocates an owned Buffer with the given capacity, ready for
// writing (position=0, limit=capacity).
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, capacity), limit: int64(capacity)}
}

// NewBufferView wraps b as a read-only view: position=0, limit=len(b). b is
// never mutated by the Buffer; callers must not mutate it either, since
// Bytes() and reads share the same storage.
func NewBufferView(b []byte) *Buffer {
	return &Buffer{buf: b, limit: int64(len(b)), borrowed: true}
}

// Bytes returns the storage underlying the buffer, in full (not limited to
// [0, limit)). Most callers want Bytes()[:Limit()].
func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Remaining() int64 { return b.limit - b.position }
func (b *Buffer) Position() int64  { return b.position }
func (b *Buffer) Limit() int64     { return b.limit }
func (b *Buffer) Capacity() int64  { return int64(len(b.buf)) }

func (b *Buffer) SetPosition(pos int64) error {
	if pos < 0 || pos > b.limit {
		return capErr(pos, b.limit)
	}
	b.position = pos
	return nil
}

// Flip sets limit=position and position=0, readying a just-written buffer
// for reading.
func (b *Buffer) Flip() {
	b.limit = b.position
	b.position = 0
}

// ResetPosition sets position back to zero without touching the limit.
func (b *Buffer) ResetPosition() { b.position = 0 }

func (b *Buffer) ReadByte() (byte, error) {
	if b.position >= b.limit {
		return 0, eofErr(1, b.Remaining())
	}
	c := b.buf[b.position]
	b.position++
	return c, nil
}

func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, eofErr(int64(n), b.Remaining())
	}
	if int64(n) > b.Remaining() {
		return nil, eofErr(int64(n), b.Remaining())
	}
	out := b.buf[b.position : b.position+int64(n) : b.position+int64(n)]
	b.position += int64(n)
	return out, nil
}

// Skip advances the position by n bytes. It serves both the Reader and
// Writer capability sets: the underlying storage is always allocated and
// zeroed up front (make() zero-fills), so skipping forward never needs to
// write zeros the way a stream-backed writer's Skip must. Callers that need
// strict end-of-input detection while reading an untrusted length should
// bound n by Remaining() themselves, as the wire-format decoders do.
func (b *Buffer) Skip(n int) error {
	if int64(n) > int64(len(b.buf))-b.position {
		return capErr(int64(n), int64(len(b.buf))-b.position)
	}
	b.position += int64(n)
	if b.position > b.limit {
		b.limit = b.position
	}
	return nil
}

func (b *Buffer) WriteByte(c byte) error {
	if b.borrowed {
		return capErr(1, 0)
	}
	if b.position >= int64(len(b.buf)) {
		return capErr(1, int64(len(b.buf))-b.position)
	}
	b.buf[b.position] = c
	b.position++
	if b.position > b.limit {
		b.limit = b.position
	}
	return nil
}

func (b *Buffer) WriteBytes(p []byte) error {
	if b.borrowed {
		return capErr(int64(len(p)), 0)
	}
	if b.position+int64(len(p)) > int64(len(b.buf)) {
		return capErr(int64(len(p)), int64(len(b.buf))-b.position)
	}
	copy(b.buf[b.position:], p)
	b.position += int64(len(p))
	if b.position > b.limit {
		b.limit = b.position
	}
	return nil
}

var (
	_ Reader       = (*Buffer)(nil)
	_ Writer       = (*Buffer)(nil)
	_ RandomAccess = (*Buffer)(nil)
)
