// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbio

import (
	"errors"
	"io"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// StreamReader is a forward-only Reader over an io.Reader. It does not own
// the underlying stream; the caller releases it under scoped acquisition.
// Capacity is unbounded and random access is unsupported.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader wraps r. Reads past the end of the stream report
// EndOfInput as a distinct error, never as a sentinel byte value.
func NewStreamReader(r io.Reader) *StreamReader { return &StreamReader{r: r} }

func (s *StreamReader) Remaining() int64 { return -1 }

func (s *StreamReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		return 0, streamReadErr(err)
	}
	return buf[0], nil
}

func (s *StreamReader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, streamReadErr(err)
	}
	return buf, nil
}

func (s *StreamReader) Skip(n int) error {
	_, err := io.CopyN(io.Discard, s.r, int64(n))
	if err != nil {
		return streamReadErr(err)
	}
	return nil
}

func streamReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return pberrs.New(pberrs.EndOfInput, "stream exhausted: %v", err)
	}
	return pberrs.New(pberrs.IOFailure, "stream read failed").Wrap(err)
}

// StreamWriter is a forward-only Writer over an io.Writer. It does not own
// the underlying stream.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter wraps w.
func NewStreamWriter(w io.Writer) *StreamWriter { return &StreamWriter{w: w} }

func (s *StreamWriter) WriteByte(b byte) error {
	_, err := s.w.Write([]byte{b})
	if err != nil {
		return pberrs.New(pberrs.IOFailure, "stream write failed").Wrap(err)
	}
	return nil
}

func (s *StreamWriter) WriteBytes(p []byte) error {
	if _, err := s.w.Write(p); err != nil {
		return pberrs.New(pberrs.IOFailure, "stream write failed").Wrap(err)
	}
	return nil
}

// Skip zero-fills n bytes, since a stream has no pre-existing storage to
// skip over.
func (s *StreamWriter) Skip(n int) error {
	zeros := make([]byte, n)
	return s.WriteBytes(zeros)
}

var (
	_ Reader = (*StreamReader)(nil)
	_ Writer = (*StreamWriter)(nil)
)
