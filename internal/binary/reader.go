// Package binary provides low-level sequential binary I/O for BIL payloads.
package binary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortRead is returned when the stream ends before a requested span.
var ErrShortRead = errors.New("short read")

// ShortReadError describes a read or skip that ran past the end of the stream.
type ShortReadError struct {
	Offset int64 // stream offset where the span started
	Want   int64 // bytes requested
	Got    int64 // bytes available before EOF
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read at offset %d: want %d bytes, got %d", e.Offset, e.Want, e.Got)
}

func (e *ShortReadError) Unwrap() error { return ErrShortRead }

// Reader reads fixed-width values from a forward-only stream and tracks the
// number of bytes consumed.
type Reader struct {
	r       *bufio.Reader
	order   binary.ByteOrder
	pos     int64
	scratch [8]byte
}

// Config holds reader configuration.
type Config struct {
	ByteOrder  binary.ByteOrder
	BufferSize int // 0 uses bufio's default
}

// DefaultConfig returns a little-endian configuration with the default buffer size.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
	}
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.Reader, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	var br *bufio.Reader
	if cfg.BufferSize > 0 {
		br = bufio.NewReaderSize(r, cfg.BufferSize)
	} else {
		br = bufio.NewReader(r)
	}
	return &Reader{
		r:     br,
		order: order,
	}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf := r.scratch[:1]
	if err := r.readFull(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadInt8 reads a signed 8-bit integer.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads an unsigned 16-bit integer in the configured byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	buf := r.scratch[:2]
	if err := r.readFull(buf); err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadInt16 reads a signed 16-bit integer in the configured byte order.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// Skip discards the next n bytes. Unlike a seek, running past the end of
// the stream is reported as a *ShortReadError.
func (r *Reader) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	start := r.pos
	got, err := io.CopyN(io.Discard, r.r, n)
	r.pos += got
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &ShortReadError{Offset: start, Want: n, Got: got}
		}
		return fmt.Errorf("skipping %d bytes at offset %d: %w", n, start, err)
	}
	return nil
}

func (r *Reader) readFull(buf []byte) error {
	start := r.pos
	got, err := io.ReadFull(r.r, buf)
	r.pos += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &ShortReadError{Offset: start, Want: int64(len(buf)), Got: int64(got)}
		}
		return fmt.Errorf("reading %d bytes at offset %d: %w", len(buf), start, err)
	}
	return nil
}
