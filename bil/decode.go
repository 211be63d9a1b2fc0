package bil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	binpkg "github.com/Mause/statistical-atlas-of-au/internal/binary"
	"github.com/Mause/statistical-atlas-of-au/internal/compress"
)

// PayloadExt is the file suffix of a BIL payload.
const PayloadExt = ".bil"

// Open reads <base>.hdr and decodes the matching payload.
func Open(base string, opts ...Option) (*Raster, error) {
	h, err := ReadHeader(base, opts...)
	if err != nil {
		return nil, err
	}
	return Decode(base, h, opts...)
}

// Decode decodes the payload of base using h. The payload is <base>.bil,
// or <base>.bil.gz / <base>.bil.zst when the plain file is absent.
func Decode(base string, h *Header, opts ...Option) (*Raster, error) {
	o := applyOptions(opts)
	if err := o.check(h); err != nil {
		return nil, err
	}

	rc, path, err := compress.Open(base + PayloadExt)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return nil, notFound(err)
		}
		return nil, err
	}
	defer rc.Close()

	// a plain payload can be measured before the raster is allocated
	if path == base+PayloadExt {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if want := h.PayloadSize(); fi.Mode().IsRegular() && fi.Size() < want {
			return nil, fmt.Errorf("decoding %s: %w", path,
				&TruncatedError{Want: want, Got: fi.Size(), Row: -1, Band: -1, Column: -1})
		}
	}

	o.logger.Debug("Decoding payload.", "path", path)
	r, err := decode(rc, h, o)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return r, nil
}

// DecodeReader decodes a payload stream using h.
func DecodeReader(r io.Reader, h *Header, opts ...Option) (*Raster, error) {
	o := applyOptions(opts)
	if err := o.check(h); err != nil {
		return nil, err
	}
	return decode(r, h, o)
}

// check validates h before any payload byte is read.
func (o *options) check(h *Header) error {
	if h == nil {
		return errors.New("bil: nil header")
	}
	if err := h.Validate(); err != nil {
		return err
	}
	if o.checkRowBytes {
		return h.checkRowBytes()
	}
	return nil
}

// decode streams samples in row, band, column order. Every sample is
// followed by BandGapBytes of padding.
func decode(r io.Reader, h *Header, o *options) (*Raster, error) {
	cfg := binpkg.DefaultConfig()
	if o.honorByteOrder {
		cfg.ByteOrder = h.Endian()
	}
	br := binpkg.NewReader(r, cfg)

	if err := br.Skip(int64(h.SkipBytes)); err != nil {
		return nil, truncated(err, -1, -1, -1)
	}

	ras := newRaster(h)
	gap := int64(h.BandGapBytes)
	for row := 0; row < h.Rows; row++ {
		for band := 0; band < h.Bands; band++ {
			for col := 0; col < h.Columns; col++ {
				s, err := readSample(br, ras.kind)
				if err != nil {
					return nil, truncated(err, row, band, col)
				}
				ras.set(row, col, band, s)

				if err := br.Skip(gap); err != nil {
					return nil, truncated(err, row, band, col)
				}
			}
		}
	}

	o.logger.Debug("Payload decoded.", "cells", ras.Len(), "bytes", br.Pos(), "kind", ras.kind.String())
	return ras, nil
}

func readSample(br *binpkg.Reader, kind SampleKind) (Sample, error) {
	switch kind {
	case KindInt8:
		v, err := br.ReadInt8()
		return Int8Sample(v), err
	case KindInt16:
		v, err := br.ReadInt16()
		return Int16Sample(v), err
	}
	return Sample{}, fmt.Errorf("%w: %s", ErrUnsupportedSampleWidth, kind)
}

// truncated converts a short read into a *TruncatedError located at the
// given cell.
func truncated(err error, row, band, col int) error {
	var sr *binpkg.ShortReadError
	if !errors.As(err, &sr) {
		return err
	}
	return &TruncatedError{
		Offset: sr.Offset,
		Want:   sr.Want,
		Got:    sr.Got,
		Row:    row,
		Band:   band,
		Column: col,
	}
}
