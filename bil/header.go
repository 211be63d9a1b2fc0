package bil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/bits"
	"os"
	"strconv"

	"github.com/Mause/statistical-atlas-of-au/internal/token"
)

// HeaderExt is the file suffix of a BIL header.
const HeaderExt = ".hdr"

// LittleEndianCode is the BYTEORDER code for little-endian payloads.
const LittleEndianCode = 'I'

// MaxCells bounds Rows*Columns*Bands for a raster to be allocated.
const MaxCells = 1 << 40

// requiredFields must be declared by every header.
var requiredFields = [...]Field{FieldRows, FieldColumns, FieldBands, FieldBits}

// Header describes the geometry and encoding of a BIL dataset.
type Header struct {
	// ByteOrder is the raw BYTEORDER code. 'I' means little-endian, any
	// other code big-endian.
	ByteOrder byte

	// Layout is the LAYOUT tag, normally "BIL".
	Layout string

	Rows          int
	Columns       int
	Bands         int
	BitsPerSample int

	// Informational row sizes, only checked by WithRowBytesCheck.
	BandRowBytes  int
	TotalRowBytes int

	// SkipBytes precede the first sample; BandGapBytes follow every sample.
	SkipBytes    int
	BandGapBytes int

	NoData float64
	ULXMap float64
	ULYMap float64
	XDim   float64
	YDim   float64
	Scale  float64
	Offset float64

	declared uint32 // bit f set when field f appeared in the header
}

// NewHeader returns a header with the required geometry declared.
// It is meant for decoding streams whose header was not read from a file.
func NewHeader(rows, columns, bands, bitsPerSample int) *Header {
	h := &Header{
		ByteOrder:     LittleEndianCode,
		Layout:        "BIL",
		Rows:          rows,
		Columns:       columns,
		Bands:         bands,
		BitsPerSample: bitsPerSample,
	}
	for _, f := range requiredFields {
		h.declare(f)
	}
	h.declare(FieldByteOrder)
	h.declare(FieldLayout)
	return h
}

// ReadHeader reads and parses <base>.hdr.
func ReadHeader(base string, opts ...Option) (*Header, error) {
	o := applyOptions(opts)
	path := base + HeaderExt

	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(err)
	}
	defer f.Close()

	h, err := parseHeader(f, o.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return h, nil
}

// ParseHeader parses BIL header text. Parsing stops at the first unknown
// keyword or unparsable value.
func ParseHeader(r io.Reader) (*Header, error) {
	return parseHeader(r, discardLogger)
}

func parseHeader(r io.Reader, logger *slog.Logger) (*Header, error) {
	s := token.NewScanner(r)
	h := &Header{}

	for {
		name, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}

		field, ok := Classify(name)
		if !ok {
			return nil, &HeaderError{Token: name, Line: s.Line(), Err: ErrMalformedHeader}
		}
		if err := h.parseValue(field, s); err != nil {
			return nil, err
		}
		h.declare(field)
	}

	for _, f := range requiredFields {
		if !h.Has(f) {
			return nil, &HeaderError{Field: f, Err: ErrMissingField}
		}
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Header parsed.",
		"rows", h.Rows, "columns", h.Columns, "bands", h.Bands,
		"bits", h.BitsPerSample, "byte_order", string(h.ByteOrder))
	return h, nil
}

// parseValue consumes the value of field from s.
func (h *Header) parseValue(field Field, s *token.Scanner) error {
	switch field.kind() {
	case kindChar:
		c, err := s.Char()
		if err != nil {
			return &HeaderError{Field: field, Line: s.Line(), Err: ErrMalformedHeader, Cause: err}
		}
		h.ByteOrder = c
		return nil

	case kindLine:
		v, err := s.Rest()
		if err != nil {
			return &HeaderError{Field: field, Line: s.Line(), Err: ErrMalformedHeader, Cause: err}
		}
		h.Layout = v
		return nil
	}

	tok, err := s.Next()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return &HeaderError{Field: field, Line: s.Line(), Err: ErrMalformedHeader, Cause: err}
	}

	if field.kind() == kindFloat {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return &HeaderError{Field: field, Token: tok, Line: s.Line(), Err: ErrMalformedHeader, Cause: err}
		}
		*h.floatField(field) = v
		return nil
	}

	v, err := strconv.Atoi(tok)
	if err != nil {
		return &HeaderError{Field: field, Token: tok, Line: s.Line(), Err: ErrMalformedHeader, Cause: err}
	}
	*h.intField(field) = v
	return nil
}

func (h *Header) intField(f Field) *int {
	switch f {
	case FieldRows:
		return &h.Rows
	case FieldColumns:
		return &h.Columns
	case FieldBands:
		return &h.Bands
	case FieldBits:
		return &h.BitsPerSample
	case FieldBandRowBytes:
		return &h.BandRowBytes
	case FieldTotalRowBytes:
		return &h.TotalRowBytes
	case FieldSkipBytes:
		return &h.SkipBytes
	case FieldBandGapBytes:
		return &h.BandGapBytes
	}
	panic("bil: not an integer field: " + f.String())
}

func (h *Header) floatField(f Field) *float64 {
	switch f {
	case FieldNoData:
		return &h.NoData
	case FieldULXMap:
		return &h.ULXMap
	case FieldULYMap:
		return &h.ULYMap
	case FieldXDim:
		return &h.XDim
	case FieldYDim:
		return &h.YDim
	case FieldScale:
		return &h.Scale
	case FieldOffset:
		return &h.Offset
	}
	panic("bil: not a float field: " + f.String())
}

func (h *Header) declare(f Field) {
	h.declared |= 1 << f
}

// Has reports whether the header declared f.
func (h *Header) Has(f Field) bool {
	return h.declared&(1<<f) != 0
}

// Validate checks the geometry invariants: positive dimensions, 8 or 16
// bits per sample, non-negative byte counts and a raster small enough to
// allocate.
func (h *Header) Validate() error {
	positive := []struct {
		field Field
		v     int
	}{
		{FieldRows, h.Rows},
		{FieldColumns, h.Columns},
		{FieldBands, h.Bands},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return &HeaderError{Field: p.field, Token: strconv.Itoa(p.v), Err: ErrMalformedHeader,
				Cause: errors.New("must be positive")}
		}
	}

	if h.SampleBytes() == 0 {
		return &HeaderError{Field: FieldBits, Token: strconv.Itoa(h.BitsPerSample), Err: ErrUnsupportedSampleWidth}
	}

	counts := []struct {
		field Field
		v     int
	}{
		{FieldSkipBytes, h.SkipBytes},
		{FieldBandGapBytes, h.BandGapBytes},
		{FieldBandRowBytes, h.BandRowBytes},
		{FieldTotalRowBytes, h.TotalRowBytes},
	}
	for _, c := range counts {
		if c.v < 0 {
			return &HeaderError{Field: c.field, Token: strconv.Itoa(c.v), Err: ErrMalformedHeader,
				Cause: errors.New("must not be negative")}
		}
	}
	return h.checkSize()
}

// checkSize rejects geometries whose cell count exceeds MaxCells or whose
// payload size does not fit an int64.
func (h *Header) checkSize() error {
	dims := fmt.Sprintf("%dx%dx%d", h.Rows, h.Columns, h.Bands)

	hi, cells := bits.Mul64(uint64(h.Rows), uint64(h.Columns))
	if hi == 0 {
		hi, cells = bits.Mul64(cells, uint64(h.Bands))
	}
	if hi != 0 || cells > MaxCells || cells > math.MaxInt {
		return &HeaderError{Token: dims, Err: ErrMalformedHeader,
			Cause: fmt.Errorf("cell count exceeds %d", uint64(MaxCells))}
	}

	hi, size := bits.Mul64(cells, uint64(h.SampleBytes())+uint64(h.BandGapBytes))
	size, carry := bits.Add64(size, uint64(h.SkipBytes), 0)
	if hi != 0 || carry != 0 || size > math.MaxInt64 {
		return &HeaderError{Token: dims, Err: ErrMalformedHeader,
			Cause: errors.New("payload size overflows")}
	}
	return nil
}

// SampleBytes returns the byte width of one sample, or 0 when
// BitsPerSample is not supported.
func (h *Header) SampleBytes() int {
	switch h.BitsPerSample {
	case 8:
		return 1
	case 16:
		return 2
	}
	return 0
}

// LittleEndian reports whether BYTEORDER declares little-endian samples.
func (h *Header) LittleEndian() bool {
	return h.ByteOrder == LittleEndianCode
}

// Endian returns the byte order BYTEORDER declares.
func (h *Header) Endian() binary.ByteOrder {
	if h.LittleEndian() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// PayloadSize returns the number of payload bytes the geometry requires,
// skip and gap bytes included. It is only meaningful for a valid header.
func (h *Header) PayloadSize() int64 {
	cells := int64(h.Rows) * int64(h.Columns) * int64(h.Bands)
	return int64(h.SkipBytes) + cells*int64(h.SampleBytes()+h.BandGapBytes)
}

// checkRowBytes compares declared row sizes against the geometry.
func (h *Header) checkRowBytes() error {
	bandRow := h.Columns * h.SampleBytes()
	if h.Has(FieldBandRowBytes) && h.BandRowBytes != bandRow {
		return &HeaderError{Field: FieldBandRowBytes, Token: strconv.Itoa(h.BandRowBytes), Err: ErrMalformedHeader,
			Cause: fmt.Errorf("expected %d", bandRow)}
	}
	totalRow := h.Bands * bandRow
	if h.Has(FieldTotalRowBytes) && h.TotalRowBytes != totalRow {
		return &HeaderError{Field: FieldTotalRowBytes, Token: strconv.Itoa(h.TotalRowBytes), Err: ErrMalformedHeader,
			Cause: fmt.Errorf("expected %d", totalRow)}
	}
	return nil
}

// Lookup returns the textual value of f as declared in the header.
func (h *Header) Lookup(f Field) (string, bool) {
	if f == 0 || f > numFields || !h.Has(f) {
		return "", false
	}
	switch f.kind() {
	case kindChar:
		return string(h.ByteOrder), true
	case kindLine:
		return h.Layout, true
	case kindFloat:
		return strconv.FormatFloat(*h.floatField(f), 'g', -1, 64), true
	}
	return strconv.Itoa(*h.intField(f)), true
}
