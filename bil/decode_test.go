package bil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// writeDataset writes <dir>/<name>.hdr and the payload under the given
// suffix, and returns the base path.
func writeDataset(t *testing.T, dir, name, header string, payload []byte, suffix string) string {
	t.Helper()
	base := filepath.Join(dir, name)
	if err := os.WriteFile(base+HeaderExt, []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	if payload != nil {
		if err := os.WriteFile(base+PayloadExt+suffix, payload, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func le16(values ...int16) []byte {
	buf := make([]byte, 0, 2*len(values))
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	}
	return buf
}

func TestOpenEndToEnd(t *testing.T) {
	base := writeDataset(t, t.TempDir(), "tiny",
		"NROWS 2\nNCOLS 2\nNBANDS 1\nNBITS 8\n", []byte{10, 20, 30, 40}, "")

	r, err := Open(base)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if r.Kind() != KindInt8 {
		t.Errorf("Kind: got %v, want int8", r.Kind())
	}

	want := [2][2]int{{10, 20}, {30, 40}}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			got := r.At(row, col, 0)
			if got.Kind() != KindInt8 || got.Int() != want[row][col] {
				t.Errorf("[%d][%d][0]: got %v (%v), want %d", row, col, got, got.Kind(), want[row][col])
			}
		}
	}
}

func TestDecodeSampleWidths(t *testing.T) {
	tests := []struct {
		name    string
		bits    int
		payload []byte
		want    []int
	}{
		{"8 bit signed", 8, []byte{0xFF, 0x7F, 0x80, 0x00}, []int{-1, 127, -128, 0}},
		{"16 bit little-endian", 16, []byte{0x01, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0x00, 0x80}, []int{1, 256, -1, -32768}},
		// the low byte is unsigned: 0x80 0x00 is 128, not -128
		{"16 bit high low byte", 16, []byte{0x80, 0x00, 0xFF, 0x00, 0x80, 0xFF}, []int{128, 255, -128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeReader(bytes.NewReader(tt.payload), NewHeader(1, len(tt.want), 1, tt.bits))
			if err != nil {
				t.Fatalf("DecodeReader failed: %v", err)
			}
			for col, want := range tt.want {
				if got := r.At(0, col, 0).Int(); got != want {
					t.Errorf("column %d: got %d, want %d", col, got, want)
				}
			}
		})
	}
}

func TestDecodeInt8Accessors(t *testing.T) {
	r, err := DecodeReader(bytes.NewReader([]byte{0xFF}), NewHeader(1, 1, 1, 8))
	if err != nil {
		t.Fatal(err)
	}
	s := r.At(0, 0, 0)
	if v, ok := s.Int8(); !ok || v != -1 {
		t.Errorf("Int8: got %d %v", v, ok)
	}
	if _, ok := s.Int16(); ok {
		t.Error("8-bit sample must not report an int16 value")
	}
}

func TestDecodeByteOrder(t *testing.T) {
	h := NewHeader(1, 2, 1, 16)
	h.ByteOrder = 'M'
	payload := []byte{0x00, 0x01, 0x01, 0x00}

	r, err := DecodeReader(bytes.NewReader(payload), h)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.At(0, 0, 0).Int(); got != 256 {
		t.Errorf("default decoding ignores BYTEORDER: got %d, want 256", got)
	}

	r, err = DecodeReader(bytes.NewReader(payload), h, WithByteOrder())
	if err != nil {
		t.Fatal(err)
	}
	if got := r.At(0, 0, 0).Int(); got != 1 {
		t.Errorf("WithByteOrder big-endian: got %d, want 1", got)
	}
	if got := r.At(0, 1, 0).Int(); got != 256 {
		t.Errorf("WithByteOrder big-endian: got %d, want 256", got)
	}
}

func TestDecodeInterleaving(t *testing.T) {
	// row 0: band 0 = 1 2, band 1 = 3 4; row 1: band 0 = 5 6, band 1 = 7 8
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r, err := DecodeReader(bytes.NewReader(payload), NewHeader(2, 2, 2, 8))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		row, col, band int
		want           int
	}{
		{0, 0, 0, 1}, {0, 1, 0, 2}, {0, 0, 1, 3}, {0, 1, 1, 4},
		{1, 0, 0, 5}, {1, 1, 0, 6}, {1, 0, 1, 7}, {1, 1, 1, 8},
	}
	for _, tt := range tests {
		if got := r.At(tt.row, tt.col, tt.band).Int(); got != tt.want {
			t.Errorf("[%d][%d][%d]: got %d, want %d", tt.row, tt.col, tt.band, got, tt.want)
		}
	}
}

func TestDecodeSkipBytes(t *testing.T) {
	h := NewHeader(1, 2, 1, 8)
	h.SkipBytes = 3
	r, err := DecodeReader(bytes.NewReader([]byte{9, 9, 9, 10, 20}), h)
	if err != nil {
		t.Fatal(err)
	}
	if r.At(0, 0, 0).Int() != 10 || r.At(0, 1, 0).Int() != 20 {
		t.Errorf("skip bytes not honoured: %v %v", r.At(0, 0, 0), r.At(0, 1, 0))
	}
}

func TestDecodeGapContentIgnored(t *testing.T) {
	h := NewHeader(2, 2, 1, 16)
	h.BandGapBytes = 2

	build := func(fill byte) []byte {
		var buf []byte
		for _, v := range []int16{100, -200, 300, -400} {
			buf = append(buf, le16(v)...)
			buf = append(buf, fill, fill)
		}
		return buf
	}

	zeros, err := DecodeReader(bytes.NewReader(build(0x00)), h)
	if err != nil {
		t.Fatal(err)
	}
	junk, err := DecodeReader(bytes.NewReader(build(0xAA)), h)
	if err != nil {
		t.Fatal(err)
	}

	if zeros.Fingerprint() != junk.Fingerprint() {
		t.Error("gap content changed the decoded raster")
	}
	if got := junk.At(1, 1, 0).Int(); got != -400 {
		t.Errorf("[1][1][0]: got %d, want -400", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	withGap := NewHeader(1, 1, 1, 8)
	withGap.BandGapBytes = 1
	withSkip := NewHeader(1, 1, 1, 8)
	withSkip.SkipBytes = 4

	tests := []struct {
		name    string
		header  *Header
		payload []byte
		want    TruncatedError
	}{
		{"empty", NewHeader(1, 1, 1, 8), nil,
			TruncatedError{Offset: 0, Want: 1, Got: 0, Row: 0, Band: 0, Column: 0}},
		{"missing sample", NewHeader(1, 2, 1, 8), []byte{1},
			TruncatedError{Offset: 1, Want: 1, Got: 0, Row: 0, Band: 0, Column: 1}},
		{"half sample", NewHeader(1, 2, 1, 16), []byte{1, 0, 5},
			TruncatedError{Offset: 2, Want: 2, Got: 1, Row: 0, Band: 0, Column: 1}},
		{"missing trailing gap", withGap, []byte{1},
			TruncatedError{Offset: 1, Want: 1, Got: 0, Row: 0, Band: 0, Column: 0}},
		{"short skip", withSkip, []byte{0, 0},
			TruncatedError{Offset: 0, Want: 4, Got: 2, Row: -1, Band: -1, Column: -1}},
		{"missing band", NewHeader(1, 1, 2, 8), []byte{1},
			TruncatedError{Offset: 1, Want: 1, Got: 0, Row: 0, Band: 1, Column: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeReader(bytes.NewReader(tt.payload), tt.header)
			if r != nil {
				t.Error("no partial raster may be returned")
			}
			if !errors.Is(err, ErrTruncatedData) {
				t.Fatalf("expected ErrTruncatedData, got %v", err)
			}
			var te *TruncatedError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TruncatedError, got %T", err)
			}
			if *te != tt.want {
				t.Errorf("got %+v, want %+v", *te, tt.want)
			}
		})
	}
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	r, err := DecodeReader(bytes.NewReader([]byte{1, 2, 3}), NewHeader(1, 1, 1, 8))
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 || r.At(0, 0, 0).Int() != 1 {
		t.Errorf("unexpected raster: len %d first %v", r.Len(), r.At(0, 0, 0))
	}
}

func TestDecodeCellCount(t *testing.T) {
	dims := [][3]int{{1, 1, 1}, {3, 4, 1}, {2, 5, 3}, {7, 1, 4}}
	for _, bits := range []int{8, 16} {
		for _, d := range dims {
			rows, cols, bands := d[0], d[1], d[2]
			t.Run(fmt.Sprintf("%dx%dx%d/%d", rows, cols, bands, bits), func(t *testing.T) {
				h := NewHeader(rows, cols, bands, bits)
				payload := make([]byte, h.PayloadSize())
				r, err := DecodeReader(bytes.NewReader(payload), h)
				if err != nil {
					t.Fatal(err)
				}
				if r.Len() != rows*cols*bands {
					t.Fatalf("Len: got %d, want %d", r.Len(), rows*cols*bands)
				}
				seen := make(map[int]bool)
				for row := 0; row < rows; row++ {
					for col := 0; col < cols; col++ {
						for band := 0; band < bands; band++ {
							if k := r.At(row, col, band).Kind(); k != kindForBits(bits) {
								t.Errorf("[%d][%d][%d]: kind %v", row, col, band, k)
							}
							seen[r.Index(row, col, band)] = true
						}
					}
				}
				if len(seen) != r.Len() {
					t.Errorf("reached %d distinct cells, want %d", len(seen), r.Len())
				}
			})
		}
	}
}

func TestDecodeRejectsHeaderBeforeReading(t *testing.T) {
	dir := t.TempDir()
	// no payload on disk: the header must fail first
	base := filepath.Join(dir, "wide")

	h := NewHeader(2, 2, 1, 32)
	_, err := Decode(base, h)
	if !errors.Is(err, ErrUnsupportedSampleWidth) {
		t.Errorf("expected ErrUnsupportedSampleWidth, got %v", err)
	}

	_, err = Decode(base, nil)
	if err == nil {
		t.Error("expected error for nil header")
	}

	bad := NewHeader(1, 2, 1, 8)
	bad.BandRowBytes = 5
	bad.declare(FieldBandRowBytes)
	_, err = Decode(base, bad, WithRowBytesCheck())
	if !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("expected ErrMalformedHeader from row bytes check, got %v", err)
	}
}

func TestDecodeRowBytesCheckOptional(t *testing.T) {
	h := NewHeader(1, 2, 1, 8)
	h.BandRowBytes = 5
	h.declare(FieldBandRowBytes)
	if _, err := DecodeReader(bytes.NewReader([]byte{1, 2}), h); err != nil {
		t.Errorf("row bytes are informational by default: %v", err)
	}
}

func TestDecodePayloadNotFound(t *testing.T) {
	base := writeDataset(t, t.TempDir(), "headless", geometry, nil, "")
	_, err := Open(base)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestOpenTruncatedNamesPayload(t *testing.T) {
	base := writeDataset(t, t.TempDir(), "short", geometry, []byte{1, 2, 3}, "")
	_, err := Open(base)
	if !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("expected ErrTruncatedData, got %v", err)
	}
	if !strings.Contains(err.Error(), base+PayloadExt) {
		t.Errorf("error should name the payload: %v", err)
	}
	var te *TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TruncatedError, got %T", err)
	}
	want := TruncatedError{Want: 4, Got: 3, Row: -1, Band: -1, Column: -1}
	if *te != want {
		t.Errorf("got %+v, want %+v", *te, want)
	}
}

func TestOpenShortPlainPayloadBeforeAllocation(t *testing.T) {
	// 10^10 cells: allocating them first would exhaust memory
	header := "NROWS 100000\nNCOLS 100000\nNBANDS 1\nNBITS 8\n"
	base := writeDataset(t, t.TempDir(), "huge", header, []byte{1, 2, 3}, "")

	_, err := Open(base)
	var te *TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TruncatedError, got %v", err)
	}
	if te.Want != 10_000_000_000 || te.Got != 3 || te.Row != -1 {
		t.Errorf("unexpected truncation %+v", *te)
	}
}

func TestOpenTruncatedCompressedNamesCell(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	base := writeDataset(t, t.TempDir(), "short", geometry, gz.Bytes(), ".gz")
	_, err := Open(base)
	var te *TruncatedError
	if !errors.As(err, &te) || te.Row != 1 || te.Column != 1 {
		t.Errorf("expected truncation at [1][1], got %v", err)
	}
}

func TestDecodeRejectsOversizedGeometry(t *testing.T) {
	overflow := NewHeader(2, 3, 1, 8)
	overflow.Rows = math.MaxInt

	huge := NewHeader(2000000, 2000000, 1, 8)

	for name, h := range map[string]*Header{"overflow": overflow, "huge": huge} {
		t.Run(name, func(t *testing.T) {
			r, err := DecodeReader(bytes.NewReader([]byte{1, 2, 3}), h)
			if r != nil {
				t.Error("no raster may be returned")
			}
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("expected ErrMalformedHeader, got %v", err)
			}
		})
	}
}

func TestOpenCompressed(t *testing.T) {
	header := "NROWS 2\nNCOLS 3\nNBANDS 2\nNBITS 16\n"
	payload := le16(1, 2, 3, -1, -2, -3, 10, 20, 30, -10, -20, -30)

	plain, err := Open(writeDataset(t, t.TempDir(), "grid", header, payload, ""))
	if err != nil {
		t.Fatalf("plain: %v", err)
	}

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zst := enc.EncodeAll(payload, nil)
	enc.Close()

	tests := []struct {
		suffix string
		data   []byte
	}{
		{".gz", gz.Bytes()},
		{".zst", zst},
	}
	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			r, err := Open(writeDataset(t, t.TempDir(), "grid", header, tt.data, tt.suffix))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if r.Fingerprint() != plain.Fingerprint() {
				t.Error("compressed payload decoded differently")
			}
			if got := r.At(1, 2, 1).Int(); got != -30 {
				t.Errorf("[1][2][1]: got %d, want -30", got)
			}
		})
	}
}

// TestOpenColourSample mirrors an 8x8 three band colour swatch: band 0 and
// band 2 ramp down the rows in pairs, band 1 ramps across the columns.
func TestOpenColourSample(t *testing.T) {
	ramp := []byte{0, 64, 128, 255}
	inverse := []byte{255, 128, 64, 0}

	var payload []byte
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			payload = append(payload, ramp[row/2])
		}
		for col := 0; col < 8; col++ {
			payload = append(payload, ramp[col/2])
		}
		for col := 0; col < 8; col++ {
			payload = append(payload, inverse[row/2])
		}
	}

	header := "BYTEORDER I\nNROWS 8\nNCOLS 8\nNBANDS 3\nNBITS 8\n"
	r, err := Open(writeDataset(t, t.TempDir(), "sample", header, payload, ""))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			want := []byte{ramp[row/2], ramp[col/2], inverse[row/2]}
			for band, b := range want {
				if got := r.At(row, col, band).Int(); got != int(int8(b)) {
					t.Errorf("[%d][%d][%d]: got %d, want %d", row, col, band, got, int8(b))
				}
			}
		}
	}
}

func TestOpenWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	base := writeDataset(t, t.TempDir(), "logged", geometry, []byte{1, 2, 3, 4}, "")
	if _, err := Open(base, WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"Header parsed.", "Payload decoded."} {
		if !bytes.Contains(buf.Bytes(), []byte(msg)) {
			t.Errorf("log output missing %q:\n%s", msg, buf.String())
		}
	}
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
