package bil

import (
	"encoding/binary"
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// Raster holds the decoded samples of a dataset, indexed [row][column][band].
// Samples live in a single slice in row, column, band order.
type Raster struct {
	header  *Header
	kind    SampleKind
	samples []Sample
}

// Point is a georeferenced cell value.
type Point struct {
	X     float64
	Y     float64
	Value float64
}

// newRaster allocates every cell for the geometry of h.
func newRaster(h *Header) *Raster {
	return &Raster{
		header:  h,
		kind:    kindForBits(h.BitsPerSample),
		samples: make([]Sample, h.Rows*h.Columns*h.Bands),
	}
}

// Header returns the header the raster was decoded with.
func (r *Raster) Header() *Header {
	return r.header
}

// Kind returns the sample representation shared by every cell.
func (r *Raster) Kind() SampleKind {
	return r.kind
}

// Dims returns the raster dimensions.
func (r *Raster) Dims() (rows, columns, bands int) {
	return r.header.Rows, r.header.Columns, r.header.Bands
}

// Len returns the number of cells.
func (r *Raster) Len() int {
	return len(r.samples)
}

// Index returns the position of a cell in the flat sample order. It panics
// when any coordinate is out of range.
func (r *Raster) Index(row, column, band int) int {
	h := r.header
	if row < 0 || row >= h.Rows || column < 0 || column >= h.Columns || band < 0 || band >= h.Bands {
		panic(fmt.Sprintf("bil: cell [%d][%d][%d] out of range [%d][%d][%d]",
			row, column, band, h.Rows, h.Columns, h.Bands))
	}
	return (row*h.Columns+column)*h.Bands + band
}

// At returns the sample at [row][column][band].
func (r *Raster) At(row, column, band int) Sample {
	return r.samples[r.Index(row, column, band)]
}

func (r *Raster) set(row, column, band int, s Sample) {
	r.samples[(row*r.header.Columns+column)*r.header.Bands+band] = s
}

// Band returns a copy of one band in row-major order.
func (r *Raster) Band(band int) []Sample {
	h := r.header
	if band < 0 || band >= h.Bands {
		panic(fmt.Sprintf("bil: band %d out of range %d", band, h.Bands))
	}
	out := make([]Sample, 0, h.Rows*h.Columns)
	for i := band; i < len(r.samples); i += h.Bands {
		out = append(out, r.samples[i])
	}
	return out
}

// Value interprets the sample at [row][column][band]: raw*SCALE + OFFSET,
// with SCALE defaulting to 1 and OFFSET to 0 when the header omits them.
// It reports false when the raw sample equals a declared NODATA.
func (r *Raster) Value(row, column, band int) (float64, bool) {
	return r.value(r.At(row, column, band))
}

func (r *Raster) value(s Sample) (float64, bool) {
	h := r.header
	v := s.Float64()
	if h.Has(FieldNoData) && v == h.NoData {
		return 0, false
	}
	if h.Has(FieldScale) {
		v *= h.Scale
	}
	if h.Has(FieldOffset) {
		v += h.Offset
	}
	return v, true
}

// Coord returns the map coordinate of the centre of a cell. ULXMAP and
// ULYMAP locate the centre of the upper-left cell; XDIM and YDIM default
// to 1 when absent.
func (r *Raster) Coord(row, column int) (x, y float64) {
	h := r.header
	xdim, ydim := 1.0, 1.0
	if h.Has(FieldXDim) {
		xdim = h.XDim
	}
	if h.Has(FieldYDim) {
		ydim = h.YDim
	}
	return h.ULXMap + float64(column)*xdim, h.ULYMap - float64(row)*ydim
}

// Points returns every cell of band holding data, in row-major order.
func (r *Raster) Points(band int) []Point {
	h := r.header
	points := make([]Point, 0, h.Rows*h.Columns)
	for row := 0; row < h.Rows; row++ {
		for col := 0; col < h.Columns; col++ {
			v, ok := r.Value(row, col, band)
			if !ok {
				continue
			}
			x, y := r.Coord(row, col)
			points = append(points, Point{X: x, Y: y, Value: v})
		}
	}
	return points
}

// Fingerprint returns an xxhash64 digest of the geometry and every sample.
// Two rasters with equal dimensions, kind and values share a fingerprint
// whatever compression or gap content their payloads used.
func (r *Raster) Fingerprint() uint64 {
	d := xxhash.New()

	var hdr [13]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(r.header.Rows))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(r.header.Columns))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(r.header.Bands))
	hdr[12] = byte(r.kind)
	d.Write(hdr[:])

	buf := make([]byte, 0, 4096)
	for _, s := range r.samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s.v))
		if len(buf) == cap(buf) {
			d.Write(buf)
			buf = buf[:0]
		}
	}
	d.Write(buf)
	return d.Sum64()
}
