// Package mesh turns a raster band into a glTF heightmap.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/Mause/statistical-atlas-of-au/bil"
)

// ErrTooSmall is returned for rasters with fewer than two rows or columns.
var ErrTooSmall = errors.New("raster too small for a mesh")

// Options configures heightmap generation.
type Options struct {
	// VerticalScale multiplies every cell value. Zero means 1.
	VerticalScale float64

	// Name is stored on the glTF mesh. Empty means "Heightmap".
	Name string
}

// Mesh is an indexed triangle grid with one vertex per raster cell.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	Colors    [][4]float32
	Indices   []uint32
}

// Heightmap builds a grid mesh from one band of r. Vertex (row, col) sits
// at (col*XDIM, value*VerticalScale, row*YDIM) and is shaded grey by its
// height within the band range. No-data cells are pinned to the band
// minimum.
func Heightmap(r *bil.Raster, band int, opts Options) (*Mesh, error) {
	rows, cols, bands := r.Dims()
	if band < 0 || band >= bands {
		return nil, fmt.Errorf("band %d out of range [0, %d)", band, bands)
	}
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooSmall, rows, cols)
	}

	scale := opts.VerticalScale
	if scale == 0 {
		scale = 1
	}
	name := opts.Name
	if name == "" {
		name = "Heightmap"
	}

	// an all no-data band flattens to zero
	var lo, hi float64
	if st, err := r.Stats(band); err == nil {
		lo, hi = st.Min, st.Max
	} else if !errors.Is(err, bil.ErrNoData) {
		return nil, err
	}

	h := r.Header()
	xdim, ydim := 1.0, 1.0
	if h.Has(bil.FieldXDim) {
		xdim = h.XDim
	}
	if h.Has(bil.FieldYDim) {
		ydim = h.YDim
	}

	m := &Mesh{
		Name:      name,
		Positions: make([][3]float32, 0, rows*cols),
		Colors:    make([][4]float32, 0, rows*cols),
		Indices:   make([]uint32, 0, 6*(rows-1)*(cols-1)),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v, ok := r.Value(row, col, band)
			if !ok {
				v = lo
			}
			m.Positions = append(m.Positions, [3]float32{
				float32(float64(col) * xdim),
				float32(v * scale),
				float32(float64(row) * ydim),
			})

			shade := float32(0)
			if hi > lo {
				shade = float32((v - lo) / (hi - lo))
			}
			m.Colors = append(m.Colors, [4]float32{shade, shade, shade, 1})
		}
	}

	for row := 0; row < rows-1; row++ {
		for col := 0; col < cols-1; col++ {
			a := uint32(row*cols + col)
			b := a + 1
			c := a + uint32(cols)
			d := c + 1
			m.Indices = append(m.Indices, a, c, b, b, c, d)
		}
	}

	m.Normals = normals(m.Positions, m.Indices)
	return m, nil
}

// normals averages the face normals around every vertex.
func normals(positions [][3]float32, indices []uint32) [][3]float32 {
	out := make([][3]float32, len(positions))
	for i := 0; i < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		for _, v := range [3]uint32{v0, v1, v2} {
			out[v][0] += cross[0]
			out[v][1] += cross[1]
			out[v][2] += cross[2]
		}
	}

	for i, n := range out {
		length := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
		if length > 0 {
			out[i] = [3]float32{n[0] / length, n[1] / length, n[2] / length}
		} else {
			out[i] = [3]float32{0, 1, 0}
		}
	}
	return out
}
