package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Mause/statistical-atlas-of-au/bil"
	"github.com/Mause/statistical-atlas-of-au/internal/ctxlog"
	"github.com/Mause/statistical-atlas-of-au/internal/mesh"
)

// task is one dataset and the commands to run against it.
type task struct {
	Name          string
	Base          string
	Commands      []string
	Out           string
	Band          int
	VerticalScale float64
	Options       []bil.Option
}

func (t *task) run(ctx context.Context, w io.Writer) error {
	logger := ctxlog.FromContext(ctx).With("dataset", t.Name)
	opts := append(slices.Clone(t.Options), bil.WithLogger(logger))

	h, err := bil.ReadHeader(t.Base, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}

	var r *bil.Raster
	for _, cmd := range t.Commands {
		if cmd != "header" && r == nil {
			if r, err = bil.Decode(t.Base, h, opts...); err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
		}

		switch cmd {
		case "header":
			printHeader(w, h)
		case "stats":
			printStats(w, r)
		case "dump":
			dump(w, r)
		case "glb":
			if err := exportGLB(t, r); err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			logger.Info("Heightmap written.", "path", t.Out, "band", t.Band)
		default:
			return fmt.Errorf("%s: unknown command %q", t.Name, cmd)
		}
	}
	return nil
}

func printHeader(w io.Writer, h *bil.Header) {
	for _, f := range bil.Fields() {
		if v, ok := h.Lookup(f); ok {
			fmt.Fprintf(w, "%-14s %s\n", f, v)
		}
	}
}

func printStats(w io.Writer, r *bil.Raster) {
	_, _, bands := r.Dims()
	for b := 0; b < bands; b++ {
		st, err := r.Stats(b)
		if errors.Is(err, bil.ErrNoData) {
			fmt.Fprintf(w, "band %d: no data (%d no-data cells)\n", b, st.NoData)
			continue
		}
		fmt.Fprintf(w, "band %d: count=%d nodata=%d min=%g max=%g mean=%g stddev=%g\n",
			b, st.Count, st.NoData, st.Min, st.Max, st.Mean, st.StdDev)
	}
	fmt.Fprintf(w, "fingerprint %016x\n", r.Fingerprint())
}

// dump prints one line per row; cells are separated by spaces and the
// bands of a cell by colons.
func dump(w io.Writer, r *bil.Raster) {
	rows, cols, bands := r.Dims()
	var b strings.Builder
	for row := 0; row < rows; row++ {
		b.Reset()
		for col := 0; col < cols; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			for band := 0; band < bands; band++ {
				if band > 0 {
					b.WriteByte(':')
				}
				b.WriteString(r.At(row, col, band).String())
			}
		}
		b.WriteByte('\n')
		io.WriteString(w, b.String())
	}
}

func exportGLB(t *task, r *bil.Raster) error {
	m, err := mesh.Heightmap(r, t.Band, mesh.Options{
		VerticalScale: t.VerticalScale,
		Name:          filepath.Base(t.Base),
	})
	if err != nil {
		return err
	}
	return mesh.Save(t.Out, m.Document())
}
