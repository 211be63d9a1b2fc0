// Package job loads HCL job files describing a batch of BIL datasets for
// bilinfo to process.
//
// A job file holds one or more dataset blocks:
//
//	dataset "elevation" {
//	  base             = "data/elevation"
//	  honor_byte_order = true
//	  commands         = ["header", "stats", "glb"]
//	  band             = 0
//	  vertical_scale   = 0.01
//	  glb              = "out/elevation.glb"
//	}
//
// Relative paths resolve against the directory of the job file.
package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Mause/statistical-atlas-of-au/bil"
)

// Commands lists the command names a dataset block may request.
var Commands = []string{"header", "stats", "dump", "glb"}

// DefaultCommands run when a dataset block names none.
var DefaultCommands = []string{"header", "stats"}

// File is a decoded job file.
type File struct {
	Path     string
	Datasets []*Dataset
}

// Dataset is one dataset block.
type Dataset struct {
	Name           string   `hcl:"name,label"`
	Base           string   `hcl:"base"`
	HonorByteOrder bool     `hcl:"honor_byte_order,optional"`
	CheckRowBytes  bool     `hcl:"check_row_bytes,optional"`
	Commands       []string `hcl:"commands,optional"`
	Band           int      `hcl:"band,optional"`
	VerticalScale  float64  `hcl:"vertical_scale,optional"`
	GLB            string   `hcl:"glb,optional"`
}

// hclJobFile is the top-level structure of a job file for decoding.
type hclJobFile struct {
	Datasets []*Dataset `hcl:"dataset,block"`
}

// Load parses and validates the job file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, diags)
	}
	return decode(path, hclFile)
}

// Parse parses job file source. filename is used in diagnostics and as the
// anchor for relative paths.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse job file %s: %w", filename, diags)
	}
	return decode(filename, hclFile)
}

func decode(path string, hclFile *hcl.File) (*File, error) {
	var parsed hclJobFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode job file %s: %w", path, diags)
	}

	dir := filepath.Dir(path)
	seen := make(map[string]bool, len(parsed.Datasets))
	for _, ds := range parsed.Datasets {
		if seen[ds.Name] {
			return nil, fmt.Errorf("job file %s: duplicate dataset %q", path, ds.Name)
		}
		seen[ds.Name] = true

		if err := ds.validate(); err != nil {
			return nil, fmt.Errorf("job file %s: dataset %q: %w", path, ds.Name, err)
		}
		ds.Base = resolve(dir, ds.Base)
		if ds.GLB != "" {
			ds.GLB = resolve(dir, ds.GLB)
		}
	}

	return &File{Path: path, Datasets: parsed.Datasets}, nil
}

func (ds *Dataset) validate() error {
	if ds.Base == "" {
		return errors.New("base must not be empty")
	}
	if ds.Band < 0 {
		return fmt.Errorf("band must not be negative, got %d", ds.Band)
	}
	if len(ds.Commands) == 0 {
		ds.Commands = slices.Clone(DefaultCommands)
	}
	for _, c := range ds.Commands {
		if !slices.Contains(Commands, c) {
			return fmt.Errorf("unknown command %q", c)
		}
	}
	if slices.Contains(ds.Commands, "glb") && ds.GLB == "" {
		return errors.New("command glb needs a glb output path")
	}
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Options returns the decoder options the block asks for.
func (ds *Dataset) Options() []bil.Option {
	var opts []bil.Option
	if ds.HonorByteOrder {
		opts = append(opts, bil.WithByteOrder())
	}
	if ds.CheckRowBytes {
		opts = append(opts, bil.WithRowBytesCheck())
	}
	return opts
}
