package bil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// WalkFunc is called for each dataset found by Walk.
// base is the dataset path without extension.
// r is the decoded raster, nil when err is non-nil.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(base string, r *Raster, err error) error

// Find returns the base path of every header file under root, sorted.
func Find(root string) ([]string, error) {
	var bases []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != HeaderExt {
			return nil
		}
		bases = append(bases, strings.TrimSuffix(path, HeaderExt))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(bases)
	return bases, nil
}

// Walk opens every dataset under root and calls fn with the result.
// A dataset that fails to open is reported through fn rather than
// stopping the walk.
//
// Example:
//
//	bil.Walk("data", func(base string, r *bil.Raster, err error) error {
//	    if err != nil {
//	        return err // or skip: return nil
//	    }
//	    rows, cols, bands := r.Dims()
//	    fmt.Println(base, rows, cols, bands)
//	    return nil
//	})
func Walk(root string, fn WalkFunc, opts ...Option) error {
	bases, err := Find(root)
	if err != nil {
		return err
	}
	for _, base := range bases {
		r, openErr := Open(base, opts...)
		if err := fn(base, r, openErr); err != nil {
			return err
		}
	}
	return nil
}
