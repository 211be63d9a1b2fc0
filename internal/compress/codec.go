package compress

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec decodes one storage form of a payload.
type Codec interface {
	// Suffix is appended to the payload path to locate this form.
	Suffix() string

	// NewReader wraps r with a decoder.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Registry lists the codecs Open tries, in order.
var Registry = []Codec{Identity{}, Gzip{}, Zstd{}}

// Identity reads the payload as stored.
type Identity struct{}

func (Identity) Suffix() string { return "" }

func (Identity) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Gzip decodes gzip-compressed payloads.
type Gzip struct{}

func (Gzip) Suffix() string { return ".gz" }

func (Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return zr, nil
}

// Zstd decodes Zstandard-compressed payloads.
type Zstd struct{}

func (Zstd) Suffix() string { return ".zst" }

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return zr.IOReadCloser(), nil
}

// Open opens the first existing form of path in Registry order and returns
// a decoding reader together with the file name that was opened.
func Open(path string) (io.ReadCloser, string, error) {
	for _, c := range Registry {
		name := path + c.Suffix()
		f, err := os.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}

		dec, err := c.NewReader(f)
		if err != nil {
			f.Close()
			return nil, "", fmt.Errorf("opening %s: %w", name, err)
		}
		return &fileReader{ReadCloser: dec, file: f}, name, nil
	}
	return nil, "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
}

// fileReader closes the decoder before the file it reads from.
type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
