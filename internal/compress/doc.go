// Package compress opens BIL payload files that may be stored compressed.
//
// A payload named <base>.bil may also be distributed as <base>.bil.gz or
// <base>.bil.zst. Each storage form is a [Codec] identified by its file
// suffix. [Open] tries the registered codecs in [Registry] order and
// streams the first payload that exists through the matching decoder.
//
// # Supported Codecs
//
//   - Identity (""): the plain payload, read as is.
//   - Gzip (".gz"): gzip streams via github.com/klauspost/compress/gzip.
//   - Zstd (".zst"): Zstandard frames via github.com/klauspost/compress/zstd.
//
// # Usage
//
//	rc, path, err := compress.Open("dem/elscnf.bil")
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
// Closing the returned reader releases the decoder and the file. When no
// candidate exists the error wraps [fs.ErrNotExist].
package compress
