// Package bil reads raster datasets stored in the Band Interleaved by Line
// (BIL) format.
//
// A dataset is a pair of files sharing a base path: a text header
// <base>.hdr and a binary payload <base>.bil. The payload may instead be
// stored compressed as <base>.bil.gz or <base>.bil.zst.
//
// # Header
//
// The header is a sequence of whitespace-separated keyword/value pairs.
// Keywords are case-sensitive:
//
//	BYTEORDER     I
//	LAYOUT        BIL
//	NROWS         480
//	NCOLS         640
//	NBANDS        1
//	NBITS         16
//	BANDROWBYTES  1280
//	TOTALROWBYTES 1280
//	BANDGAPBYTES  0
//	NODATA        -9999
//	ULXMAP        112.0
//	ULYMAP        -10.0
//	XDIM          0.05
//	YDIM          0.05
//
// SKIPBYTES, SCALE and OFFSET are also recognised. BYTEORDER takes the next
// byte after skipping spaces; LAYOUT takes the rest of its line. Any other
// keyword is an error. NROWS, NCOLS, NBANDS and NBITS are required.
//
// # Payload
//
// After SKIPBYTES bytes of padding, samples are stored row by row; within a
// row band by band; within a band column by column. Every sample is followed
// by BANDGAPBYTES bytes of padding. Samples are signed 8-bit or 16-bit
// integers. 16-bit samples are read little-endian unless WithByteOrder is
// given, in which case BYTEORDER decides.
//
// # Usage
//
//	r, err := bil.Open("data/elevation")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rows, cols, bands := r.Dims()
//	for row := 0; row < rows; row++ {
//	    for col := 0; col < cols; col++ {
//	        v, ok := r.Value(row, col, 0)
//	        ...
//	    }
//	}
//
// Failures wrap one of ErrFileNotFound, ErrMalformedHeader, ErrMissingField,
// ErrUnsupportedSampleWidth or ErrTruncatedData and can be tested with
// errors.Is. No partial raster is ever returned.
package bil
