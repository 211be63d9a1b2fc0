package bil

import "strconv"

// Field identifies a recognized header keyword.
type Field uint8

// Header fields. The zero Field is not a valid keyword.
const (
	FieldByteOrder Field = iota + 1
	FieldLayout
	FieldRows
	FieldColumns
	FieldBands
	FieldBits
	FieldBandRowBytes
	FieldTotalRowBytes
	FieldSkipBytes
	FieldBandGapBytes
	FieldNoData
	FieldULXMap
	FieldULYMap
	FieldXDim
	FieldYDim
	FieldScale
	FieldOffset

	numFields = iota
)

// valueKind selects the value grammar of a field.
type valueKind uint8

const (
	kindInt valueKind = iota
	kindFloat
	kindChar
	kindLine
)

var fieldNames = [numFields + 1]string{
	FieldByteOrder:     "BYTEORDER",
	FieldLayout:        "LAYOUT",
	FieldRows:          "NROWS",
	FieldColumns:       "NCOLS",
	FieldBands:         "NBANDS",
	FieldBits:          "NBITS",
	FieldBandRowBytes:  "BANDROWBYTES",
	FieldTotalRowBytes: "TOTALROWBYTES",
	FieldSkipBytes:     "SKIPBYTES",
	FieldBandGapBytes:  "BANDGAPBYTES",
	FieldNoData:        "NODATA",
	FieldULXMap:        "ULXMAP",
	FieldULYMap:        "ULYMAP",
	FieldXDim:          "XDIM",
	FieldYDim:          "YDIM",
	FieldScale:         "SCALE",
	FieldOffset:        "OFFSET",
}

// Classify maps a header keyword to its Field. Matching is exact and
// case-sensitive; any other string reports false.
func Classify(name string) (Field, bool) {
	for f := Field(1); f <= numFields; f++ {
		if fieldNames[f] == name {
			return f, true
		}
	}
	return 0, false
}

// Fields returns every recognized field in declaration order.
func Fields() []Field {
	fields := make([]Field, 0, numFields)
	for f := Field(1); f <= numFields; f++ {
		fields = append(fields, f)
	}
	return fields
}

// String returns the header keyword for f.
func (f Field) String() string {
	if f == 0 || f > numFields {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

func (f Field) kind() valueKind {
	switch f {
	case FieldByteOrder:
		return kindChar
	case FieldLayout:
		return kindLine
	case FieldNoData, FieldULXMap, FieldULYMap, FieldXDim, FieldYDim, FieldScale, FieldOffset:
		return kindFloat
	default:
		return kindInt
	}
}
