package bil

import "strconv"

// SampleKind is the representation shared by all samples of a raster.
type SampleKind uint8

const (
	KindInvalid SampleKind = iota
	KindInt8
	KindInt16
)

// String returns the Go type name of the kind.
func (k SampleKind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	default:
		return "invalid"
	}
}

// Bits returns the width of the kind in bits.
func (k SampleKind) Bits() int {
	switch k {
	case KindInt8:
		return 8
	case KindInt16:
		return 16
	}
	return 0
}

// kindForBits maps NBITS to a sample kind.
func kindForBits(bits int) SampleKind {
	switch bits {
	case 8:
		return KindInt8
	case 16:
		return KindInt16
	}
	return KindInvalid
}

// Sample is one decoded cell value: either a signed 8-bit or a 16-bit
// integer. The zero Sample is KindInvalid.
type Sample struct {
	kind SampleKind
	v    int16
}

// Int8Sample returns an 8-bit sample.
func Int8Sample(v int8) Sample {
	return Sample{kind: KindInt8, v: int16(v)}
}

// Int16Sample returns a 16-bit sample.
func Int16Sample(v int16) Sample {
	return Sample{kind: KindInt16, v: v}
}

// Kind returns the representation of s.
func (s Sample) Kind() SampleKind {
	return s.kind
}

// Int8 returns the value of an 8-bit sample.
func (s Sample) Int8() (int8, bool) {
	if s.kind != KindInt8 {
		return 0, false
	}
	return int8(s.v), true
}

// Int16 returns the value of a 16-bit sample.
func (s Sample) Int16() (int16, bool) {
	if s.kind != KindInt16 {
		return 0, false
	}
	return s.v, true
}

// Int returns the value of either kind widened to int.
func (s Sample) Int() int {
	return int(s.v)
}

// Float64 returns the raw value as float64, without scale or offset.
func (s Sample) Float64() float64 {
	return float64(s.v)
}

func (s Sample) String() string {
	if s.kind == KindInvalid {
		return "<invalid>"
	}
	return strconv.Itoa(int(s.v))
}
