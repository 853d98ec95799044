package castepbin

import (
	"encoding/binary"
	"math"
)

// The multi-dimensional arrays below store their elements flat in Fortran
// (column-major) order: the first index varies fastest. That matches the
// element order inside the file records, so decoding is a straight copy and
// reshaping only ever rewrites Shape.

// IntArray holds 4-byte integer data.
type IntArray struct {
	Shape []int
	Data  []int32
}

// FloatArray holds 8-byte float data.
type FloatArray struct {
	Shape []int
	Data  []float64
}

// ComplexArray holds 16-byte complex data (two 8-byte floats).
type ComplexArray struct {
	Shape []int
	Data  []complex128
}

// flatIndex converts a multi-index to a column-major flat offset.
func flatIndex(shape, idx []int) int {
	off := 0
	stride := 1
	for d, n := range shape {
		off += idx[d] * stride
		stride *= n
	}
	return off
}

func (a *IntArray) At(idx ...int) int32 { return a.Data[flatIndex(a.Shape, idx)] }

func (a *FloatArray) At(idx ...int) float64 { return a.Data[flatIndex(a.Shape, idx)] }

func (a *ComplexArray) At(idx ...int) complex128 { return a.Data[flatIndex(a.Shape, idx)] }

func (a *IntArray) Set(v int32, idx ...int) { a.Data[flatIndex(a.Shape, idx)] = v }

func (a *FloatArray) Set(v float64, idx ...int) { a.Data[flatIndex(a.Shape, idx)] = v }

func (a *ComplexArray) Set(v complex128, idx ...int) { a.Data[flatIndex(a.Shape, idx)] = v }

// Len returns the total element count.
func (a *IntArray) Len() int { return len(a.Data) }

func (a *FloatArray) Len() int { return len(a.Data) }

func (a *ComplexArray) Len() int { return len(a.Data) }

func newIntArray(shape ...int) *IntArray {
	return &IntArray{Shape: shape, Data: make([]int32, product(shape))}
}

func newFloatArray(shape ...int) *FloatArray {
	return &FloatArray{Shape: shape, Data: make([]float64, product(shape))}
}

func newComplexArray(shape ...int) *ComplexArray {
	return &ComplexArray{Shape: shape, Data: make([]complex128, product(shape))}
}

func product(shape []int) int {
	n := 1
	for _, v := range shape {
		n *= v
	}
	return n
}

// Raw element decoders. count elements are taken from the front of b; the
// record may carry more bytes than requested (composite records do).
// Callers must have validated len(b) >= count times the element width.

func decodeInts(b []byte, order binary.ByteOrder, count int) []int32 {
	out := make([]int32, count)
	for i := range out {
		out[i] = int32(order.Uint32(b[i*4:]))
	}
	return out
}

func decodeFloats(b []byte, order binary.ByteOrder, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(order.Uint64(b[i*8:]))
	}
	return out
}

func decodeComplexes(b []byte, order binary.ByteOrder, count int) []complex128 {
	out := make([]complex128, count)
	for i := range out {
		re := math.Float64frombits(order.Uint64(b[i*16:]))
		im := math.Float64frombits(order.Uint64(b[i*16+8:]))
		out[i] = complex(re, im)
	}
	return out
}
