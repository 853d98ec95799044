package castepbin

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

// fileBuilder assembles synthetic castep_bin streams record by record.
type fileBuilder struct {
	t   *testing.T
	buf bytes.Buffer
	w   *fortran.Writer
}

func newFileBuilder(t *testing.T) *fileBuilder {
	t.Helper()
	b := &fileBuilder{t: t}
	b.w = fortran.NewWriter(&b.buf, binary.BigEndian)
	return b
}

// title writes the standard-layout sentinel record.
func (b *fileBuilder) title() *fileBuilder {
	return b.record([]byte(sentinelTitle))
}

func (b *fileBuilder) record(payload []byte) *fileBuilder {
	b.t.Helper()
	require.NoError(b.t, b.w.WriteRecord(payload))
	return b
}

func (b *fileBuilder) header(name string) *fileBuilder {
	return b.record([]byte(name))
}

func (b *fileBuilder) ints(vals ...int32) *fileBuilder {
	return b.record(beInts(vals...))
}

func (b *fileBuilder) floats(vals ...float64) *fileBuilder {
	return b.record(beFloats(vals...))
}

func (b *fileBuilder) complexes(vals ...complex128) *fileBuilder {
	return b.record(beComplexes(vals...))
}

func (b *fileBuilder) end() *fileBuilder {
	return b.header(endHeader)
}

func (b *fileBuilder) reader() *bytes.Reader {
	return bytes.NewReader(b.buf.Bytes())
}

func (b *fileBuilder) fortranReader() *fortran.Reader {
	return fortran.NewReader(b.reader(), binary.BigEndian)
}

// newLittleEndianBuilder is the little-endian twin of newFileBuilder.
func newLittleEndianBuilder(t *testing.T) *fileBuilder {
	t.Helper()
	b := &fileBuilder{t: t}
	b.w = fortran.NewWriter(&b.buf, binary.LittleEndian)
	return b
}

func leInts(order binary.ByteOrder, vals ...int32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		order.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func beInts(vals ...int32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func beFloats(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func beComplexes(vals ...complex128) []byte {
	out := make([]byte, 16*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[i*16:], math.Float64bits(real(v)))
		binary.BigEndian.PutUint64(out[i*16+8:], math.Float64bits(imag(v)))
	}
	return out
}
