package omebin_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubonan/castepxbin/internal/fortran"
	"github.com/zhubonan/castepxbin/omebin"
)

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

func paddedHeader(text string) []byte {
	out := bytes.Repeat([]byte{' '}, 80)
	copy(out, text)
	return out
}

func TestReadOmeBin(t *testing.T) {
	const nbands, nkpts, nspins = 2, 2, 1

	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, w.WriteRecord(beFloats(1.0)))
	require.NoError(t, w.WriteRecord(paddedHeader("Optical matrix elements")))
	for ik := 0; ik < nkpts; ik++ {
		block := make([]complex128, 3*nbands*nbands)
		for i := range block {
			block[i] = complex(float64(ik), float64(i))
		}
		require.NoError(t, w.WriteRecord(beComplexes(block...)))
	}

	om, err := omebin.ReadOmeBin(bytes.NewReader(buf.Bytes()), nbands, nkpts, nspins, binary.BigEndian)
	require.NoError(t, err)

	assert.Equal(t, 1.0, om.Version)
	assert.Equal(t, "Optical matrix elements", om.Header)
	assert.Equal(t, []int{3, nbands, nbands, nkpts, nspins}, om.Elements.Shape)
	// Column-major within a record: (dir, b1, b2) with dir fastest.
	assert.Equal(t, complex(0, 1), om.Elements.At(1, 0, 0, 0, 0))
	assert.Equal(t, complex(1, 0), om.Elements.At(0, 0, 0, 1, 0))
}

func TestReadOmeBinWrongRecordSize(t *testing.T) {
	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, w.WriteRecord(beFloats(1.0)))
	require.NoError(t, w.WriteRecord(paddedHeader("x")))
	require.NoError(t, w.WriteRecord(beComplexes(1))) // far too small

	_, err := omebin.ReadOmeBin(bytes.NewReader(buf.Bytes()), 2, 1, 1, binary.BigEndian)
	require.Error(t, err)
}

func TestReadCstOme(t *testing.T) {
	const nbands, nkpts, nspins = 1, 1, 1

	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	for i := 0; i < 3*nbands*nbands*nkpts*nspins; i++ {
		require.NoError(t, w.WriteRecord(beComplexes(complex(float64(i), 0))))
	}

	om, err := omebin.ReadCstOme(bytes.NewReader(buf.Bytes()), nbands, nkpts, nspins, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 0), om.Elements.At(0, 0, 0, 0, 0))
	assert.Equal(t, complex(2, 0), om.Elements.At(2, 0, 0, 0, 0))
}

func TestReadCstOmeTrailingData(t *testing.T) {
	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	for i := 0; i < 4; i++ { // one record too many for 1 band, 1 kpt, 1 spin
		require.NoError(t, w.WriteRecord(beComplexes(1)))
	}

	_, err := omebin.ReadCstOme(bytes.NewReader(buf.Bytes()), 1, 1, 1, binary.BigEndian)
	require.Error(t, err)
}

func TestReadDomeBin(t *testing.T) {
	const nbands, nkpts, nspins = 2, 1, 2

	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, w.WriteRecord(beFloats(2.0)))
	require.NoError(t, w.WriteRecord(paddedHeader("Diagonal elements")))
	for is := 0; is < nspins; is++ {
		require.NoError(t, w.WriteRecord(beFloats(
			float64(is), 10, 20, 30, 40, 50,
		)))
	}

	dm, err := omebin.ReadDomeBin(bytes.NewReader(buf.Bytes()), nbands, nkpts, nspins, binary.BigEndian)
	require.NoError(t, err)

	assert.Equal(t, 2.0, dm.Version)
	assert.Equal(t, "Diagonal elements", dm.Header)
	assert.Equal(t, []int{3, nbands, nkpts, nspins}, dm.Elements.Shape)
	assert.Equal(t, 0.0, dm.Elements.At(0, 0, 0, 0))
	assert.Equal(t, 1.0, dm.Elements.At(0, 0, 0, 1))
	assert.Equal(t, 50.0, dm.Elements.At(2, 1, 0, 1))
}
