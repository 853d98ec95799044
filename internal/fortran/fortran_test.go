package fortran_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

func TestRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		order binary.ByteOrder
	}{
		{name: "big endian", order: binary.BigEndian},
		{name: "little endian", order: binary.LittleEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := fortran.NewWriter(&buf, tt.order)
			require.NoError(t, w.WriteRecord([]byte("CASTEP_BIN")))
			require.NoError(t, w.WriteRecord([]byte{1, 2, 3, 4}))

			r := fortran.NewReader(bytes.NewReader(buf.Bytes()), tt.order)
			payload, n, err := r.ReadRecord()
			require.NoError(t, err)
			assert.Equal(t, 10, n)
			assert.Equal(t, []byte("CASTEP_BIN"), payload)

			payload, n, err = r.ReadRecord()
			require.NoError(t, err)
			assert.Equal(t, 4, n)
			assert.Equal(t, []byte{1, 2, 3, 4}, payload)
		})
	}
}

func TestRecordMarkerMismatch(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2}) // leading marker: 2 bytes
	buf.Write([]byte{7, 7})
	buf.Write([]byte{0, 0, 0, 3}) // trailing marker disagrees

	r := fortran.NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	_, _, err := r.ReadRecord()
	require.ErrorIs(t, err, fortran.ErrMarkerMismatch)
}

func TestSkipRecord(t *testing.T) {
	big := make([]byte, 2048)
	for i := range big {
		big[i] = byte(i)
	}

	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, w.WriteRecord([]byte("HEADER")))
	require.NoError(t, w.WriteRecord(big))
	require.NoError(t, w.WriteRecord([]byte("NEXT")))

	r := fortran.NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)

	// Small records are read even in skip mode.
	payload, n, err := r.SkipRecord()
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte("HEADER"), payload)

	// Large ones are seeked over without materializing.
	payload, n, err = r.SkipRecord()
	require.NoError(t, err)
	assert.Equal(t, 2048, n)
	assert.Nil(t, payload)

	// The stream stays aligned on the following record.
	payload, _, err = r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte("NEXT"), payload)
}

func TestOffsetAndSeek(t *testing.T) {
	var buf bytes.Buffer
	w := fortran.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, w.WriteRecord([]byte("AB")))
	require.NoError(t, w.WriteRecord([]byte("CD")))

	r := fortran.NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	_, _, err := r.ReadRecord()
	require.NoError(t, err)

	off, err := r.Offset()
	require.NoError(t, err)
	assert.Equal(t, int64(10), off)

	require.NoError(t, r.Seek(0))
	payload, _, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte("AB"), payload)
}
