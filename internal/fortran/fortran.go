// Package fortran reads and writes Fortran-style unformatted sequential
// records: a 4-byte length marker, the payload, and a trailing copy of the
// same marker. The marker width is compiler-dependent in general, but ifort
// and gfortran 4.2+ settled on 4 bytes, which is all CASTEP produces.
package fortran

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMarkerMismatch reports a record whose trailing length marker does not
// equal its leading one. The stream is desynchronized at that point and no
// further reads can be trusted.
var ErrMarkerMismatch = errors.New("record marker mismatch")

const markerSize = 4

// smallRecordLimit is the payload size below which SkipRecord reads the
// payload anyway. Small records are cheap and are the only candidates for
// section headers, which the scanner needs to inspect.
const smallRecordLimit = 512

// Reader decodes records from a seekable stream. The zero byte order means
// big-endian, which is what CASTEP builds emit by default.
type Reader struct {
	r     io.ReadSeeker
	order binary.ByteOrder
}

func NewReader(r io.ReadSeeker, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.BigEndian
	}
	return &Reader{r: r, order: order}
}

// Order returns the byte order the reader decodes markers with.
func (r *Reader) Order() binary.ByteOrder { return r.order }

// Offset returns the current stream position.
func (r *Reader) Offset() (int64, error) {
	return r.r.Seek(0, io.SeekCurrent)
}

// Seek moves the stream to an absolute offset.
func (r *Reader) Seek(off int64) error {
	_, err := r.r.Seek(off, io.SeekStart)
	return err
}

func (r *Reader) readMarker() (uint32, error) {
	var buf [markerSize]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, err
	}
	return r.order.Uint32(buf[:]), nil
}

// ReadRecord reads the next record fully, returning the payload and its
// declared length.
func (r *Reader) ReadRecord() ([]byte, int, error) {
	return r.read(false)
}

// SkipRecord advances past the next record without materializing large
// payloads. Payloads smaller than smallRecordLimit are read and returned
// regardless; for larger records the payload is nil.
func (r *Reader) SkipRecord() ([]byte, int, error) {
	return r.read(true)
}

func (r *Reader) read(skip bool) ([]byte, int, error) {
	marker, err := r.readMarker()
	if err != nil {
		return nil, 0, err
	}
	var payload []byte
	if !skip || marker <= smallRecordLimit {
		payload = make([]byte, marker)
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return nil, 0, err
		}
	} else {
		if _, err := r.r.Seek(int64(marker), io.SeekCurrent); err != nil {
			return nil, 0, err
		}
	}
	end, err := r.readMarker()
	if err != nil {
		return nil, 0, err
	}
	if marker != end {
		return nil, 0, fmt.Errorf("%w: start %d, end %d", ErrMarkerMismatch, marker, end)
	}
	return payload, int(marker), nil
}

// Writer emits records in the same framing. It exists mainly so tests can
// build synthetic files.
type Writer struct {
	w     io.Writer
	order binary.ByteOrder
}

func NewWriter(w io.Writer, order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.BigEndian
	}
	return &Writer{w: w, order: order}
}

// WriteRecord writes one payload framed by its length markers.
func (w *Writer) WriteRecord(payload []byte) error {
	var buf [markerSize]byte
	w.order.PutUint32(buf[:], uint32(len(payload)))
	if _, err := w.w.Write(buf[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	_, err := w.w.Write(buf[:])
	return err
}
