// Package omebin reads the auxiliary optical matrix files CASTEP writes
// alongside spectral runs: ome_bin, cst_ome and dome_bin. Unlike the main
// castep_bin format these are plain sequences of fixed-shape records with
// no headers and no dimension inference; the caller supplies the band,
// k-point and spin counts.
package omebin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/zhubonan/castepxbin/castepbin"
	"github.com/zhubonan/castepxbin/internal/fortran"
)

// OpticalMatrix is the decoded contents of an ome_bin or cst_ome file.
// Elements is shaped (3, nbands, nbands, nkpts, nspins) in column-major
// order, so within each per-(kpt,spin) record the cartesian direction
// index varies fastest. Tools that read the same files into row-major
// arrays (numpy readers, typically) see the (3, nb, nb) block transposed
// relative to this layout. Version and Header are zero-valued for cst_ome
// files, which carry no envelope.
type OpticalMatrix struct {
	Version  float64
	Header   string
	Elements *castepbin.ComplexArray
}

// ReadOmeBin reads an ome_bin file: a version record, an 80-byte header
// record, then one (3, nbands, nbands) complex record per k-point and spin,
// k-points outermost.
func ReadOmeBin(r io.ReadSeeker, nbands, nkpts, nspins int, order binary.ByteOrder) (*OpticalMatrix, error) {
	fr := fortran.NewReader(r, order)
	if order == nil {
		order = binary.BigEndian
	}

	version, header, err := readEnvelope(fr, order)
	if err != nil {
		return nil, err
	}

	om := &OpticalMatrix{
		Version: version,
		Header:  header,
		Elements: &castepbin.ComplexArray{
			Shape: []int{3, nbands, nbands, nkpts, nspins},
			Data:  make([]complex128, 3*nbands*nbands*nkpts*nspins),
		},
	}
	block := 3 * nbands * nbands
	for ik := range nkpts {
		for is := range nspins {
			payload, n, err := fr.ReadRecord()
			if err != nil {
				return nil, fmt.Errorf("optical matrix at kpoint %d spin %d: %w", ik, is, err)
			}
			if n != block*16 {
				return nil, fmt.Errorf("optical matrix record at kpoint %d spin %d has %d bytes, expected %d",
					ik, is, n, block*16)
			}
			base := block * (ik + nkpts*is)
			copy(om.Elements.Data[base:], decodeComplexes(payload, order, block))
		}
	}
	return om, nil
}

// ReadCstOme reads a cst_ome file: no envelope, and one single-element
// complex record per matrix entry, looped over k-points, spins, the three
// cartesian directions and both band indices. Data remaining after the
// expected element count indicates mismatched dimensions and is an error.
func ReadCstOme(r io.ReadSeeker, nbands, nkpts, nspins int, order binary.ByteOrder) (*OpticalMatrix, error) {
	fr := fortran.NewReader(r, order)
	if order == nil {
		order = binary.BigEndian
	}

	om := &OpticalMatrix{
		Elements: &castepbin.ComplexArray{
			Shape: []int{3, nbands, nbands, nkpts, nspins},
			Data:  make([]complex128, 3*nbands*nbands*nkpts*nspins),
		},
	}
	for ik := range nkpts {
		for is := range nspins {
			for idir := range 3 {
				for ib1 := range nbands {
					for ib2 := range nbands {
						payload, n, err := fr.ReadRecord()
						if err != nil {
							return nil, fmt.Errorf("cst_ome element (%d,%d,%d,%d,%d): %w",
								ik, is, idir, ib1, ib2, err)
						}
						if n != 16 {
							return nil, fmt.Errorf("cst_ome element record has %d bytes, expected 16", n)
						}
						om.Elements.Set(decodeComplexes(payload, order, 1)[0], idir, ib1, ib2, ik, is)
					}
				}
			}
		}
	}
	var trailer [1]byte
	if n, _ := r.Read(trailer[:]); n != 0 {
		return nil, fmt.Errorf("cst_ome carries data beyond the declared dimensions")
	}
	return om, nil
}

// DipoleMatrix is the decoded contents of a dome_bin file. Elements is
// shaped (3, nbands, nkpts, nspins).
type DipoleMatrix struct {
	Version  float64
	Header   string
	Elements *castepbin.FloatArray
}

// ReadDomeBin reads a dome_bin file: the same envelope as ome_bin followed
// by one (3, nbands) float record per k-point and spin.
func ReadDomeBin(r io.ReadSeeker, nbands, nkpts, nspins int, order binary.ByteOrder) (*DipoleMatrix, error) {
	fr := fortran.NewReader(r, order)
	if order == nil {
		order = binary.BigEndian
	}

	version, header, err := readEnvelope(fr, order)
	if err != nil {
		return nil, err
	}

	dm := &DipoleMatrix{
		Version: version,
		Header:  header,
		Elements: &castepbin.FloatArray{
			Shape: []int{3, nbands, nkpts, nspins},
			Data:  make([]float64, 3*nbands*nkpts*nspins),
		},
	}
	block := 3 * nbands
	for ik := range nkpts {
		for is := range nspins {
			payload, n, err := fr.ReadRecord()
			if err != nil {
				return nil, fmt.Errorf("dipole matrix at kpoint %d spin %d: %w", ik, is, err)
			}
			if n != block*8 {
				return nil, fmt.Errorf("dipole matrix record at kpoint %d spin %d has %d bytes, expected %d",
					ik, is, n, block*8)
			}
			base := block * (ik + nkpts*is)
			for i := range block {
				dm.Elements.Data[base+i] = math.Float64frombits(order.Uint64(payload[i*8:]))
			}
		}
	}
	return dm, nil
}

// ReadOmeBinFile is a convenience wrapper over ReadOmeBin.
func ReadOmeBinFile(path string, nbands, nkpts, nspins int, order binary.ByteOrder) (*OpticalMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOmeBin(f, nbands, nkpts, nspins, order)
}

// readEnvelope reads the version and 80-byte header records shared by
// ome_bin and dome_bin.
func readEnvelope(fr *fortran.Reader, order binary.ByteOrder) (float64, string, error) {
	payload, n, err := fr.ReadRecord()
	if err != nil {
		return 0, "", fmt.Errorf("version record: %w", err)
	}
	if n != 8 {
		return 0, "", fmt.Errorf("version record has %d bytes, expected 8", n)
	}
	version := math.Float64frombits(order.Uint64(payload))

	payload, n, err = fr.ReadRecord()
	if err != nil {
		return 0, "", fmt.Errorf("header record: %w", err)
	}
	if n != 80 {
		return 0, "", fmt.Errorf("header record has %d bytes, expected 80", n)
	}
	header := string(payload)
	return version, trimRight(header), nil
}

func trimRight(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == 0) {
		s = s[:len(s)-1]
	}
	return s
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
