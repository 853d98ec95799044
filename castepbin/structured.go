package castepbin

import (
	"encoding/binary"
	"fmt"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

// protocol names a bespoke multi-record decoding protocol.
type protocol uint8

const (
	protoNone protocol = iota
	protoEigen
	protoDensity
	protoWave
)

// decodeEigenBlock reads the per-k-point eigenvalue and occupancy records.
// Layout: for every k-point, then every spin, a 3-value k-point coordinate
// record (rewritten identically for each spin; the last read wins), an
// occupancy record and an eigenvalue record of nbands values each.
//
// The k-point order here is authoritative for the eigenvalues just read: a
// distributed run may emit k-points in a different order than the list in
// the cell section, hence the separate kpoints_of_eigenvalues key.
func decodeEigenBlock(r *fortran.Reader, order binary.ByteOrder, ns Namespace) error {
	nbands, err := MustGetInt(ns, "nbands")
	if err != nil {
		return err
	}
	nspins, err := MustGetInt(ns, "nspins")
	if err != nil {
		return err
	}
	nkpts, err := MustGetInt(ns, "nkpts")
	if err != nil {
		return err
	}

	kpts := newFloatArray(3, nkpts)
	occ := newFloatArray(nbands, nkpts, nspins)
	eig := newFloatArray(nbands, nkpts, nspins)

	for ik := range nkpts {
		for is := range nspins {
			payload, _, err := r.ReadRecord()
			if err != nil {
				return fmt.Errorf("kpoint %d coordinates: %w", ik, err)
			}
			if len(payload) < 24 {
				return fmt.Errorf("kpoint %d coordinates record has %d bytes, expected 24", ik, len(payload))
			}
			copy(kpts.Data[3*ik:], decodeFloats(payload, order, 3))

			base := nbands * (ik + nkpts*is)
			payload, _, err = r.ReadRecord()
			if err != nil {
				return fmt.Errorf("occupancies at kpoint %d spin %d: %w", ik, is, err)
			}
			if len(payload) < nbands*8 {
				return fmt.Errorf("occupancies record at kpoint %d spin %d has %d bytes, expected %d",
					ik, is, len(payload), nbands*8)
			}
			copy(occ.Data[base:], decodeFloats(payload, order, nbands))

			payload, _, err = r.ReadRecord()
			if err != nil {
				return fmt.Errorf("eigenvalues at kpoint %d spin %d: %w", ik, is, err)
			}
			if len(payload) < nbands*8 {
				return fmt.Errorf("eigenvalues record at kpoint %d spin %d has %d bytes, expected %d",
					ik, is, len(payload), nbands*8)
			}
			copy(eig.Data[base:], decodeFloats(payload, order, nbands))
		}
	}

	ns["occupancies"] = occ
	ns["eigenvalues"] = eig
	ns["kpoints_of_eigenvalues"] = kpts
	return nil
}

// decodeDensityBlock reads the fine-grid charge density. The grid is
// written as ngx*ngy z-columns in no guaranteed order; each record carries
// its own 1-based (x, y) indices followed by ngz complex values, plus a
// second column for collinear spin or a 3-component column for
// non-collinear (vector) spin.
func decodeDensityBlock(r *fortran.Reader, order binary.ByteOrder, ns Namespace) error {
	ngx, err := MustGetInt(ns, "ngx_fine")
	if err != nil {
		return err
	}
	ngy, err := MustGetInt(ns, "ngy_fine")
	if err != nil {
		return err
	}
	ngz, err := MustGetInt(ns, "ngz_fine")
	if err != nil {
		return err
	}
	nspins, err := MustGetInt(ns, "nspins")
	if err != nil {
		return err
	}
	// spin_treatment comes from the electronic section, which a header
	// filter may exclude. Absence deliberately selects the scalar
	// (collinear) layout; only an explicit VECTOR value switches to the
	// three-component non-collinear columns.
	treatment, _ := GetString(ns, "spin_treatment")
	ncm := treatment == "VECTOR"

	charge := newComplexArray(ngx, ngy, ngz)
	var spin *ComplexArray
	switch {
	case ncm:
		spin = newComplexArray(ngx, ngy, ngz, 3)
	case nspins == 2:
		spin = newComplexArray(ngx, ngy, ngz)
	}

	for i := 0; i < ngx*ngy; i++ {
		payload, _, err := r.ReadRecord()
		if err != nil {
			return fmt.Errorf("charge density column %d: %w", i, err)
		}
		if err := scatterDensityColumn(payload, order, charge, spin, ncm); err != nil {
			return err
		}
	}

	ns["charge_density"] = charge
	if spin != nil {
		ns["spin_density"] = spin
	}
	return nil
}

// scatterDensityColumn writes one density record into the dense arrays at
// the column position it names.
func scatterDensityColumn(payload []byte, order binary.ByteOrder, charge, spin *ComplexArray, ncm bool) error {
	ngx, ngy, ngz := charge.Shape[0], charge.Shape[1], charge.Shape[2]

	want := 8 + 16*ngz
	if spin != nil {
		if ncm {
			want += 16 * ngz * 3
		} else {
			want += 16 * ngz
		}
	}
	if len(payload) < want {
		return fmt.Errorf("charge density record has %d bytes, expected %d", len(payload), want)
	}

	xy := decodeInts(payload, order, 2)
	ix, iy := int(xy[0])-1, int(xy[1])-1
	if ix < 0 || ix >= ngx || iy < 0 || iy >= ngy {
		return fmt.Errorf("charge density column (%d,%d) outside %dx%d grid", xy[0], xy[1], ngx, ngy)
	}

	zcol := decodeComplexes(payload[8:], order, ngz)
	for iz, v := range zcol {
		charge.Set(v, ix, iy, iz)
	}
	if spin == nil {
		return nil
	}
	if ncm {
		// Vector spin: ngz*(3) values, components fastest.
		scol := decodeComplexes(payload[8+16*ngz:], order, ngz*3)
		for iz := range ngz {
			for ic := range 3 {
				spin.Set(scol[iz*3+ic], ix, iy, iz, ic)
			}
		}
		return nil
	}
	scol := decodeComplexes(payload[8+16*ngz:], order, ngz)
	for iz, v := range scol {
		spin.Set(v, ix, iy, iz)
	}
	return nil
}

// WavefunctionData bundles the plane-wave representation of the ground
// state wavefunction as stored in checkpoint files. Only the first
// NWavesAtKP[ik] plane-wave slots are populated for k-point ik; the rest of
// the first axis is zero padding up to the global maximum.
type WavefunctionData struct {
	// Coeffs is shaped (nwaves_max, nspinor, nbands_max, nkpts, nspins).
	Coeffs *ComplexArray
	// GridCoords is shaped (3, nwaves_max, nkpts) and holds signed
	// reciprocal-lattice index triples.
	GridCoords *IntArray
	NWavesAtKP []int
	// Kpts is shaped (3, nkpts).
	Kpts          *FloatArray
	NGX, NGY, NGZ int
}

// decodeWaveBlock reads the plane-wave coefficient block of a checkpoint
// file. A leading record gives the mesh extents, the plane-wave slot
// capacity, the spinor component count and the band capacity; then for
// every spin and k-point come the k-point coordinates with the actual wave
// count, three integer records of grid coordinates, and one coefficient
// record per (band, spinor) pair.
func decodeWaveBlock(r *fortran.Reader, order binary.ByteOrder, ns Namespace) error {
	nspins, err := MustGetInt(ns, "nspins")
	if err != nil {
		return err
	}
	nkpts, err := MustGetInt(ns, "nkpts")
	if err != nil {
		return err
	}

	payload, _, err := r.ReadRecord()
	if err != nil {
		return fmt.Errorf("wavefunction sizes: %w", err)
	}
	if len(payload) < 24 {
		return fmt.Errorf("wavefunction size record has %d bytes, expected 24", len(payload))
	}
	sizes := decodeInts(payload, order, 6)
	ngx, ngy, ngz := int(sizes[0]), int(sizes[1]), int(sizes[2])
	nwmax, nspinor, nbmax := int(sizes[3]), int(sizes[4]), int(sizes[5])
	for _, n := range sizes {
		if n <= 0 {
			return fmt.Errorf("wavefunction size record carries non-positive extent in %v", sizes)
		}
	}

	coeffs := newComplexArray(nwmax, nspinor, nbmax, nkpts, nspins)
	coords := newIntArray(3, nwmax, nkpts)
	counts := make([]int, nkpts)
	kpts := newFloatArray(3, nkpts)

	for is := range nspins {
		for ik := range nkpts {
			payload, _, err := r.ReadRecord()
			if err != nil {
				return fmt.Errorf("wavefunction kpoint %d spin %d: %w", ik, is, err)
			}
			if len(payload) < 28 {
				return fmt.Errorf("wavefunction kpoint record has %d bytes, expected 28", len(payload))
			}
			copy(kpts.Data[3*ik:], decodeFloats(payload, order, 3))
			nwaves := int(decodeInts(payload[24:], order, 1)[0])
			if nwaves < 0 || nwaves > nwmax {
				return fmt.Errorf("wavefunction kpoint %d claims %d plane waves, capacity %d", ik, nwaves, nwmax)
			}
			counts[ik] = nwaves

			for c := range 3 {
				payload, _, err := r.ReadRecord()
				if err != nil {
					return fmt.Errorf("wavefunction grid coords at kpoint %d: %w", ik, err)
				}
				if len(payload) < nwaves*4 {
					return fmt.Errorf("wavefunction grid coords record at kpoint %d has %d bytes, expected %d",
						ik, len(payload), nwaves*4)
				}
				axis := decodeInts(payload, order, nwaves)
				for ipw, v := range axis {
					coords.Data[c+3*(ipw+nwmax*ik)] = v
				}
			}

			for ib := range nbmax {
				for ispinor := range nspinor {
					payload, _, err := r.ReadRecord()
					if err != nil {
						return fmt.Errorf("wavefunction coefficients at kpoint %d band %d: %w", ik, ib, err)
					}
					if len(payload) < nwaves*16 {
						return fmt.Errorf("wavefunction coefficients record at kpoint %d band %d has %d bytes, expected %d",
							ik, ib, len(payload), nwaves*16)
					}
					base := nwmax * (ispinor + nspinor*(ib+nbmax*(ik+nkpts*is)))
					copy(coeffs.Data[base:base+nwaves], decodeComplexes(payload, order, nwaves))
				}
			}
		}
	}

	ns["wavefunction"] = &WavefunctionData{
		Coeffs:     coeffs,
		GridCoords: coords,
		NWavesAtKP: counts,
		Kpts:       kpts,
		NGX:        ngx,
		NGY:        ngy,
		NGZ:        ngz,
	}
	return nil
}
