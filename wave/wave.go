// Package wave assembles the plane-wave wavefunction decoded from a
// checkpoint file and maps it onto a dense reciprocal-space grid ready for
// an inverse Fourier transform.
package wave

import (
	"fmt"

	"github.com/zhubonan/castepxbin/castepbin"
)

// WaveFunction couples the plane-wave coefficient block of a checkpoint
// file with the lattice and eigenvalue context it is meaningless without.
type WaveFunction struct {
	// Coeffs is shaped (nwaves_max, nspinor, nbands, nkpts, nspins).
	Coeffs *castepbin.ComplexArray
	// GridCoords is shaped (3, nwaves_max, nkpts); signed reciprocal
	// lattice index triples.
	GridCoords *castepbin.IntArray
	NWavesAtKP []int
	// Kpts is shaped (3, nkpts), in the order the wavefunction block was
	// written, which may differ from the cell section's k-point list.
	Kpts *castepbin.FloatArray
	Mesh [3]int

	// CASTEP stores the lattice matrices with row vectors, in atomic units.
	RealLattice  *castepbin.FloatArray
	RecipLattice *castepbin.FloatArray
	Eigenvalues  *castepbin.FloatArray
	Occupancies  *castepbin.FloatArray
	FermiEnergy  float64
}

// FromNamespace builds a WaveFunction from a decoded checkpoint namespace.
// It fails with ErrMissingField when the wavefunction block or its lattice
// and eigenvalue context is absent (standard castep_bin files carry none).
func FromNamespace(ns castepbin.Namespace) (*WaveFunction, error) {
	wd, ok := ns["wavefunction"].(*castepbin.WavefunctionData)
	if !ok {
		return nil, fmt.Errorf("%w: wavefunction", castepbin.ErrMissingField)
	}
	realLat, err := castepbin.MustGetFloatArray(ns, "real_lattice")
	if err != nil {
		return nil, err
	}
	recipLat, err := castepbin.MustGetFloatArray(ns, "recip_lattice")
	if err != nil {
		return nil, err
	}
	eig, err := castepbin.MustGetFloatArray(ns, "eigenvalues")
	if err != nil {
		return nil, err
	}
	occ, err := castepbin.MustGetFloatArray(ns, "occupancies")
	if err != nil {
		return nil, err
	}
	fermi, err := castepbin.MustGetFloat(ns, "fermi_energy")
	if err != nil {
		return nil, err
	}

	w := &WaveFunction{
		Coeffs:       wd.Coeffs,
		GridCoords:   wd.GridCoords,
		NWavesAtKP:   wd.NWavesAtKP,
		Kpts:         wd.Kpts,
		Mesh:         [3]int{wd.NGX, wd.NGY, wd.NGZ},
		RealLattice:  realLat,
		RecipLattice: recipLat,
		Eigenvalues:  eig,
		Occupancies:  occ,
		FermiEnergy:  fermi,
	}

	// Orbital files from bandstructure or spectral runs carry no
	// occupancies; fill in everything below the Fermi level.
	sum := 0.0
	for _, v := range w.Occupancies.Data {
		sum += v
	}
	if sum == 0 {
		for i, e := range w.Eigenvalues.Data {
			if e < w.FermiEnergy {
				w.Occupancies.Data[i] = 1.0
			}
		}
	}
	return w, nil
}

// NSpins returns the spin count of the coefficient tensor.
func (w *WaveFunction) NSpins() int { return w.Coeffs.Shape[4] }

// NKpts returns the k-point count of the coefficient tensor.
func (w *WaveFunction) NKpts() int { return w.Coeffs.Shape[3] }

// NBands returns the band capacity of the coefficient tensor.
func (w *WaveFunction) NBands() int { return w.Coeffs.Shape[2] }

// NSpinors returns the spinor component count.
func (w *WaveFunction) NSpinors() int { return w.Coeffs.Shape[1] }

// PlaneWaveCoeffs returns the populated coefficients of one state.
func (w *WaveFunction) PlaneWaveCoeffs(ispin, ik, ib, ispinor int) []complex128 {
	nw := w.NWavesAtKP[ik]
	out := make([]complex128, nw)
	for ipw := range nw {
		out[ipw] = w.Coeffs.At(ipw, ispinor, ib, ik, ispin)
	}
	return out
}

// GVectors returns the reciprocal lattice index triples of the plane waves
// at one k-point as a (3, nwaves) array.
func (w *WaveFunction) GVectors(ik int) *castepbin.IntArray {
	nw := w.NWavesAtKP[ik]
	out := &castepbin.IntArray{Shape: []int{3, nw}, Data: make([]int32, 3*nw)}
	for ipw := range nw {
		for c := range 3 {
			out.Set(w.GridCoords.At(c, ipw, ik), c, ipw)
		}
	}
	return out
}

// GridIndices returns the wrapped mesh indices of the plane waves at one
// k-point.
func (w *WaveFunction) GridIndices(ik int) *castepbin.IntArray {
	return CoordsToIndices(w.GVectors(ik), w.Mesh[0], w.Mesh[1], w.Mesh[2])
}

// KpointsCart returns the cartesian coordinates of the k-points, in the
// atomic units CASTEP uses internally: recip_lattice^T applied to each
// fractional k-point.
func (w *WaveFunction) KpointsCart() *castepbin.FloatArray {
	nk := w.Kpts.Shape[1]
	out := &castepbin.FloatArray{Shape: []int{3, nk}, Data: make([]float64, 3*nk)}
	for ik := range nk {
		for i := range 3 {
			v := 0.0
			for j := range 3 {
				// Row-vector convention: component i of the cartesian
				// k-point sums lattice rows over the fractional coords.
				v += w.RecipLattice.At(j, i) * w.Kpts.At(j, ik)
			}
			out.Set(v, i, ik)
		}
	}
	return out
}

// wrapIndex maps a signed reciprocal lattice index into [0, n) following
// the usual FFT grid convention: negative indices count down from the top.
func wrapIndex(coord int32, n int) int32 {
	m := coord % int32(n)
	if m < 0 {
		m += int32(n)
	}
	return m
}

// CoordsToIndices wraps a (3, n) array of signed reciprocal lattice
// triples onto the given FFT mesh. The input is not modified.
func CoordsToIndices(coords *castepbin.IntArray, ngx, ngy, ngz int) *castepbin.IntArray {
	mesh := [3]int{ngx, ngy, ngz}
	out := &castepbin.IntArray{
		Shape: append([]int(nil), coords.Shape...),
		Data:  make([]int32, len(coords.Data)),
	}
	for i, v := range coords.Data {
		out.Data[i] = wrapIndex(v, mesh[i%3])
	}
	return out
}

// ReciprocalGrid scatters the sparse plane-wave coefficients onto a dense
// (ngx, ngy, ngz, nspinor, nband, nkpt, nspin) complex grid. Slots beyond a
// k-point's actual wave count are never visited, and untouched cells stay
// zero.
func (w *WaveFunction) ReciprocalGrid() *castepbin.ComplexArray {
	return ReciprocalGrid(w.Coeffs, w.NWavesAtKP, w.GridCoords, w.Mesh[0], w.Mesh[1], w.Mesh[2])
}

// ReciprocalGrid is the transformation behind WaveFunction.ReciprocalGrid,
// usable on raw decoded tensors.
func ReciprocalGrid(coeffs *castepbin.ComplexArray, nwavesAtKP []int, gridCoords *castepbin.IntArray, ngx, ngy, ngz int) *castepbin.ComplexArray {
	nspinor := coeffs.Shape[1]
	nbands := coeffs.Shape[2]
	nkpts := coeffs.Shape[3]
	nspins := coeffs.Shape[4]

	grid := &castepbin.ComplexArray{
		Shape: []int{ngx, ngy, ngz, nspinor, nbands, nkpts, nspins},
		Data:  make([]complex128, ngx*ngy*ngz*nspinor*nbands*nkpts*nspins),
	}
	for is := range nspins {
		for ik := range nkpts {
			for ib := range nbands {
				for ispinor := range nspinor {
					for ipw := 0; ipw < nwavesAtKP[ik]; ipw++ {
						ix := wrapIndex(gridCoords.At(0, ipw, ik), ngx)
						iy := wrapIndex(gridCoords.At(1, ipw, ik), ngy)
						iz := wrapIndex(gridCoords.At(2, ipw, ik), ngz)
						grid.Set(coeffs.At(ipw, ispinor, ib, ik, is),
							int(ix), int(iy), int(iz), ispinor, ib, ik, is)
					}
				}
			}
		}
	}
	return grid
}

// FromFile decodes a checkpoint file and assembles its wavefunction.
func FromFile(path string) (*WaveFunction, error) {
	ns, err := castepbin.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromNamespace(ns)
}
