package wave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubonan/castepxbin/castepbin"
	"github.com/zhubonan/castepxbin/wave"
)

// singleWaveNamespace builds the namespace for one spin, one k-point, one
// band, one spinor and a single plane wave at the given grid coordinate.
func singleWaveNamespace(coord [3]int32, coeff complex128, mesh [3]int) castepbin.Namespace {
	wd := &castepbin.WavefunctionData{
		Coeffs: &castepbin.ComplexArray{
			Shape: []int{2, 1, 1, 1, 1}, // one padding slot
			Data:  []complex128{coeff, 0},
		},
		GridCoords: &castepbin.IntArray{
			Shape: []int{3, 2, 1},
			Data:  []int32{coord[0], coord[1], coord[2], 0, 0, 0},
		},
		NWavesAtKP: []int{1},
		Kpts: &castepbin.FloatArray{
			Shape: []int{3, 1},
			Data:  []float64{0, 0, 0},
		},
		NGX: mesh[0], NGY: mesh[1], NGZ: mesh[2],
	}
	identity := &castepbin.FloatArray{
		Shape: []int{3, 3},
		Data:  []float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	return castepbin.Namespace{
		"wavefunction":  wd,
		"real_lattice":  identity,
		"recip_lattice": identity,
		"eigenvalues":   &castepbin.FloatArray{Shape: []int{1, 1, 1}, Data: []float64{-0.5}},
		"occupancies":   &castepbin.FloatArray{Shape: []int{1, 1, 1}, Data: []float64{1}},
		"fermi_energy":  0.25,
	}
}

func TestReciprocalGridWrapsNegativeIndices(t *testing.T) {
	ns := singleWaveNamespace([3]int32{-1, 0, 0}, complex(0.5, -0.5), [3]int{4, 4, 4})
	w, err := wave.FromNamespace(ns)
	require.NoError(t, err)

	grid := w.ReciprocalGrid()
	assert.Equal(t, []int{4, 4, 4, 1, 1, 1, 1}, grid.Shape)

	// (-1, 0, 0) wraps to (3, 0, 0); every other cell stays zero.
	for ix := range 4 {
		for iy := range 4 {
			for iz := range 4 {
				want := complex(0, 0)
				if ix == 3 && iy == 0 && iz == 0 {
					want = complex(0.5, -0.5)
				}
				assert.Equal(t, want, grid.At(ix, iy, iz, 0, 0, 0, 0))
			}
		}
	}
}

func TestReciprocalGridSkipsPaddingSlots(t *testing.T) {
	// The second slot holds a nonzero coefficient but lies beyond the
	// k-point's wave count, so it must not be scattered.
	ns := singleWaveNamespace([3]int32{1, 1, 1}, complex(1, 0), [3]int{2, 2, 2})
	wd := ns["wavefunction"].(*castepbin.WavefunctionData)
	wd.Coeffs.Data[1] = complex(9, 9)

	w, err := wave.FromNamespace(ns)
	require.NoError(t, err)
	grid := w.ReciprocalGrid()

	assert.Equal(t, complex(1, 0), grid.At(1, 1, 1, 0, 0, 0, 0))
	assert.Equal(t, complex(0, 0), grid.At(0, 0, 0, 0, 0, 0, 0))
}

func TestFromNamespaceMissingWavefunction(t *testing.T) {
	_, err := wave.FromNamespace(castepbin.Namespace{})
	require.ErrorIs(t, err, castepbin.ErrMissingField)
}

func TestFromNamespaceMissingContext(t *testing.T) {
	ns := singleWaveNamespace([3]int32{0, 0, 0}, 1, [3]int{2, 2, 2})
	delete(ns, "eigenvalues")
	_, err := wave.FromNamespace(ns)
	require.ErrorIs(t, err, castepbin.ErrMissingField)
}

func TestOccupancyFillInBelowFermi(t *testing.T) {
	// Orbital files carry all-zero occupancies; states below the Fermi
	// level are then assumed occupied.
	ns := singleWaveNamespace([3]int32{0, 0, 0}, 1, [3]int{2, 2, 2})
	ns["occupancies"] = &castepbin.FloatArray{Shape: []int{1, 1, 1}, Data: []float64{0}}

	w, err := wave.FromNamespace(ns)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.Occupancies.Data[0]) // eigenvalue -0.5 < fermi 0.25
}

func TestAccessors(t *testing.T) {
	ns := singleWaveNamespace([3]int32{-1, 0, 1}, complex(2, 0), [3]int{4, 4, 4})
	w, err := wave.FromNamespace(ns)
	require.NoError(t, err)

	assert.Equal(t, 1, w.NSpins())
	assert.Equal(t, 1, w.NKpts())
	assert.Equal(t, 1, w.NBands())
	assert.Equal(t, 1, w.NSpinors())

	coeffs := w.PlaneWaveCoeffs(0, 0, 0, 0)
	assert.Equal(t, []complex128{complex(2, 0)}, coeffs)

	g := w.GVectors(0)
	assert.Equal(t, []int{3, 1}, g.Shape)
	assert.Equal(t, int32(-1), g.At(0, 0))

	// Wrapped mesh indices: -1 -> 3 on a mesh of 4.
	idx := w.GridIndices(0)
	assert.Equal(t, int32(3), idx.At(0, 0))
	assert.Equal(t, int32(1), idx.At(2, 0))
}

func TestCoordsToIndices(t *testing.T) {
	coords := &castepbin.IntArray{
		Shape: []int{3, 2},
		Data:  []int32{-1, 0, 2, 5, -4, 1},
	}
	idx := wave.CoordsToIndices(coords, 4, 4, 4)

	assert.Equal(t, []int32{3, 0, 2, 1, 0, 1}, idx.Data)
	// Input untouched.
	assert.Equal(t, int32(-1), coords.Data[0])
}

func TestKpointsCart(t *testing.T) {
	ns := singleWaveNamespace([3]int32{0, 0, 0}, 1, [3]int{2, 2, 2})
	wd := ns["wavefunction"].(*castepbin.WavefunctionData)
	wd.Kpts.Data = []float64{0.5, 0, 0}
	// Scale the reciprocal lattice so the transform is visible.
	ns["recip_lattice"] = &castepbin.FloatArray{
		Shape: []int{3, 3},
		Data:  []float64{2, 0, 0, 0, 4, 0, 0, 0, 6},
	}

	w, err := wave.FromNamespace(ns)
	require.NoError(t, err)

	cart := w.KpointsCart()
	assert.Equal(t, []int{3, 1}, cart.Shape)
	assert.Equal(t, 1.0, cart.At(0, 0)) // 0.5 * 2
	assert.Equal(t, 0.0, cart.At(1, 0))
}
