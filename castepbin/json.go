package castepbin

import (
	json "github.com/goccy/go-json"
)

// JSON encodings for the array types. complex128 has no native JSON
// representation, so complex arrays split into real and imaginary planes.

func (a *IntArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Shape []int   `json:"shape"`
		Data  []int32 `json:"data"`
	}{a.Shape, a.Data})
}

func (a *FloatArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Shape []int     `json:"shape"`
		Data  []float64 `json:"data"`
	}{a.Shape, a.Data})
}

func (a *ComplexArray) MarshalJSON() ([]byte, error) {
	re := make([]float64, len(a.Data))
	im := make([]float64, len(a.Data))
	for i, v := range a.Data {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return json.Marshal(struct {
		Shape []int     `json:"shape"`
		Real  []float64 `json:"real"`
		Imag  []float64 `json:"imag"`
	}{a.Shape, re, im})
}
