package oneinf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Gradient returns the gradient of the negative log-likelihood of model m
// with link l with respect to its free parameters v.
func Gradient(m Model, l Link, obs Observations, v []float64) ([]float64, error) {
	if err := checkArgs(m, obs, v); err != nil {
		return nil, err
	}
	grad := make([]float64, len(v))
	gradientInto(grad, m, l, obs, v)
	return grad, nil
}

// gradientInto runs one dual pass per parameter.
func gradientInto(grad []float64, m Model, l Link, obs Observations, v []float64) {
	d := make([]dual.Number, len(v))
	for j := range v {
		for k := range v {
			d[k] = dual.Number{Real: v[k]}
		}
		d[j].Emag = 1
		grad[j] = objective[dual.Number](Dual{}, m, l, obs, d).Emag
	}
}

// Hessian returns the Hessian of the negative log-likelihood of model m with
// link l with respect to its free parameters v.
func Hessian(m Model, l Link, obs Observations, v []float64) (*mat.SymDense, error) {
	if err := checkArgs(m, obs, v); err != nil {
		return nil, err
	}
	hess := mat.NewSymDense(len(v), nil)
	hessianInto(hess, m, l, obs, v)
	return hess, nil
}

// hessianInto runs one hyperdual pass per upper-triangle entry.
func hessianInto(hess *mat.SymDense, m Model, l Link, obs Observations, v []float64) {
	h := make([]hyperdual.Number, len(v))
	for i := range v {
		for j := i; j < len(v); j++ {
			for k := range v {
				h[k] = hyperdual.Number{Real: v[k]}
			}
			h[i].E1mag = 1
			h[j].E2mag = 1
			hess.SetSym(i, j, objective[hyperdual.Number](Hyperdual{}, m, l, obs, h).E1E2mag)
		}
	}
}

func checkArgs[T any](m Model, obs Observations, v []T) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	if len(v) != m.NumParams() {
		return fmt.Errorf("%w: %s model takes %d parameters, got %d", ErrInvalidInput, m, m.NumParams(), len(v))
	}
	return nil
}
