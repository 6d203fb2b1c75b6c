package oneinf

import (
	"gonum.org/v1/gonum/floats"
)

// InflateProb returns the probability that an outcome is forced by
// inflation.
func InflateProb(p Params) float64 {
	return Sigmoid(p.InflateCoef)
}

// Predict returns P(Y = 1 | x) under the one-inflated logit model.
func Predict(p Params, x float64) float64 {
	return Transfer{Model: OneInflated, Params: p}.At(x)
}

// Curve evaluates Predict at each of xs.
func Curve(p Params, xs []float64) []float64 {
	return Transfer{Model: OneInflated, Params: p}.Curve(xs)
}

// A Transfer is the fitted curve P(Y = 1 | x) of a model kind and link.
type Transfer struct {
	Model  Model
	Link   Link
	Params Params
}

// Transfer returns the fitted curve of r.
func (r *FitResult) Transfer() Transfer {
	return Transfer{Model: r.Model, Link: r.Link, Params: r.Params}
}

// At returns P(Y = 1 | x).
func (t Transfer) At(x float64) float64 {
	p := t.Link.Prob(t.Params.RegZipfCoef*x + t.Params.RegConstCoef)
	switch t.Model {
	case Logistic:
		return p
	case ZeroInflated:
		return (1 - InflateProb(t.Params)) * p
	default:
		pi := InflateProb(t.Params)
		return pi + (1-pi)*p
	}
}

// Curve evaluates At at each of xs.
func (t Transfer) Curve(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = t.At(x)
	}
	return out
}

// Grid returns n evenly spaced points from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
