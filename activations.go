package oneinf

import (
	"math"
)

// softplus computes log(1 + exp(z)) without overflow for large z.
func softplus[T any](ar Arith[T], z T) T {
	if ar.Real(z) > 0 {
		return ar.Add(z, ar.Log1p(ar.Exp(ar.Neg(z))))
	}
	return ar.Log1p(ar.Exp(z))
}

// Sigmoid maps a logit to a probability.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Logit is the inverse of Sigmoid.
func Logit(p float64) float64 {
	return math.Log(p) - math.Log1p(-p)
}
