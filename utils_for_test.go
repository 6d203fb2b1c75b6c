package oneinf

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Parameters used across tests: moderate inflation, regression rising over
// the usual zipf range.
var testParams = Params{InflateCoef: -1.0, RegConstCoef: -3.0, RegZipfCoef: 1.0}

// simulated draws a reproducible sample from the one-inflated model.
func simulated(seed uint64, n int, p Params) Observations {
	return Simulate(p, n, 0, 7, rand.NewPCG(seed, seed+1))
}

func dualVar(x float64) dual.Number {
	return dual.Number{Real: x, Emag: 1}
}

func hyperdualVar(x float64) hyperdual.Number {
	return hyperdual.Number{Real: x, E1mag: 1, E2mag: 1}
}
