package oneinf

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Simulate draws n observations from the one-inflated logit model with
// covariates uniform on [xMin, xMax).
func Simulate(p Params, n int, xMin, xMax float64, src rand.Source) Observations {
	return Transfer{Model: OneInflated, Params: p}.Simulate(n, xMin, xMax, src)
}

// Simulate draws n observations from t with covariates uniform on
// [xMin, xMax).
func (t Transfer) Simulate(n int, xMin, xMax float64, src rand.Source) Observations {
	xDist := distuv.Uniform{Min: xMin, Max: xMax, Src: src}
	inflated := distuv.Bernoulli{P: InflateProb(t.Params), Src: src}
	if t.Model == Logistic {
		inflated.P = 0
	}
	forced := 1
	if t.Model == ZeroInflated {
		forced = 0
	}

	obs := Observations{Y: make([]int, n), X: make([]float64, n)}
	for i := 0; i < n; i++ {
		x := xDist.Rand()
		obs.X[i] = x
		if inflated.Rand() == 1 {
			obs.Y[i] = forced
			continue
		}
		reg := distuv.Bernoulli{P: t.Link.Prob(t.Params.RegZipfCoef*x + t.Params.RegConstCoef), Src: src}
		obs.Y[i] = int(reg.Rand())
	}
	return obs
}
