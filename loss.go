package oneinf

import (
	"math"
)

// LogBernoulliProb is the log-probability of k successes in n trials with
// success probability Sigmoid(logit):
//
//	k*log(sigmoid(logit)) + (n-k)*log(1-sigmoid(logit))
//
// Both terms are written as negative softplus values, so the result is finite
// and <= 0 for every finite logit.
func LogBernoulliProb[T any](ar Arith[T], k, n int, logit T) T {
	out := ar.Const(0)
	if k > 0 {
		out = ar.Sub(out, ar.Mul(ar.Const(float64(k)), softplus(ar, ar.Neg(logit))))
	}
	if n-k > 0 {
		out = ar.Sub(out, ar.Mul(ar.Const(float64(n-k)), softplus(ar, logit)))
	}
	return out
}

// LogAddExp computes log(exp(a) + exp(b)).
func LogAddExp[T any](ar Arith[T], a, b T) T {
	if ar.Real(a) < ar.Real(b) {
		a, b = b, a
	}
	if math.IsInf(ar.Real(b), -1) {
		return a
	}
	return ar.Add(a, ar.Log1p(ar.Exp(ar.Sub(b, a))))
}

// Evaluate returns the negative log-likelihood of obs under the one-inflated
// model with parameters p, ordered as in Params.Vector.
//
// An observation of 1 is explained either by inflation or by a regression
// success after no inflation. An observation of 0 can only come from a
// regression failure.
func Evaluate[T any](ar Arith[T], obs Observations, p [NumParams]T) (T, error) {
	if err := obs.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return evaluate(ar, LinkLogit, obs, p[0], p[1], p[2]), nil
}

func evaluate[T any](ar Arith[T], l Link, obs Observations, inflate, regConst, regZipf T) T {
	inflateOne := LogBernoulliProb(ar, 1, 1, inflate)
	inflateZero := LogBernoulliProb(ar, 0, 1, inflate)

	nll := ar.Const(0)
	for i, y := range obs.Y {
		theta := ar.Add(ar.Mul(regZipf, ar.Const(obs.X[i])), regConst)
		var ll T
		if y == 1 {
			ll = LogAddExp(ar, inflateOne, ar.Add(inflateZero, LinkLogProb(ar, l, 1, 1, theta)))
		} else {
			ll = ar.Add(inflateZero, LinkLogProb(ar, l, 0, 1, theta))
		}
		nll = ar.Sub(nll, ll)
	}
	return nll
}

// evaluateZeroInflated mirrors evaluate with the inflation forcing outcomes
// to 0 instead of 1.
func evaluateZeroInflated[T any](ar Arith[T], l Link, obs Observations, inflate, regConst, regZipf T) T {
	inflateOne := LogBernoulliProb(ar, 1, 1, inflate)
	inflateZero := LogBernoulliProb(ar, 0, 1, inflate)

	nll := ar.Const(0)
	for i, y := range obs.Y {
		theta := ar.Add(ar.Mul(regZipf, ar.Const(obs.X[i])), regConst)
		var ll T
		if y == 0 {
			ll = LogAddExp(ar, inflateOne, ar.Add(inflateZero, LinkLogProb(ar, l, 0, 1, theta)))
		} else {
			ll = ar.Add(inflateZero, LinkLogProb(ar, l, 1, 1, theta))
		}
		nll = ar.Sub(nll, ll)
	}
	return nll
}

// NLL is Evaluate on plain floats.
func NLL(y []int, x []float64, inflateCoef, regConstCoef, regZipfCoef float64) (float64, error) {
	obs := Observations{Y: y, X: x}
	return Evaluate[float64](Float{}, obs, [NumParams]float64{inflateCoef, regConstCoef, regZipfCoef})
}

// EvaluateLogistic returns the negative log-likelihood of obs under plain
// logistic regression. It is the limit of Evaluate as the inflation logit
// goes to -Inf.
func EvaluateLogistic[T any](ar Arith[T], obs Observations, regConst, regZipf T) (T, error) {
	if err := obs.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return evaluateLogistic(ar, LinkLogit, obs, regConst, regZipf), nil
}

func evaluateLogistic[T any](ar Arith[T], l Link, obs Observations, regConst, regZipf T) T {
	nll := ar.Const(0)
	for i, y := range obs.Y {
		theta := ar.Add(ar.Mul(regZipf, ar.Const(obs.X[i])), regConst)
		nll = ar.Sub(nll, LinkLogProb(ar, l, y, 1, theta))
	}
	return nll
}

// LogisticNLL is EvaluateLogistic on plain floats.
func LogisticNLL(y []int, x []float64, regConstCoef, regZipfCoef float64) (float64, error) {
	return EvaluateLogistic[float64](Float{}, Observations{Y: y, X: x}, regConstCoef, regZipfCoef)
}
