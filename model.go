package oneinf

import (
	"fmt"
	"math"
	"strings"
)

// NumParams is the number of parameters of the one-inflated model.
const NumParams = 3

// Params are the coefficients of the one-inflated model.
type Params struct {
	// Logit of the inflation probability.
	InflateCoef float64
	// Regression intercept.
	RegConstCoef float64
	// Regression slope on the covariate.
	RegZipfCoef float64
}

// Vector returns the parameters in evaluation order.
func (p Params) Vector() []float64 {
	return []float64{p.InflateCoef, p.RegConstCoef, p.RegZipfCoef}
}

// ParamsFromVector is the inverse of Params.Vector.
func ParamsFromVector(v []float64) Params {
	return Params{InflateCoef: v[0], RegConstCoef: v[1], RegZipfCoef: v[2]}
}

// Model selects which likelihood is fitted.
type Model int

const (
	// OneInflated is the three-parameter inflated model.
	OneInflated Model = iota
	// Logistic is the plain binary regression, i.e. OneInflated with the
	// inflation probability fixed at zero. It is logistic regression under
	// the default link.
	Logistic
	// ZeroInflated is the three-parameter model whose inflation forces
	// outcomes to 0.
	ZeroInflated
)

var modelNames = map[Model]string{
	OneInflated:  "one-inflated",
	Logistic:     "logistic",
	ZeroInflated: "zero-inflated",
}

func (m Model) String() string {
	if s, ok := modelNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ParseModel parses a model name as printed by Model.String.
func ParseModel(s string) (Model, error) {
	for m, name := range modelNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown model %q", s)
}

// NumParams returns the number of free parameters of the model.
func (m Model) NumParams() int {
	if m == Logistic {
		return 2
	}
	return NumParams
}

// ParamNames returns the free parameter names in vector order.
func (m Model) ParamNames() []string {
	if m == Logistic {
		return []string{"reg_const_coef", "reg_zipf_coef"}
	}
	return []string{"inflate_coef", "reg_const_coef", "reg_zipf_coef"}
}

// Free returns the free parameters of p as a vector.
func (m Model) Free(p Params) []float64 {
	if m == Logistic {
		return []float64{p.RegConstCoef, p.RegZipfCoef}
	}
	return p.Vector()
}

// Params expands a free parameter vector. The logistic model's inflation
// logit is -Inf.
func (m Model) Params(v []float64) Params {
	if m == Logistic {
		return Params{InflateCoef: math.Inf(-1), RegConstCoef: v[0], RegZipfCoef: v[1]}
	}
	return ParamsFromVector(v)
}

// EvaluateModel returns the negative log-likelihood of obs under model m
// with regression link l, at the free parameter vector v.
func EvaluateModel[T any](ar Arith[T], m Model, l Link, obs Observations, v []T) (T, error) {
	if err := checkArgs(m, obs, v); err != nil {
		var zero T
		return zero, err
	}
	return objective(ar, m, l, obs, v), nil
}

// objective evaluates the model on a validated obs.
func objective[T any](ar Arith[T], m Model, l Link, obs Observations, v []T) T {
	switch m {
	case Logistic:
		return evaluateLogistic(ar, l, obs, v[0], v[1])
	case ZeroInflated:
		return evaluateZeroInflated(ar, l, obs, v[0], v[1], v[2])
	default:
		return evaluate(ar, l, obs, v[0], v[1], v[2])
	}
}

// AIC is the Akaike information criterion for a fitted model.
func (m Model) AIC(nll float64) float64 {
	return 2*float64(m.NumParams()) + 2*nll
}
