package oneinf

import (
	"fmt"
	"math"
	"strings"
)

// Link maps the regression's linear predictor theta to a success
// probability. The inflation probability always uses the logit link.
type Link int

const (
	// LinkLogit is P = Sigmoid(theta).
	LinkLogit Link = iota
	// LinkProbit is P = Phi(theta), the standard normal CDF.
	LinkProbit
	// LinkCloglog is P = 1 - exp(-exp(theta)).
	LinkCloglog
)

var linkNames = map[Link]string{
	LinkLogit:   "logit",
	LinkProbit:  "probit",
	LinkCloglog: "cloglog",
}

func (l Link) String() string {
	if s, ok := linkNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Link(%d)", int(l))
}

// ParseLink parses a link name as printed by Link.String.
func ParseLink(s string) (Link, error) {
	for l, name := range linkNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown link %q", s)
}

// Prob returns the success probability at theta.
func (l Link) Prob(theta float64) float64 {
	switch l {
	case LinkProbit:
		return 0.5 * math.Erfc(-theta/math.Sqrt2)
	case LinkCloglog:
		return -math.Expm1(-math.Exp(theta))
	default:
		return Sigmoid(theta)
	}
}

// LinkLogProb is LogBernoulliProb with the success probability given by link
// l at theta.
//
// Probit and cloglog log-probabilities are computed from erfc and expm1 so
// they stay accurate in both tails, but they underflow to -Inf once the
// probability itself is below the smallest float64 (|theta| around 38 for
// probit, theta below about -745 for cloglog).
func LinkLogProb[T any](ar Arith[T], l Link, k, n int, theta T) T {
	if l == LinkLogit {
		return LogBernoulliProb(ar, k, n, theta)
	}
	out := ar.Const(0)
	if k > 0 {
		out = ar.Add(out, ar.Mul(ar.Const(float64(k)), logSuccess(ar, l, theta)))
	}
	if n-k > 0 {
		out = ar.Add(out, ar.Mul(ar.Const(float64(n-k)), logFailure(ar, l, theta)))
	}
	return out
}

func logSuccess[T any](ar Arith[T], l Link, theta T) T {
	switch l {
	case LinkProbit:
		return logPhi(ar, theta)
	case LinkCloglog:
		// log(1 - exp(-exp(theta)))
		return ar.Log(ar.Neg(ar.Expm1(ar.Neg(ar.Exp(theta)))))
	default:
		return LogBernoulliProb(ar, 1, 1, theta)
	}
}

func logFailure[T any](ar Arith[T], l Link, theta T) T {
	switch l {
	case LinkProbit:
		return logPhi(ar, ar.Neg(theta))
	case LinkCloglog:
		return ar.Neg(ar.Exp(theta))
	default:
		return LogBernoulliProb(ar, 0, 1, theta)
	}
}

// logPhi is log of the standard normal CDF, log(erfc(-z/sqrt2) / 2).
func logPhi[T any](ar Arith[T], z T) T {
	e := ar.Erfc(ar.Mul(ar.Const(-1/math.Sqrt2), z))
	return ar.Sub(ar.Log(e), ar.Const(math.Ln2))
}
