// Package oneinf fits one-inflated Bernoulli regressions.
//
// Each binary outcome is either forced to 1 by an inflation mechanism with
// probability Sigmoid(InflateCoef), or drawn from a logistic regression on a
// single covariate. The negative log-likelihood is evaluated in log-space and
// is generic over the number type, so the same code computes values (Float),
// gradients (Dual) and Hessians (Hyperdual). Fit drives gonum optimizers or
// plain SGD over it; FitGroups fits many independent groups concurrently.
package oneinf

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned when observations violate the model's
	// preconditions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotConverged is returned, with a partial result, when the optimizer
	// stops without meeting a convergence criterion.
	ErrNotConverged = errors.New("optimizer did not converge")
)

// Observations are paired binary outcomes Y and covariate values X.
type Observations struct {
	Y []int
	X []float64
}

// Len returns the number of observations.
func (o Observations) Len() int {
	return len(o.Y)
}

// Validate checks that Y and X have the same positive length, every Y is 0
// or 1, and every X is finite.
func (o Observations) Validate() error {
	if len(o.Y) != len(o.X) {
		return fmt.Errorf("%w: len(Y) = %d, len(X) = %d", ErrInvalidInput, len(o.Y), len(o.X))
	}
	if len(o.Y) == 0 {
		return fmt.Errorf("%w: no observations", ErrInvalidInput)
	}
	for i, y := range o.Y {
		if y != 0 && y != 1 {
			return fmt.Errorf("%w: Y[%d] = %d; expected 0 or 1", ErrInvalidInput, i, y)
		}
		if math.IsNaN(o.X[i]) || math.IsInf(o.X[i], 0) {
			return fmt.Errorf("%w: X[%d] = %v is not finite", ErrInvalidInput, i, o.X[i])
		}
	}
	return nil
}

// Append returns the concatenation of o and other.
func (o Observations) Append(other Observations) Observations {
	out := Observations{
		Y: make([]int, 0, len(o.Y)+len(other.Y)),
		X: make([]float64, 0, len(o.X)+len(other.X)),
	}
	out.Y = append(append(out.Y, o.Y...), other.Y...)
	out.X = append(append(out.X, o.X...), other.X...)
	return out
}
