package oneinf

import (
	"math"

	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Arith is the arithmetic the objective needs from a number type. Swapping
// the implementation changes what an evaluation computes: Float gives the
// value, Dual a directional derivative, Hyperdual a second derivative.
//
// Comparisons are made on Real, so every backend follows the same branch for
// the same point.
type Arith[T any] interface {
	Const(v float64) T
	Real(a T) float64
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Neg(a T) T
	Exp(a T) T
	Expm1(a T) T
	Log(a T) T
	Log1p(a T) T
	Erfc(a T) T
}

// Float is the value-only backend over float64.
type Float struct{}

// Const returns v.
func (Float) Const(v float64) float64 { return v }

// Real returns a.
func (Float) Real(a float64) float64 { return a }

// Add returns a+b.
func (Float) Add(a, b float64) float64 { return a + b }

// Sub returns a-b.
func (Float) Sub(a, b float64) float64 { return a - b }

// Mul returns a*b.
func (Float) Mul(a, b float64) float64 { return a * b }

// Neg returns -a.
func (Float) Neg(a float64) float64 { return -a }

// Exp returns e**a.
func (Float) Exp(a float64) float64 { return math.Exp(a) }

// Expm1 returns e**a - 1.
func (Float) Expm1(a float64) float64 { return math.Expm1(a) }

// Log returns the natural logarithm of a.
func (Float) Log(a float64) float64 { return math.Log(a) }

// Log1p returns log(1+a).
func (Float) Log1p(a float64) float64 { return math.Log1p(a) }

// Erfc returns the complementary error function of a.
func (Float) Erfc(a float64) float64 { return math.Erfc(a) }

// Dual is the forward-mode backend over gonum dual numbers. Seeding one
// parameter's Emag with 1 yields the partial derivative in the result's Emag.
type Dual struct{}

// Const returns v with a zero derivative.
func (Dual) Const(v float64) dual.Number { return dual.Number{Real: v} }

// Real returns the real part of a.
func (Dual) Real(a dual.Number) float64 { return a.Real }

// Add returns a+b.
func (Dual) Add(a, b dual.Number) dual.Number { return dual.Add(a, b) }

// Sub returns a-b.
func (Dual) Sub(a, b dual.Number) dual.Number { return dual.Sub(a, b) }

// Mul returns a*b.
func (Dual) Mul(a, b dual.Number) dual.Number { return dual.Mul(a, b) }

// Neg returns -a.
func (Dual) Neg(a dual.Number) dual.Number { return dual.Scale(-1, a) }

// Exp returns e**a.
func (Dual) Exp(a dual.Number) dual.Number { return dual.Exp(a) }

// Expm1 returns e**a - 1 without cancellation near zero.
func (Dual) Expm1(a dual.Number) dual.Number {
	return liftDual(a, math.Expm1(a.Real), math.Exp(a.Real))
}

// Log returns the natural logarithm of a.
func (Dual) Log(a dual.Number) dual.Number {
	return liftDual(a, math.Log(a.Real), 1/a.Real)
}

// Log1p lifts math.Log1p so small arguments keep full precision.
func (Dual) Log1p(a dual.Number) dual.Number {
	return liftDual(a, math.Log1p(a.Real), 1/(1+a.Real))
}

// Erfc returns the complementary error function of a.
func (Dual) Erfc(a dual.Number) dual.Number {
	return liftDual(a, math.Erfc(a.Real), erfcDeriv(a.Real))
}

// liftDual applies a scalar function with value f and derivative d1 at a.Real.
func liftDual(a dual.Number, f, d1 float64) dual.Number {
	return dual.Number{Real: f, Emag: d1 * a.Emag}
}

// Hyperdual is the second-order backend over gonum hyperdual numbers. Seeding
// parameter i in E1mag and parameter j in E2mag yields the (i, j) Hessian
// entry in the result's E1E2mag.
type Hyperdual struct{}

// Const returns v with zero derivatives.
func (Hyperdual) Const(v float64) hyperdual.Number { return hyperdual.Number{Real: v} }

// Real returns the real part of a.
func (Hyperdual) Real(a hyperdual.Number) float64 { return a.Real }

// Add returns a+b.
func (Hyperdual) Add(a, b hyperdual.Number) hyperdual.Number { return hyperdual.Add(a, b) }

// Sub returns a-b.
func (Hyperdual) Sub(a, b hyperdual.Number) hyperdual.Number { return hyperdual.Sub(a, b) }

// Mul returns a*b.
func (Hyperdual) Mul(a, b hyperdual.Number) hyperdual.Number { return hyperdual.Mul(a, b) }

// Neg returns -a.
func (Hyperdual) Neg(a hyperdual.Number) hyperdual.Number { return hyperdual.Scale(-1, a) }

// Exp returns e**a.
func (Hyperdual) Exp(a hyperdual.Number) hyperdual.Number { return hyperdual.Exp(a) }

// Expm1 returns e**a - 1. Both derivatives are e**x.
func (Hyperdual) Expm1(a hyperdual.Number) hyperdual.Number {
	e := math.Exp(a.Real)
	return liftHyperdual(a, math.Expm1(a.Real), e, e)
}

// Log returns the natural logarithm of a, with derivatives 1/x and -1/x^2.
func (Hyperdual) Log(a hyperdual.Number) hyperdual.Number {
	d1 := 1 / a.Real
	return liftHyperdual(a, math.Log(a.Real), d1, -d1*d1)
}

// Log1p lifts math.Log1p, with derivatives 1/(1+x) and -1/(1+x)^2.
func (Hyperdual) Log1p(a hyperdual.Number) hyperdual.Number {
	d1 := 1 / (1 + a.Real)
	return liftHyperdual(a, math.Log1p(a.Real), d1, -d1*d1)
}

// Erfc returns the complementary error function of a:
// the first derivative is -2/sqrt(pi) exp(-x^2) and the second -2x times that.
func (Hyperdual) Erfc(a hyperdual.Number) hyperdual.Number {
	d1 := erfcDeriv(a.Real)
	return liftHyperdual(a, math.Erfc(a.Real), d1, -2*a.Real*d1)
}

// liftHyperdual applies a scalar function with value f, first derivative d1
// and second derivative d2 at a.Real.
func liftHyperdual(a hyperdual.Number, f, d1, d2 float64) hyperdual.Number {
	return hyperdual.Number{
		Real:    f,
		E1mag:   d1 * a.E1mag,
		E2mag:   d1 * a.E2mag,
		E1E2mag: d1*a.E1E2mag + d2*a.E1mag*a.E2mag,
	}
}

func erfcDeriv(x float64) float64 {
	return -2 / math.SqrtPi * math.Exp(-x*x)
}
