package oneinf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func TestParseLink(t *testing.T) {
	for _, l := range []Link{LinkLogit, LinkProbit, LinkCloglog} {
		got, err := ParseLink(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLink("identity")
	assert.Error(t, err)
	assert.Equal(t, "Link(5)", Link(5).String())
}

func TestLinkProb(t *testing.T) {
	assert.InDelta(t, 0.5, LinkLogit.Prob(0), 1e-15)
	assert.InDelta(t, 0.5, LinkProbit.Prob(0), 1e-15)
	assert.InDelta(t, 0.9750021048517795, LinkProbit.Prob(1.96), 1e-12)
	assert.InDelta(t, 1-math.Exp(-1), LinkCloglog.Prob(0), 1e-15)
	assert.InDelta(t, 1-math.Exp(-math.E), LinkCloglog.Prob(1), 1e-15)
}

func TestLinkLogProbMatchesProb(t *testing.T) {
	for _, l := range []Link{LinkLogit, LinkProbit, LinkCloglog} {
		for _, theta := range []float64{-3, -0.4, 0, 1.1, 2.5} {
			p := l.Prob(theta)
			assert.InDelta(t, math.Log(p), LinkLogProb[float64](Float{}, l, 1, 1, theta), 1e-9, "%s(%v)", l, theta)
			assert.InDelta(t, math.Log1p(-p), LinkLogProb[float64](Float{}, l, 0, 1, theta), 1e-9, "%s(%v)", l, theta)
			assert.InDelta(t, 3*math.Log(p)+2*math.Log1p(-p), LinkLogProb[float64](Float{}, l, 3, 5, theta), 1e-8)
		}
	}
}

func TestLinkLogProbTails(t *testing.T) {
	// Deep tails stay finite where 1-p rounds to 0 or p to 1.
	lp := LinkLogProb[float64](Float{}, LinkProbit, 1, 1, -20)
	assert.False(t, math.IsInf(lp, 0) || math.IsNaN(lp))
	assert.Less(t, lp, -200.0)
	assert.InDelta(t, 0, LinkLogProb[float64](Float{}, LinkProbit, 1, 1, 20), 1e-15)

	lc := LinkLogProb[float64](Float{}, LinkCloglog, 1, 1, -40)
	assert.InDelta(t, -40, lc, 1e-9)
	assert.InDelta(t, -math.Exp(5), LinkLogProb[float64](Float{}, LinkCloglog, 0, 1, 5), 1e-9)
}

func TestLiftedFunctionsDerivatives(t *testing.T) {
	type fn struct {
		name string
		f    func(float64) float64
		d    func(Dual, float64) float64
		h    func(Hyperdual, float64) float64
	}
	fns := []fn{
		{"log", math.Log,
			func(ar Dual, x float64) float64 { return ar.Log(dualVar(x)).Emag },
			func(ar Hyperdual, x float64) float64 { return ar.Log(hyperdualVar(x)).E1E2mag }},
		{"log1p", math.Log1p,
			func(ar Dual, x float64) float64 { return ar.Log1p(dualVar(x)).Emag },
			func(ar Hyperdual, x float64) float64 { return ar.Log1p(hyperdualVar(x)).E1E2mag }},
		{"expm1", math.Expm1,
			func(ar Dual, x float64) float64 { return ar.Expm1(dualVar(x)).Emag },
			func(ar Hyperdual, x float64) float64 { return ar.Expm1(hyperdualVar(x)).E1E2mag }},
		{"erfc", math.Erfc,
			func(ar Dual, x float64) float64 { return ar.Erfc(dualVar(x)).Emag },
			func(ar Hyperdual, x float64) float64 { return ar.Erfc(hyperdualVar(x)).E1E2mag }},
	}
	for _, f := range fns {
		for _, x := range []float64{0.3, 1.2, 2.5} {
			want := fd.Derivative(f.f, x, &fd.Settings{Formula: fd.Central})
			assert.InDelta(t, want, f.d(Dual{}, x), 1e-6, "%s'(%v)", f.name, x)
			want2 := fd.Derivative(f.f, x, &fd.Settings{Formula: fd.Central2nd})
			assert.InDelta(t, want2, f.h(Hyperdual{}, x), 1e-4, "%s''(%v)", f.name, x)
		}
	}
}
