package oneinf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGD(t *testing.T) {
	p := &Param{
		Name:         "inflate_coef",
		Data:         1.0,
		RequiresGrad: true,
		grad:         1.0,
	}
	opt := NewSGD(0.1, 0.0, 1.0)

	opt.Step(p)
	assert.InDelta(t, 0.8, p.Data, 1e-12)
	assert.Equal(t, 0.0, p.Grad())

	p.grad = 1.0
	opt.Momentum = 0.9
	opt.WeightDecay = 0.0
	opt.Step(p)
	assert.InDelta(t, 0.7, p.Data, 1e-12)

	// 0.9 * 1.0 + -1.0 = -0.1
	p.grad = -1.0
	opt.Step(p)
	assert.InDelta(t, -0.1, opt.buf[p.Name], 1e-12)
	assert.InDelta(t, 0.71, p.Data, 1e-12)
}

func TestSGDSkipsFrozen(t *testing.T) {
	p := &Param{Name: "x", Data: 2.0, grad: 5.0}
	NewSGD(1.0, 0.9, 0.0).Step(p)
	assert.Equal(t, 2.0, p.Data)
}

func TestAdam(t *testing.T) {
	p := &Param{Name: "x", Data: 1.0, RequiresGrad: true, grad: 2.0}
	opt := NewAdam(0.1)

	// The first bias-corrected step has magnitude lr regardless of the
	// gradient's scale.
	opt.Step(p)
	assert.InDelta(t, 0.9, p.Data, 1e-6)
	assert.Equal(t, 0.0, p.Grad())
	assert.Equal(t, 1, opt.t["x"])

	fresh := opt.New().(*Adam)
	assert.Equal(t, opt.Lr, fresh.Lr)
	assert.Empty(t, fresh.m)
}

func TestParamSet(t *testing.T) {
	ps := NewParamSet(OneInflated, Params{InflateCoef: 1, RegConstCoef: 2, RegZipfCoef: 3})
	assert.Equal(t, []float64{1, 2, 3}, ps.Values())
	assert.Equal(t, "inflate_coef", ps[0].Name)

	ps.AccumulateGrad([]float64{1, 1, 1})
	ps.AccumulateGrad([]float64{1, 0, -1})
	assert.Equal(t, 2.0, ps[0].Grad())
	assert.Equal(t, 0.0, ps[2].Grad())

	ps.Step(NewSGD(0.5, 0, 0))
	assert.Equal(t, []float64{0, 1.5, 3}, ps.Values())

	logistic := NewParamSet(Logistic, Params{InflateCoef: 1, RegConstCoef: 2, RegZipfCoef: 3})
	assert.Equal(t, []float64{2, 3}, logistic.Values())
}
