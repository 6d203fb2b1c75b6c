package oneinf

import (
	"math"
)

// An Optimizer performs gradient based parameter updates. Implementations
// keep per-parameter state keyed by Param.Name and zero the gradient after
// each step.
type Optimizer interface {
	Step(p *Param)
	New() Optimizer
}

// SGD Optimizer with momentum and weight decay
type SGD struct {
	Lr          float64
	Momentum    float64
	WeightDecay float64
	buf         map[string]float64
}

// Step takes an SGD optimization step on one scalar parameter.
func (opt *SGD) Step(p *Param) {
	if !p.RequiresGrad {
		return
	}

	grad := p.grad
	if opt.WeightDecay > 0 {
		grad += opt.WeightDecay * p.Data
	}

	v := grad
	if opt.Momentum > 0 {
		if prev, ok := opt.buf[p.Name]; ok {
			v = opt.Momentum*prev + grad
		}
		opt.buf[p.Name] = v
	}
	p.Data -= opt.Lr * v
	p.ZeroGrad()
}

// New initializes a new SGD optimizer with the same hyperparameters.
func (opt *SGD) New() Optimizer {
	return NewSGD(opt.Lr, opt.Momentum, opt.WeightDecay)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(lr float64, momentum float64, weightDecay float64) *SGD {
	return &SGD{
		Lr:          lr,
		Momentum:    momentum,
		WeightDecay: weightDecay,
		buf:         make(map[string]float64),
	}
}

// Adam optimizer (Kingma & Ba) with bias-corrected moment estimates.
type Adam struct {
	Lr      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64
	m       map[string]float64
	v       map[string]float64
	t       map[string]int
}

// NewAdam creates an Adam optimizer with the usual beta and epsilon defaults.
func NewAdam(lr float64) *Adam {
	return &Adam{
		Lr:      lr,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
		m:       make(map[string]float64),
		v:       make(map[string]float64),
		t:       make(map[string]int),
	}
}

// Step takes an Adam step on one scalar parameter.
func (opt *Adam) Step(p *Param) {
	if !p.RequiresGrad {
		return
	}
	g := p.grad
	t := opt.t[p.Name] + 1
	m := opt.Beta1*opt.m[p.Name] + (1-opt.Beta1)*g
	v := opt.Beta2*opt.v[p.Name] + (1-opt.Beta2)*g*g
	opt.t[p.Name], opt.m[p.Name], opt.v[p.Name] = t, m, v

	mHat := m / (1 - math.Pow(opt.Beta1, float64(t)))
	vHat := v / (1 - math.Pow(opt.Beta2, float64(t)))
	p.Data -= opt.Lr * mHat / (math.Sqrt(vHat) + opt.Epsilon)
	p.ZeroGrad()
}

// New initializes a new Adam optimizer with the same hyperparameters.
func (opt *Adam) New() Optimizer {
	a := NewAdam(opt.Lr)
	a.Beta1, a.Beta2, a.Epsilon = opt.Beta1, opt.Beta2, opt.Epsilon
	return a
}
