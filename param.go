package oneinf

// A Param is a named model parameter with an accumulated gradient.
type Param struct {
	Name         string
	Data         float64
	RequiresGrad bool
	grad         float64
}

// Grad returns the accumulated gradient.
func (p *Param) Grad() float64 {
	return p.grad
}

// ZeroGrad zeros out the parameter's gradient
func (p *Param) ZeroGrad() {
	p.grad = 0.0
}

// A ParamSet holds a model's free parameters in vector order.
type ParamSet []*Param

// NewParamSet creates the free parameters of m initialized from start.
func NewParamSet(m Model, start Params) ParamSet {
	names := m.ParamNames()
	values := m.Free(start)
	ps := make(ParamSet, len(names))
	for i, name := range names {
		ps[i] = &Param{Name: name, Data: values[i], RequiresGrad: true}
	}
	return ps
}

// Values returns the current parameter values.
func (ps ParamSet) Values() []float64 {
	v := make([]float64, len(ps))
	for i, p := range ps {
		v[i] = p.Data
	}
	return v
}

// AccumulateGrad adds grad to each parameter's gradient.
func (ps ParamSet) AccumulateGrad(grad []float64) {
	for i, p := range ps {
		if p.RequiresGrad {
			p.grad += grad[i]
		}
	}
}

// Step applies opt to every parameter.
func (ps ParamSet) Step(opt Optimizer) {
	for _, p := range ps {
		opt.Step(p)
	}
}
