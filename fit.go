package oneinf

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Method names an optimization method.
type Method string

const (
	// BFGS is gonum's quasi-Newton BFGS method.
	BFGS Method = "bfgs"
	// LBFGS is gonum's limited-memory BFGS method.
	LBFGS Method = "lbfgs"
	// Newton is gonum's modified Newton method using the exact Hessian.
	Newton Method = "newton"
	// MethodSGD and MethodAdam step on the mean gradient with the package's
	// own optimizers.
	MethodSGD  Method = "sgd"
	MethodAdam Method = "adam"
)

// Methods lists the supported methods.
var Methods = []Method{BFGS, LBFGS, Newton, MethodSGD, MethodAdam}

// ParseMethod parses a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q", s)
}

func (m Method) descent() bool {
	return m == MethodSGD || m == MethodAdam
}

// FitOptions configure Fit. Zero values select defaults.
type FitOptions struct {
	Model Model
	// Link is the regression link; the zero value is LinkLogit.
	Link   Link
	Method Method
	// Start is the initial point; all zeros if nil.
	Start *Params
	// MaxIterations bounds major iterations (1000, or 20000 for descent
	// methods).
	MaxIterations int
	// GradientThreshold stops when the gradient norm falls below it (1e-6).
	// Descent methods compare it to the gradient of the mean NLL.
	GradientThreshold float64
	// LearningRate and Momentum apply to descent methods only.
	LearningRate float64
	Momentum     float64
}

func (o FitOptions) withDefaults() FitOptions {
	if o.Method == "" {
		o.Method = BFGS
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1000
		if o.Method.descent() {
			o.MaxIterations = 20000
		}
	}
	if o.GradientThreshold <= 0 {
		o.GradientThreshold = 1e-6
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.05
	}
	if o.Method == MethodSGD && o.Momentum == 0 {
		o.Momentum = 0.9
	}
	return o
}

// FitResult is the outcome of a fit.
type FitResult struct {
	Model  Model
	Link   Link
	Method Method
	Params Params
	NLL    float64
	AIC    float64
	// StdErr holds standard errors of the free parameters, in
	// Model.ParamNames order. Entries are NaN when the Hessian at the
	// optimum is not positive definite.
	StdErr          []float64
	NumObs          int
	Iterations      int
	FuncEvaluations int
	Status          string
	Converged       bool
}

// Fit minimizes the model's negative log-likelihood over obs.
//
// If the optimizer stops without converging, Fit returns the last point
// together with an error wrapping ErrNotConverged.
func Fit(ctx context.Context, obs Observations, opts FitOptions) (*FitResult, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if _, ok := modelNames[opts.Model]; !ok {
		return nil, fmt.Errorf("unknown model %v", opts.Model)
	}
	if _, ok := linkNames[opts.Link]; !ok {
		return nil, fmt.Errorf("unknown link %v", opts.Link)
	}

	var startParams Params
	if opts.Start != nil {
		startParams = *opts.Start
	}
	start := opts.Model.Free(startParams)

	var (
		res *FitResult
		err error
	)
	switch opts.Method {
	case BFGS, LBFGS, Newton:
		res, err = fitGonum(ctx, obs, start, opts)
	case MethodSGD, MethodAdam:
		res, err = fitDescent(ctx, obs, start, opts)
	default:
		return nil, fmt.Errorf("unknown method %q", opts.Method)
	}
	if res == nil {
		return nil, err
	}

	res.Model = opts.Model
	res.Link = opts.Link
	res.Method = opts.Method
	res.NumObs = obs.Len()
	res.AIC = opts.Model.AIC(res.NLL)
	res.StdErr = stdErrors(opts.Model, opts.Link, obs, opts.Model.Free(res.Params))

	logger.Info("fit done",
		"model", res.Model.String(),
		"link", res.Link.String(),
		"method", string(res.Method),
		"n", res.NumObs,
		"nll", res.NLL,
		"iterations", res.Iterations,
		"status", res.Status,
	)
	return res, err
}

// ctxConverger stops the optimizer once ctx is done.
type ctxConverger struct {
	ctx context.Context
	optimize.Converger
}

func (c *ctxConverger) Converged(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.Failure
	}
	return c.Converger.Converged(loc)
}

func fitGonum(ctx context.Context, obs Observations, start []float64, opts FitOptions) (*FitResult, error) {
	m, l := opts.Model, opts.Link
	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			return objective[float64](Float{}, m, l, obs, v)
		},
		Grad: func(grad, v []float64) {
			gradientInto(grad, m, l, obs, v)
		},
		Hess: func(hess *mat.SymDense, v []float64) {
			hessianInto(hess, m, l, obs, v)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: opts.GradientThreshold,
		MajorIterations:   opts.MaxIterations,
		Converger: &ctxConverger{
			ctx:       ctx,
			Converger: &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 100},
		},
	}

	var method optimize.Method
	switch opts.Method {
	case LBFGS:
		method = &optimize.LBFGS{}
	case Newton:
		method = &optimize.Newton{}
	default:
		method = &optimize.BFGS{}
	}

	result, err := optimize.Minimize(problem, start, settings, method)
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if result == nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}

	res := &FitResult{
		Params:          m.Params(result.X),
		NLL:             result.F,
		Iterations:      result.MajorIterations,
		FuncEvaluations: result.FuncEvaluations,
		Status:          result.Status.String(),
		Converged:       converged(result.Status),
	}
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}
	if !res.Converged {
		return res, fmt.Errorf("%w: status %s", ErrNotConverged, res.Status)
	}
	return res, nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// fitDescent runs full-batch gradient descent on the mean NLL.
func fitDescent(ctx context.Context, obs Observations, start []float64, opts FitOptions) (*FitResult, error) {
	m, l := opts.Model, opts.Link
	ps := NewParamSet(m, m.Params(start))

	var opt Optimizer
	if opts.Method == MethodAdam {
		opt = NewAdam(opts.LearningRate)
	} else {
		opt = NewSGD(opts.LearningRate, opts.Momentum, 0)
	}

	scale := 1 / float64(obs.Len())
	grad := make([]float64, len(ps))
	res := &FitResult{Status: "IterationLimit"}
	for it := 1; it <= opts.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gradientInto(grad, m, l, obs, ps.Values())
		floats.Scale(scale, grad)
		res.FuncEvaluations++
		if floats.Norm(grad, 2) < opts.GradientThreshold {
			res.Status = "GradientThreshold"
			res.Converged = true
			break
		}
		ps.AccumulateGrad(grad)
		ps.Step(opt)
		res.Iterations = it

		if it%1000 == 0 {
			logger.Debug("descent step",
				"iteration", it,
				"grad_norm", floats.Norm(grad, 2),
				"params", ps.Values(),
			)
		}
	}

	v := ps.Values()
	res.Params = m.Params(v)
	res.NLL = objective[float64](Float{}, m, l, obs, v)
	if !res.Converged {
		return res, fmt.Errorf("%w: status %s", ErrNotConverged, res.Status)
	}
	return res, nil
}

// stdErrors returns sqrt(diag(H^-1)) at v.
func stdErrors(m Model, l Link, obs Observations, v []float64) []float64 {
	se := make([]float64, len(v))
	hess := mat.NewSymDense(len(v), nil)
	hessianInto(hess, m, l, obs, v)

	var chol mat.Cholesky
	var cov mat.SymDense
	if ok := chol.Factorize(hess); !ok || chol.InverseTo(&cov) != nil {
		for i := range se {
			se[i] = math.NaN()
		}
		return se
	}
	for i := range se {
		se[i] = math.Sqrt(cov.At(i, i))
	}
	return se
}
