package oneinf

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// A KDE is a Gaussian kernel density estimate.
type KDE struct {
	points    []float64
	bandwidth float64
}

// NewKDE fits a KDE to points with the normal reference bandwidth
// 1.059 * A * n^(-1/5), where A is the smaller of the sample standard
// deviation and the interquartile range / 1.349 (the standard deviation
// alone when the IQR is zero).
func NewKDE(points []float64) (*KDE, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: kde needs at least 2 points, got %d", ErrInvalidInput, len(points))
	}
	sorted := slices.Sorted(slices.Values(points))
	a := stat.StdDev(sorted, nil)
	iqr := (stat.Quantile(0.75, stat.LinInterp, sorted, nil) - stat.Quantile(0.25, stat.LinInterp, sorted, nil)) / 1.349
	if iqr > 0 {
		a = math.Min(a, iqr)
	}
	if !(a > 0) {
		return nil, fmt.Errorf("%w: kde bandwidth is zero, all %d points equal %v", ErrInvalidInput, len(points), points[0])
	}
	return &KDE{
		points:    sorted,
		bandwidth: 1.059 * a * math.Pow(float64(len(points)), -0.2),
	}, nil
}

// Bandwidth returns the kernel standard deviation.
func (k *KDE) Bandwidth() float64 {
	return k.bandwidth
}

// Density returns the estimated density at x.
func (k *KDE) Density(x float64) float64 {
	var sum float64
	for _, p := range k.points {
		sum += distuv.UnitNormal.Prob((x - p) / k.bandwidth)
	}
	return sum / (float64(len(k.points)) * k.bandwidth)
}

// A Smooth is the nonparametric transfer curve of a set of observations,
// sampled on a grid. Known and Unknown are the KDEs of the covariate among
// outcomes 1 and 0, each scaled by its share of the observations.
type Smooth struct {
	X       []float64
	Known   []float64
	Unknown []float64
}

// NewSmooth estimates the transfer curve of obs at xs. A class with no
// observations contributes zero density.
func NewSmooth(obs Observations, xs []float64) (*Smooth, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	var known, unknown []float64
	for i, y := range obs.Y {
		if y == 1 {
			known = append(known, obs.X[i])
		} else {
			unknown = append(unknown, obs.X[i])
		}
	}

	s := &Smooth{X: xs}
	var err error
	if s.Known, err = scaledDensity(known, obs.Len(), xs); err != nil {
		return nil, fmt.Errorf("known outcomes: %w", err)
	}
	if s.Unknown, err = scaledDensity(unknown, obs.Len(), xs); err != nil {
		return nil, fmt.Errorf("unknown outcomes: %w", err)
	}
	return s, nil
}

func scaledDensity(points []float64, total int, xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	if len(points) == 0 {
		return out, nil
	}
	kde, err := NewKDE(points)
	if err != nil {
		return nil, err
	}
	share := float64(len(points)) / float64(total)
	for i, x := range xs {
		out[i] = kde.Density(x) * share
	}
	return out, nil
}

// Support returns the density of all observations at X[i].
func (s *Smooth) Support(i int) float64 {
	return s.Known[i] + s.Unknown[i]
}

// Transfer returns the estimated P(Y = 1 | X[i]), NaN where the support is
// zero.
func (s *Smooth) Transfer(i int) float64 {
	supp := s.Support(i)
	if supp == 0 {
		return math.NaN()
	}
	return s.Known[i] / supp
}

// DevianceScores measure how far a fitted curve is from the nonparametric
// one, integrated over the grid with the trapezoidal rule. The weighted
// scores weight each point by the support.
type DevianceScores struct {
	MAE         float64
	MSE         float64
	WeightedMAE float64
	WeightedMSE float64
}

// Deviance scores t against the nonparametric transfer curve of obs on the
// ascending grid xs. Grid points with zero support are left out of the
// unweighted scores.
func Deviance(t Transfer, obs Observations, xs []float64) (*DevianceScores, error) {
	if len(xs) < 2 || !slices.IsSorted(xs) {
		return nil, fmt.Errorf("%w: deviance grid must be ascending with at least 2 points", ErrInvalidInput)
	}
	s, err := NewSmooth(obs, xs)
	if err != nil {
		return nil, err
	}

	absErr := make([]float64, len(xs))
	sqErr := make([]float64, len(xs))
	wAbsErr := make([]float64, len(xs))
	wSqErr := make([]float64, len(xs))
	for i, x := range xs {
		supp := s.Support(i)
		if supp == 0 {
			continue
		}
		d := s.Transfer(i) - t.At(x)
		absErr[i], sqErr[i] = math.Abs(d), d*d
		wAbsErr[i], wSqErr[i] = supp*absErr[i], supp*sqErr[i]
	}
	return &DevianceScores{
		MAE:         integrate.Trapezoidal(xs, absErr),
		MSE:         integrate.Trapezoidal(xs, sqErr),
		WeightedMAE: integrate.Trapezoidal(xs, wAbsErr),
		WeightedMSE: integrate.Trapezoidal(xs, wSqErr),
	}, nil
}
