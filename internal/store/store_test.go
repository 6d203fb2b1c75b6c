package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/go-oneinf"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(id string, p oneinf.Params, aic float64) oneinf.GroupResult {
	return oneinf.GroupResult{
		ID: id,
		Result: &oneinf.FitResult{
			Params:    p,
			NLL:       aic / 2,
			AIC:       aic,
			NumObs:    100,
			Converged: true,
			Status:    "GradientThreshold",
			StdErr:    []float64{0.1, 0.2, 0.3},
		},
	}
}

func TestSaveAndListFits(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	run, err := s.CreateRun(ctx, oneinf.OneInflated, oneinf.LinkLogit, oneinf.BFGS)
	require.NoError(t, err)
	assert.Equal(t, "one-inflated", run.Model)

	p := oneinf.Params{InflateCoef: -1, RegConstCoef: -3, RegZipfCoef: 1}
	failed := result("b", p, 12)
	failed.Result.Converged = false
	failed.Err = oneinf.ErrNotConverged
	results := []oneinf.GroupResult{result("a", p, 10), failed, {ID: "c"}}
	require.NoError(t, s.SaveResults(ctx, run.ID, results))

	fits, err := s.ListFits(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, fits, 2)
	assert.Equal(t, "a", fits[0].Respondent)
	assert.Equal(t, p, fits[0].Params())
	assert.True(t, fits[0].Converged)
	assert.Empty(t, fits[0].Err)
	assert.False(t, fits[1].Converged)
	assert.Equal(t, oneinf.ErrNotConverged.Error(), fits[1].Err)
}

func TestLogisticInflationStoredAsNull(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	run, err := s.CreateRun(ctx, oneinf.Logistic, oneinf.LinkLogit, oneinf.Newton)
	require.NoError(t, err)

	require.NoError(t, s.SaveFit(ctx, Fit{
		RunID:        run.ID,
		Respondent:   "r",
		InflateCoef:  math.Inf(-1),
		RegConstCoef: 0.5,
		RegZipfCoef:  0.25,
		NLL:          3,
		AIC:          10,
		NumObs:       5,
		Converged:    true,
		InflateSE:    math.NaN(),
		RegConstSE:   0.1,
		RegZipfSE:    0.05,
		Status:       "GradientThreshold",
	}))

	var valid bool
	require.NoError(t, s.db.QueryRow(`SELECT inflate_coef IS NOT NULL FROM fits`).Scan(&valid))
	assert.False(t, valid)

	fits, err := s.ListFits(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, fits, 1)
	assert.True(t, math.IsInf(fits[0].InflateCoef, -1))
	assert.True(t, math.IsNaN(fits[0].InflateSE))
	assert.Equal(t, 0.1, fits[0].RegConstSE)
	assert.Equal(t, 0.05, fits[0].RegZipfSE)
	assert.Equal(t, "GradientThreshold", fits[0].Status)
}

func TestStdErrAndStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	run, err := s.CreateRun(ctx, oneinf.OneInflated, oneinf.LinkCloglog, oneinf.BFGS)
	require.NoError(t, err)

	p := oneinf.Params{InflateCoef: -1, RegConstCoef: -3, RegZipfCoef: 1}
	logistic := result("b", oneinf.Params{InflateCoef: math.Inf(-1), RegConstCoef: 1, RegZipfCoef: 2}, 8)
	logistic.Result.Model = oneinf.Logistic
	logistic.Result.StdErr = []float64{0.4, math.NaN()}
	require.NoError(t, s.SaveResults(ctx, run.ID, []oneinf.GroupResult{result("a", p, 10), logistic}))

	fits, err := s.ListFits(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, fits, 2)

	a := fits[0]
	assert.Equal(t, 0.1, a.InflateSE)
	assert.Equal(t, 0.2, a.RegConstSE)
	assert.Equal(t, 0.3, a.RegZipfSE)
	assert.Equal(t, "GradientThreshold", a.Status)

	b := fits[1]
	assert.True(t, math.IsNaN(b.InflateSE))
	assert.Equal(t, 0.4, b.RegConstSE)
	assert.True(t, math.IsNaN(b.RegZipfSE))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "cloglog", got.Link)
	tr, err := got.Transfer(a)
	require.NoError(t, err)
	assert.Equal(t, oneinf.Transfer{Model: oneinf.OneInflated, Link: oneinf.LinkCloglog, Params: p}, tr)
}

func TestListRunsOrdersWithinSecond(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for id, at := range map[string]time.Time{
		"on-second":    base,
		"tenth-after":  base.Add(100 * time.Millisecond),
		"second-after": base.Add(time.Second),
	} {
		_, err := s.db.Exec(`INSERT INTO runs (run_id, model, link, method, created_at) VALUES (?, 'logistic', 'logit', 'bfgs', ?)`,
			id, at.Format(createdLayout))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "second-after", runs[0].ID)
	assert.Equal(t, "tenth-after", runs[1].ID)
	assert.Equal(t, "on-second", runs[2].ID)
	assert.True(t, runs[2].CreatedAt.Equal(base))
}

func TestCompareAIC(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	var p oneinf.Params

	a, err := s.CreateRun(ctx, oneinf.OneInflated, oneinf.LinkLogit, oneinf.BFGS)
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, oneinf.Logistic, oneinf.LinkProbit, oneinf.BFGS)
	require.NoError(t, err)

	require.NoError(t, s.SaveResults(ctx, a.ID, []oneinf.GroupResult{
		result("r1", p, 10), result("r2", p, 20), result("r3", p, 30), result("only-a", p, 1),
	}))
	require.NoError(t, s.SaveResults(ctx, b.ID, []oneinf.GroupResult{
		result("r1", p, 11), result("r2", p, 19), result("r3", p, 31),
	}))

	c, err := s.CompareAIC(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Shared)
	assert.InDelta(t, 200.0/3, c.FirstBetter, 1e-9)
	assert.InDelta(t, 100.0/3, c.SecondBetter, 1e-9)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.ListFits(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.CompareAIC(ctx, "missing", "other")
	assert.ErrorIs(t, err, ErrNotFound)
}
