// Package store persists fit runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/clane9/go-oneinf"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	model       TEXT NOT NULL,
	link        TEXT NOT NULL DEFAULT 'logit',
	method      TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fits (
	run_id          TEXT NOT NULL,
	respondent      TEXT NOT NULL,
	inflate_coef    REAL,
	reg_const_coef  REAL NOT NULL,
	reg_zipf_coef   REAL NOT NULL,
	inflate_se      REAL,
	reg_const_se    REAL,
	reg_zipf_se     REAL,
	nll             REAL NOT NULL,
	aic             REAL NOT NULL,
	n_obs           INTEGER NOT NULL,
	converged       INTEGER NOT NULL,
	status          TEXT NOT NULL DEFAULT '',
	err             TEXT,
	PRIMARY KEY (run_id, respondent),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// createdLayout is fixed width so created_at sorts as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages fit runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// A Run groups the fits of one invocation.
type Run struct {
	ID        string
	Model     string
	Link      string
	Method    string
	CreatedAt time.Time
}

// Transfer returns the fitted curve of f under the run's model and link.
func (r Run) Transfer(f Fit) (oneinf.Transfer, error) {
	m, err := oneinf.ParseModel(r.Model)
	if err != nil {
		return oneinf.Transfer{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	l, err := oneinf.ParseLink(r.Link)
	if err != nil {
		return oneinf.Transfer{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return oneinf.Transfer{Model: m, Link: l, Params: f.Params()}, nil
}

// A Fit is one respondent's stored result. InflateCoef is -Inf for the
// logistic model. Standard errors are NaN where the model has no such
// parameter or the Hessian was not positive definite.
type Fit struct {
	RunID        string
	Respondent   string
	InflateCoef  float64
	RegConstCoef float64
	RegZipfCoef  float64
	InflateSE    float64
	RegConstSE   float64
	RegZipfSE    float64
	NLL          float64
	AIC          float64
	NumObs       int
	Converged    bool
	Status       string
	Err          string
}

// NewFit builds the stored form of a fit result.
func NewFit(runID, respondent string, res *oneinf.FitResult, fitErr error) Fit {
	f := Fit{
		RunID:        runID,
		Respondent:   respondent,
		InflateCoef:  res.Params.InflateCoef,
		RegConstCoef: res.Params.RegConstCoef,
		RegZipfCoef:  res.Params.RegZipfCoef,
		InflateSE:    math.NaN(),
		RegConstSE:   math.NaN(),
		RegZipfSE:    math.NaN(),
		NLL:          res.NLL,
		AIC:          res.AIC,
		NumObs:       res.NumObs,
		Converged:    res.Converged,
		Status:       res.Status,
	}
	for i, name := range res.Model.ParamNames() {
		if i >= len(res.StdErr) {
			break
		}
		switch name {
		case "inflate_coef":
			f.InflateSE = res.StdErr[i]
		case "reg_const_coef":
			f.RegConstSE = res.StdErr[i]
		case "reg_zipf_coef":
			f.RegZipfSE = res.StdErr[i]
		}
	}
	if fitErr != nil {
		f.Err = fitErr.Error()
	}
	return f
}

// Params returns the fitted coefficients.
func (f Fit) Params() oneinf.Params {
	return oneinf.Params{InflateCoef: f.InflateCoef, RegConstCoef: f.RegConstCoef, RegZipfCoef: f.RegZipfCoef}
}

// CreateRun records a new run.
func (s *Store) CreateRun(ctx context.Context, model oneinf.Model, link oneinf.Link, method oneinf.Method) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Model:     model.String(),
		Link:      link.String(),
		Method:    string(method),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, model, link, method, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Link, run.Method, run.CreatedAt.Format(createdLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, model, link, method, created_at FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, model, link, method, created_at FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run     Run
		created string
	)
	if err := sc.Scan(&run.ID, &run.Model, &run.Link, &run.Method, &created); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(createdLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	return run, nil
}

// SaveResults stores the fits of a FitGroups call in one transaction.
// Groups without a result are skipped.
func (s *Store) SaveResults(ctx context.Context, runID string, results []oneinf.GroupResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		if r.Result == nil {
			continue
		}
		if err := insertFit(ctx, tx, NewFit(runID, r.ID, r.Result, r.Err)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveFit stores a single fit.
func (s *Store) SaveFit(ctx context.Context, f Fit) error {
	return insertFit(ctx, s.db, f)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFit(ctx context.Context, db execer, f Fit) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO fits (run_id, respondent, inflate_coef, reg_const_coef, reg_zipf_coef,
		                   inflate_se, reg_const_se, reg_zipf_se, nll, aic, n_obs, converged, status, err)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Respondent, nullIfNonFinite(f.InflateCoef), f.RegConstCoef, f.RegZipfCoef,
		nullIfNonFinite(f.InflateSE), nullIfNonFinite(f.RegConstSE), nullIfNonFinite(f.RegZipfSE),
		f.NLL, f.AIC, f.NumObs, f.Converged, f.Status, nullIfEmpty(f.Err),
	)
	if err != nil {
		return fmt.Errorf("save fit %s/%s: %w", f.RunID, f.Respondent, err)
	}
	return nil
}

// ListFits returns a run's fits ordered by respondent.
func (s *Store) ListFits(ctx context.Context, runID string) ([]Fit, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, respondent, inflate_coef, reg_const_coef, reg_zipf_coef,
		        inflate_se, reg_const_se, reg_zipf_se, nll, aic, n_obs, converged, status, err
		 FROM fits WHERE run_id = ? ORDER BY respondent`, runID)
	if err != nil {
		return nil, fmt.Errorf("list fits: %w", err)
	}
	defer rows.Close()

	var fits []Fit
	for rows.Next() {
		var (
			f                          Fit
			inflate                    sql.NullFloat64
			inflateSE, constSE, zipfSE sql.NullFloat64
			errText                    sql.NullString
		)
		if err := rows.Scan(&f.RunID, &f.Respondent, &inflate, &f.RegConstCoef, &f.RegZipfCoef,
			&inflateSE, &constSE, &zipfSE, &f.NLL, &f.AIC, &f.NumObs, &f.Converged, &f.Status, &errText); err != nil {
			return nil, fmt.Errorf("scan fit: %w", err)
		}
		f.InflateCoef = math.Inf(-1)
		if inflate.Valid {
			f.InflateCoef = inflate.Float64
		}
		f.InflateSE = floatOrNaN(inflateSE)
		f.RegConstSE = floatOrNaN(constSE)
		f.RegZipfSE = floatOrNaN(zipfSE)
		f.Err = errText.String
		fits = append(fits, f)
	}
	return fits, rows.Err()
}

// Comparison summarizes which of two runs fits shared respondents better.
type Comparison struct {
	Shared int
	// Percentages of shared respondents where that run has the lower AIC.
	FirstBetter  float64
	SecondBetter float64
}

// CompareAIC compares two runs on the respondents they share.
func (s *Store) CompareAIC(ctx context.Context, runA, runB string) (Comparison, error) {
	for _, id := range []string{runA, runB} {
		if _, err := s.GetRun(ctx, id); err != nil {
			return Comparison{}, err
		}
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN a.aic < b.aic THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN b.aic < a.aic THEN 1 ELSE 0 END), 0)
		 FROM fits a JOIN fits b ON a.respondent = b.respondent
		 WHERE a.run_id = ? AND b.run_id = ?`, runA, runB)

	var shared, first, second int
	if err := row.Scan(&shared, &first, &second); err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}
	c := Comparison{Shared: shared}
	if shared > 0 {
		c.FirstBetter = 100 * float64(first) / float64(shared)
		c.SecondBetter = 100 * float64(second) / float64(shared)
	}
	return c, nil
}

// nullIfNonFinite stores -Inf inflation and NaN standard errors as NULL.
func nullIfNonFinite(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
