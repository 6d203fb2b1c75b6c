// Package dataset reads and writes per-respondent observations as CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/clane9/go-oneinf"
)

// Options name the columns of a dataset. Zero values select the defaults.
type Options struct {
	RespondentColumn string // "respondent"
	XColumn          string // "zipf"
	KnownColumn      string // "known"
	// ScoreColumn, if set, replaces KnownColumn: an outcome is 1 when the
	// score is at least ScoreThreshold.
	ScoreColumn    string
	ScoreThreshold float64
}

func (o Options) withDefaults() Options {
	if o.RespondentColumn == "" {
		o.RespondentColumn = "respondent"
	}
	if o.XColumn == "" {
		o.XColumn = "zipf"
	}
	if o.KnownColumn == "" {
		o.KnownColumn = "known"
	}
	return o
}

// ReadCSV reads a headed CSV and groups rows by respondent. Groups are
// sorted by ID; rows keep file order within a group.
func ReadCSV(r io.Reader, opts Options) ([]oneinf.Group, error) {
	opts = opts.withDefaults()
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	outcome := opts.KnownColumn
	if opts.ScoreColumn != "" {
		outcome = opts.ScoreColumn
	}
	idx := make([]int, 3)
	for i, name := range []string{opts.RespondentColumn, opts.XColumn, outcome} {
		j, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("read csv: missing column %q", name)
		}
		idx[i] = j
	}

	byID := make(map[string]*oneinf.Observations)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		id := rec[idx[0]]
		x, err := parseFinite(rec[idx[1]])
		if err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", line, opts.XColumn, err)
		}
		var y int
		if opts.ScoreColumn != "" {
			score, err := parseFinite(rec[idx[2]])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, opts.ScoreColumn, err)
			}
			if score >= opts.ScoreThreshold {
				y = 1
			}
		} else {
			y, err = parseOutcome(rec[idx[2]])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, opts.KnownColumn, err)
			}
		}

		obs, ok := byID[id]
		if !ok {
			obs = &oneinf.Observations{}
			byID[id] = obs
		}
		obs.Y = append(obs.Y, y)
		obs.X = append(obs.X, x)
	}

	groups := make([]oneinf.Group, 0, len(byID))
	for id, obs := range byID {
		groups = append(groups, oneinf.Group{ID: id, Obs: *obs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// parseFinite rejects NaN and infinities, which strconv accepts.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", oneinf.ErrInvalidInput, s)
	}
	return v, nil
}

func parseOutcome(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes":
		return 1, nil
	case "0", "false", "f", "no":
		return 0, nil
	}
	return 0, fmt.Errorf("%w: outcome %q is not 0/1 or a boolean", oneinf.ErrInvalidInput, s)
}

// WriteCSV writes groups with the default column names.
func WriteCSV(w io.Writer, groups []oneinf.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"respondent", "zipf", "known"}); err != nil {
		return err
	}
	for _, g := range groups {
		for i, y := range g.Obs.Y {
			rec := []string{g.ID, strconv.FormatFloat(g.Obs.X[i], 'g', -1, 64), strconv.Itoa(y)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
