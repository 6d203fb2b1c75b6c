package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/go-oneinf"
)

func TestReadCSV(t *testing.T) {
	in := `respondent,word,zipf,known
b,cat,5.1,true
a,dog,4.2,0
b,ox,2.0,False
a,eel,3.3,1
`
	groups, err := ReadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "a", groups[0].ID)
	assert.Equal(t, []int{0, 1}, groups[0].Obs.Y)
	assert.Equal(t, []float64{4.2, 3.3}, groups[0].Obs.X)
	assert.Equal(t, "b", groups[1].ID)
	assert.Equal(t, []int{1, 0}, groups[1].Obs.Y)
	require.NoError(t, groups[1].Obs.Validate())
}

func TestReadCSVScoreThreshold(t *testing.T) {
	in := "respondent,zipf,score\n1,3.0,5\n1,2.0,4\n1,1.0,7\n"
	groups, err := ReadCSV(strings.NewReader(in), Options{ScoreColumn: "score", ScoreThreshold: 5})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{1, 0, 1}, groups[0].Obs.Y)
}

func TestReadCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "respondent,zipf\na,1\n",
		"bad float":      "respondent,zipf,known\na,x,1\n",
		"bad outcome":    "respondent,zipf,known\na,1,2\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in), Options{})
			assert.Error(t, err)
		})
	}

	_, err := ReadCSV(strings.NewReader("respondent,zipf,known\na,1,maybe\n"), Options{})
	assert.ErrorIs(t, err, oneinf.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadCSVNonFinite(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opts Options
		col  string
	}{
		{"nan zipf", "respondent,zipf,known\na,1,1\na,NaN,0\n", Options{}, `"zipf"`},
		{"inf zipf", "respondent,zipf,known\na,1,1\na,-Inf,0\n", Options{}, `"zipf"`},
		{"nan score", "respondent,zipf,score\na,1,7\na,2,NaN\n", Options{ScoreColumn: "score", ScoreThreshold: 5}, `"score"`},
		{"inf score", "respondent,zipf,score\na,1,7\na,2,+Inf\n", Options{ScoreColumn: "score", ScoreThreshold: 5}, `"score"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			groups, err := ReadCSV(strings.NewReader(c.in), c.opts)
			require.Error(t, err)
			assert.Nil(t, groups)
			assert.ErrorIs(t, err, oneinf.ErrInvalidInput)
			assert.Contains(t, err.Error(), "line 3")
			assert.Contains(t, err.Error(), c.col)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	groups := []oneinf.Group{
		{ID: "r1", Obs: oneinf.Observations{Y: []int{1, 0}, X: []float64{0.25, 6.5}}},
		{ID: "r2", Obs: oneinf.Observations{Y: []int{0}, X: []float64{-1}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, groups))

	got, err := ReadCSV(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, groups, got)
}
