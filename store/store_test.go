package store

import (
	"context"
	"math"
	"testing"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a SeriesStore keeping the last batch.
type recorder struct{ points []*Point }

func (r *recorder) InsertBulk(_ context.Context, points []*Point) error {
	r.points = append(r.points, points...)
	return nil
}

func (r *recorder) GetBySeries(_ context.Context, runID uuid.UUID, series string) ([]*Point, error) {
	var res []*Point
	for _, p := range r.points {
		if p.RunID == runID && p.Series == series {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return nil, ErrNotFound
	}
	return res, nil
}

func TestPoints_Frame(t *testing.T) {
	dates := []date.Date{date.MustParse("2021-01-07"), date.MustParse("2021-01-08"), date.MustParse("2021-01-11")}
	f := wealth.NewFrame(dates)
	require.NoError(t, f.SetColumn("B", []float64{1, 2, math.NaN()}))
	require.NoError(t, f.SetColumn("A", []float64{math.NaN(), math.NaN(), 6}))

	runID := uuid.New()
	points := Points(runID, "wealth", f)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.NoError(t, p.Validate())
	}

	got := Frame(points)
	assert.Equal(t, []string{"B", "A"}, got.Columns(), "column order follows the index")
	assert.True(t, f.Equal(got, 0))

	// a date without any value is not restored.
	g := wealth.NewFrame(dates, "A")
	g.Set(2, "A", 1)
	assert.Equal(t, 1, Frame(Points(runID, "wealth", g)).Len())
}

func TestPoint_Validate(t *testing.T) {
	valid := Point{RunID: uuid.New(), Series: "wealth", Date: date.MustParse("2021-01-07"), Column: "XDEM", Value: 1}
	assert.NoError(t, valid.Validate())

	testCases := map[string]func(p *Point){
		"no run":   func(p *Point) { p.RunID = uuid.Nil },
		"no date":  func(p *Point) { p.Date = date.Date{} },
		"missing":  func(p *Point) { p.Value = math.NaN() },
		"no serie": func(p *Point) { p.Series = "" },
	}
	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}
}

func TestSaveRun(t *testing.T) {
	dates := []date.Date{date.MustParse("2021-01-07")}
	w := wealth.NewFrame(dates, "XDEM")
	w.Set(0, "XDEM", 1000)
	run := &wealth.Run{ID: uuid.New(), Wealth: w, Weights: wealth.NewFrame(dates, "XDEM")}

	r := &recorder{}
	n, err := SaveRun(context.Background(), r, run)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := LoadSeries(context.Background(), r, run.ID, "wealth")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.At(0, "XDEM"))

	_, err = LoadSeries(context.Background(), r, run.ID, "weights")
	assert.ErrorIs(t, err, ErrNotFound)
}
