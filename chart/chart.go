// Package chart draws frames of rolling statistics and cumulative wealth as PNG line charts.
package chart

import (
	"errors"
	"fmt"

	"github.com/etnz/wealth"
	"github.com/vicanso/go-charts/v2"
)

// ErrNoData is returned when a frame has no defined value to draw.
var ErrNoData = errors.New("no data to chart")

// Options configures a chart.
type Options struct {
	Title    string
	Subtitle string
	Width    int // 900 by default
	Height   int // 500 by default
	Percent  bool
}

// Line renders every column of f with at least one defined value as a line, and
// returns the PNG bytes.
//
// Missing values are carried forward from the last defined one, leading missing
// values take the first defined one.
func Line(f *wealth.Frame, opts Options) ([]byte, error) {
	var (
		names  []string
		values [][]float64
	)
	for _, c := range f.Columns() {
		line, ok := fill(f.Column(c))
		if !ok {
			continue
		}
		if opts.Percent {
			for i := range line {
				line[i] *= 100
			}
		}
		names = append(names, c)
		values = append(values, line)
	}
	if len(values) == 0 || f.Len() < 2 {
		return nil, ErrNoData
	}

	layout := "2006-01-02"
	if f.Len() > 60 {
		layout = "Jan '06"
	}
	labels := make([]string, f.Len())
	for i := range labels {
		labels[i] = f.Date(i).Format(layout)
	}

	split := 6
	if len(labels) <= 30 {
		split = max(len(labels)/3, 1)
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 900
	}
	if height == 0 {
		height = 500
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(opts.Title, opts.Subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Left: charts.PositionRight}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// fill returns a copy of values without missing values, and false if none is defined.
func fill(values []float64) ([]float64, bool) {
	first := -1
	for i, v := range values {
		if !wealth.Missing(v) {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, false
	}
	res := make([]float64, len(values))
	last := values[first]
	for i, v := range values {
		if !wealth.Missing(v) {
			last = v
		}
		res[i] = last
	}
	return res, true
}
