package wealth

import (
	"fmt"
	"math"
	"slices"

	"github.com/etnz/wealth/date"
)

// Frame is a dense table of float64 values indexed by date (rows) and by column name.
//
// Missing values are NaN. Rows are in chronological order and columns keep their
// insertion order.
type Frame struct {
	dates   []date.Date
	columns []string
	index   map[string]int
	data    [][]float64 // data[column][row]
}

// NewFrame returns a frame with the given dates and columns, filled with NaN.
func NewFrame(dates []date.Date, columns ...string) *Frame {
	f := &Frame{
		dates: slices.Clone(dates),
		index: make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		f.addColumn(c, nil)
	}
	return f
}

// Missing reports whether v is a missing value.
func Missing(v float64) bool { return math.IsNaN(v) }

// nans returns a slice of n missing values.
func nans(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

func (f *Frame) addColumn(name string, values []float64) {
	if values == nil {
		values = nans(len(f.dates))
	}
	if i, ok := f.index[name]; ok {
		f.data[i] = values
		return
	}
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
	f.data = append(f.data, values)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Dates returns a copy of the row dates.
func (f *Frame) Dates() []date.Date { return slices.Clone(f.dates) }

// Date returns the date of row i.
func (f *Frame) Date(i int) date.Date { return f.dates[i] }

// Columns returns a copy of the column names.
func (f *Frame) Columns() []string { return slices.Clone(f.columns) }

// Has reports whether the frame has a column named name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the values of a column, or nil if it does not exist.
func (f *Frame) Column(name string) []float64 {
	i, ok := f.index[name]
	if !ok {
		return nil
	}
	return slices.Clone(f.data[i])
}

// col returns the values of a column without copying.
func (f *Frame) col(name string) []float64 { return f.data[f.index[name]] }

// At returns the value of a column at row i, NaN if the column does not exist.
func (f *Frame) At(i int, name string) float64 {
	c, ok := f.index[name]
	if !ok {
		return math.NaN()
	}
	return f.data[c][i]
}

// Set sets the value of a column at row i, creating the column if needed.
func (f *Frame) Set(i int, name string, v float64) {
	if !f.Has(name) {
		f.addColumn(name, nil)
	}
	f.data[f.index[name]][i] = v
}

// Row returns the row index of a date.
func (f *Frame) Row(on date.Date) (int, bool) {
	return slices.BinarySearchFunc(f.dates, on, date.Date.Compare)
}

// SetColumn adds or replaces a column. values must have one value per row.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(f.dates))
	}
	f.addColumn(name, slices.Clone(values))
	return nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	g := NewFrame(f.dates)
	for i, c := range f.columns {
		g.addColumn(c, slices.Clone(f.data[i]))
	}
	return g
}

// selectRows returns a new frame made of the given rows, in order.
func (f *Frame) selectRows(rows []int) *Frame {
	dates := make([]date.Date, len(rows))
	for j, i := range rows {
		dates[j] = f.dates[i]
	}
	g := NewFrame(dates)
	for c, name := range f.columns {
		values := make([]float64, len(rows))
		for j, i := range rows {
			values[j] = f.data[c][i]
		}
		g.addColumn(name, values)
	}
	return g
}

// Window returns the rows whose date is in r.
func (f *Frame) Window(r date.Range) *Frame {
	var rows []int
	for i, on := range f.dates {
		if r.Contains(on) {
			rows = append(rows, i)
		}
	}
	return f.selectRows(rows)
}

// Drop returns a frame without the given columns. Unknown columns are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	g := NewFrame(f.dates)
	for i, c := range f.columns {
		if slices.Contains(names, c) {
			continue
		}
		g.addColumn(c, slices.Clone(f.data[i]))
	}
	return g
}

// Select returns a frame with only the given columns, in the given order. Unknown columns are ignored.
func (f *Frame) Select(names ...string) *Frame {
	g := NewFrame(f.dates)
	for _, c := range names {
		if i, ok := f.index[c]; ok {
			g.addColumn(c, slices.Clone(f.data[i]))
		}
	}
	return g
}

// DropMissing returns the rows where no column is missing.
func (f *Frame) DropMissing() *Frame {
	var rows []int
	for i := range f.dates {
		complete := true
		for c := range f.columns {
			if Missing(f.data[c][i]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	return f.selectRows(rows)
}

// Equal reports whether f and g have the same dates, columns and values within tol.
// Two missing values are equal.
func (f *Frame) Equal(g *Frame, tol float64) bool {
	if !slices.Equal(f.dates, g.dates) || !slices.Equal(f.columns, g.columns) {
		return false
	}
	for c := range f.data {
		for i, v := range f.data[c] {
			w := g.data[c][i]
			if Missing(v) != Missing(w) {
				return false
			}
			if !Missing(v) && math.Abs(v-w) > tol {
				return false
			}
		}
	}
	return true
}
