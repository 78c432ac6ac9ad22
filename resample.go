package wealth

import (
	"fmt"
	"strings"

	"github.com/etnz/wealth/date"
)

// Frequency is a resampling frequency for return series.
type Frequency string

const (
	// Native keeps the native (daily) observations.
	Native        Frequency = ""
	Weekly        Frequency = "W" // weeks ending on Sunday
	Monthly       Frequency = "M" // calendar months, labelled by their last day
	BusinessDaily Frequency = "B" // weekend observations fold into the previous Friday
)

// ParseFrequency parses a frequency code or name.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "native", "daily":
		return Native, nil
	case "w", "week", "weekly":
		return Weekly, nil
	case "m", "month", "monthly":
		return Monthly, nil
	case "b", "business", "business-daily":
		return BusinessDaily, nil
	default:
		return Native, fmt.Errorf("unknown resampling frequency %q, want none, W, M or B", s)
	}
}

func (f Frequency) String() string {
	if f == Native {
		return "none"
	}
	return string(f)
}

// PeriodsPerYear returns the annualization factor of returns observed at that frequency.
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case Weekly:
		return 52
	case Monthly:
		return 12
	default:
		return 252
	}
}

// Bucket returns the label of the bucket containing d.
func (f Frequency) Bucket(d date.Date) date.Date {
	switch f {
	case Weekly:
		return d.EndOf(date.Weekly)
	case Monthly:
		return d.EndOf(date.Monthly)
	case BusinessDaily:
		return d.BusinessDay()
	default:
		return d
	}
}

// Compound aggregates returns as (1+r1)(1+r2)...-1, ignoring missing ones.
// It reports false when no return is defined.
func Compound(returns []float64) (float64, bool) {
	growth, n := 1.0, 0
	for _, r := range returns {
		if Missing(r) {
			continue
		}
		growth *= 1 + r
		n++
	}
	if n == 0 {
		return 0, false
	}
	return growth - 1, true
}

// Resample aggregates returns into buckets of frequency f by compounding.
//
// An asset with no observation in a bucket gets a missing value there, a bucket
// with no observation at all is excluded.
func Resample(returns *Frame, f Frequency) *Frame {
	if f == Native {
		return returns.Clone()
	}

	// rows are sorted, so are bucket labels: split into consecutive groups.
	var labels []date.Date
	var groups [][]int
	for i, on := range returns.dates {
		label := f.Bucket(on)
		if n := len(labels); n == 0 || labels[n-1] != label {
			labels = append(labels, label)
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], i)
	}

	res := NewFrame(labels, returns.columns...)
	buf := make([]float64, 0, 32)
	for c := range returns.columns {
		for g, rows := range groups {
			buf = buf[:0]
			for _, i := range rows {
				buf = append(buf, returns.data[c][i])
			}
			if v, ok := Compound(buf); ok {
				res.data[c][g] = v
			}
		}
	}

	// exclude buckets without any observation
	var keep []int
	for g := range labels {
		for c := range res.columns {
			if !Missing(res.data[c][g]) {
				keep = append(keep, g)
				break
			}
		}
	}
	return res.selectRows(keep)
}
