package date

import (
	"slices"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2021-01-06", New(2021, time.January, 6), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"07-01-2021", New(2021, time.January, 7), false},
		{"28/03/2021", New(2021, time.March, 28), false},
		{"2017-12", New(2017, time.December, 1), false},
		{"2017-13", Date{}, true},
		{"yesterday", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseRelative(t *testing.T) {
	if got, want := MustParse("-1d"), Today().Add(-1); got != want {
		t.Errorf("Parse(-1d) = %v, want %v", got, want)
	}
	if got, want := MustParse("+2w"), Today().Add(14); got != want {
		t.Errorf("Parse(+2w) = %v, want %v", got, want)
	}
}

func TestUnmarshalYAML(t *testing.T) {
	var v struct {
		Start Date `yaml:"start"`
		End   Date `yaml:"end"`
	}
	if err := yaml.Unmarshal([]byte("start: 2017-12\nend: 31/12/2021\n"), &v); err != nil {
		t.Fatalf("yaml.Unmarshal() unexpected error = %v", err)
	}
	if want := New(2017, time.December, 1); v.Start != want {
		t.Errorf("start = %v, want %v", v.Start, want)
	}
	if want := New(2021, time.December, 31); v.End != want {
		t.Errorf("end = %v, want %v", v.End, want)
	}
}

func TestUnion(t *testing.T) {
	a := []Date{MustParse("2021-01-04"), MustParse("2021-01-05"), MustParse("2021-01-07")}
	b := []Date{MustParse("2021-01-02"), MustParse("2021-01-05"), MustParse("2021-01-08")}
	want := []Date{
		MustParse("2021-01-02"), MustParse("2021-01-04"), MustParse("2021-01-05"),
		MustParse("2021-01-07"), MustParse("2021-01-08"),
	}
	if got := Union(a, b); !slices.Equal(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	// repeated dates, like two trades of the same day.
	c := []Date{MustParse("2021-01-05"), MustParse("2021-01-05"), MustParse("2021-01-05"), MustParse("2021-01-06")}
	want = []Date{MustParse("2021-01-04"), MustParse("2021-01-05"), MustParse("2021-01-06"), MustParse("2021-01-07")}
	if got := Union(a[:1], c, a[2:]); !slices.Equal(got, want) {
		t.Errorf("Union() with repeated dates = %v, want %v", got, want)
	}
	if got := Union(c); !slices.Equal(got, want[1:3]) {
		t.Errorf("Union() of a single series = %v, want %v", got, want[1:3])
	}
	if got := Union(); len(got) != 0 {
		t.Errorf("Union() of nothing = %v, want empty", got)
	}
}
