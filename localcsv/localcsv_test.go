package localcsv

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
)

func TestRead(t *testing.T) {
	input := "Date;Close;Volume\n07/01/2021;52,10;100\n08/01/2021;;0\n11/01/2021;1.052,5;3\n"
	s, err := Read(strings.NewReader(input), "4GLD")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	testCases := []struct {
		i    int
		date string
		want float64
	}{
		{0, "2021-01-07", 52.1},
		{1, "2021-01-08", math.NaN()},
		{2, "2021-01-11", 1052.5},
	}
	for _, tc := range testCases {
		on, v := s.Prices.At(tc.i)
		if on != date.MustParse(tc.date) {
			t.Errorf("date[%d] = %s, want %s", tc.i, on, tc.date)
		}
		if math.IsNaN(tc.want) != math.IsNaN(v) || (!math.IsNaN(v) && v != tc.want) {
			t.Errorf("price[%d] = %v, want %v", tc.i, v, tc.want)
		}
	}
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "empty"},
		{name: "no date column", input: "Day;Close\n", want: "no Date"},
		{name: "bad date", input: "Date;Close\n2021-01-07;1\n", want: "line 2"},
		{name: "bad price", input: "Date;Close\n07/01/2021;abc\n", want: "invalid price"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input), "X")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Read() error = %v, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	testCases := map[string]string{
		"52,10":     "52.1",
		"1.234,56":  "1234.56",
		"1 234,5":   "1234.5",
		"282.4":     "282.4",
		"-0,5":      "-0.5",
	}
	for in, want := range testCases {
		got, err := ParseDecimal(in)
		if err != nil || got.String() != want {
			t.Errorf("ParseDecimal(%q) = %v, %v, want %s", in, got, err, want)
		}
	}
}

func TestProvider_SaveFetch(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "prices"))
	asset := wealth.NewAsset("4gld", "Gold", wealth.SourceCSV)
	s := wealth.NewPriceSeries("4GLD").
		Append(date.MustParse("2021-01-07"), 52.1).
		Append(date.MustParse("2021-01-08"), 0).
		Append(date.MustParse("2021-01-11"), 53)

	if err := p.Save(asset, s); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	content, err := os.ReadFile(p.Path(asset))
	if err != nil {
		t.Fatal(err)
	}
	want := "Date;Close\n07/01/2021;52,1\n08/01/2021;\n11/01/2021;53\n"
	if string(content) != want {
		t.Errorf("file =\n%s\nwant:\n%s", content, want)
	}

	got, err := p.Fetch(context.Background(), asset)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, got); err != nil {
		t.Fatal(err)
	}
	if buf.String() != want {
		t.Errorf("fetched series differs:\n%s", buf.String())
	}
}
