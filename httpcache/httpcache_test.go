package httpcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/wealth/date"
	"github.com/rs/zerolog"
)

func TestTransport_CachesPerPeriod(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		fmt.Fprintf(w, `{"n":%d}`, n)
	}))
	defer srv.Close()

	today := date.New(2024, 2, 13)
	tr := New(t.TempDir(), zerolog.Nop())
	tr.today = func() date.Date { return today }
	client := tr.Client()
	ctx := context.Background()

	var got struct{ N int }
	for range 3 {
		if err := GetJSON(ctx, client, srv.URL+"/eod", &got); err != nil {
			t.Fatalf("GetJSON() failed: %v", err)
		}
	}
	if got.N != 1 || hits.Load() != 1 {
		t.Errorf("server hit %d times (last n=%d), want a single hit", hits.Load(), got.N)
	}

	// a new day expires the entry.
	today = today.Add(1)
	if err := GetJSON(ctx, client, srv.URL+"/eod", &got); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if got.N != 2 {
		t.Errorf("n = %d after a day, want 2", got.N)
	}
}

func TestTransport_DoesNotCacheErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(t.TempDir(), zerolog.Nop()).Client()
	for range 2 {
		_, err := Get(context.Background(), client, srv.URL, nil)
		var status *StatusError
		if !errors.As(err, &status) || status.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("Get() error = %v, want a 429 StatusError", err)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}
