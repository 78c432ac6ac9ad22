// Package httpcache provides an http.RoundTripper caching successful responses on disk
// for a calendar period, and small helpers to query JSON APIs through it.
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/wealth/date"
	"github.com/rs/zerolog"
)

// Transport implements a simple disk cache for HTTP responses.
//
// Entries are keyed by the current period (a day by default), so the cache expires
// when the period changes.
type Transport struct {
	Base   http.RoundTripper // http.DefaultTransport if nil
	Dir    string            // os.TempDir() if empty
	Period date.Period
	Log    zerolog.Logger

	today func() date.Date
}

// New returns a Transport with a daily expiry in dir.
func New(dir string, log zerolog.Logger) *Transport {
	return &Transport{Dir: dir, Period: date.Daily, Log: log}
}

// Client returns an http.Client using t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If none is found, it performs the request and caches
// the response when it is successful.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := t.key(req)
	if cached, err := t.get(key, req); err == nil {
		t.Log.Debug().Str("url", redact(req)).Msg("cache hit")
		return cached, nil
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.Log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("http request")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := t.put(key, resp); err != nil {
		t.Log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) dir() string {
	if t.Dir == "" {
		return os.TempDir()
	}
	return t.Dir
}

func (t *Transport) key(req *http.Request) string {
	today := date.Today()
	if t.today != nil {
		today = t.today()
	}
	rangeID := date.NewRange(today, t.Period).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	return fmt.Sprintf("wealth-%s-%x", t.Period, sha1.Sum([]byte(key)))
}

// get retrieves a cached response from disk.
func (t *Transport) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(t.dir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response on disk.
func (t *Transport) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(t.dir(), key), content, 0o600)
}

// redact returns the request URL without its query, which may hold api keys.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

// StatusError is returned for non 200 responses.
type StatusError struct {
	Host, Path string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %v%v: %v", e.Host, e.Path, e.Status)
}

// Get performs an HTTP GET request and returns the body of a 200 response.
func Get(ctx context.Context, client *http.Client, addr string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Host: req.URL.Host, Path: req.URL.Path, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	body, err := Get(ctx, client, addr, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
