package omdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Digital-Shane/omdb"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func newTestGrabber(fn roundTripFunc) *Grabber {
	return &Grabber{client: omdb.NewClient("testing", &http.Client{Transport: fn})}
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(map[string]string{})
	var ge *grabber.GrabberError
	if !errors.As(err, &ge) || ge.Code != "AUTH_FAILED" {
		t.Errorf("New() error = %v, want GrabberError AUTH_FAILED", err)
	}

	if _, err := New(map[string]string{"key": "abc"}); err != nil {
		t.Errorf("New() with key error = %v, want nil", err)
	}
}

func TestQuery_MoviePoster(t *testing.T) {
	var gotQuery map[string]string
	g := newTestGrabber(func(req *http.Request) (*http.Response, error) {
		gotQuery = map[string]string{
			"t":    req.URL.Query().Get("t"),
			"y":    req.URL.Query().Get("y"),
			"type": req.URL.Query().Get("type"),
		}
		return jsonResponse(200, `{
			"Title": "Interstellar",
			"Year": "2014",
			"Poster": "https://img.example/interstellar.jpg",
			"Type": "movie",
			"Response": "True"
		}`), nil
	})

	art, err := g.Query(context.Background(), grabber.Query{
		Title: "Interstellar",
		Year:  2014,
		Type:  grabber.RecordTypeMovie,
	})
	if err != nil {
		t.Fatalf("Query() error = %v, want nil", err)
	}

	if art.Poster != "https://img.example/interstellar.jpg" {
		t.Errorf("Query() Poster = %q, want OMDb poster URL", art.Poster)
	}
	if art.Fanart != "" {
		t.Errorf("Query() Fanart = %q, want empty (OMDb has no fanart)", art.Fanart)
	}

	if gotQuery["t"] != "Interstellar" || gotQuery["y"] != "2014" || gotQuery["type"] != "movie" {
		t.Errorf("Query() sent %v, want title, year and movie type", gotQuery)
	}
}

func TestQuery_SeriesPoster(t *testing.T) {
	var gotType string
	g := newTestGrabber(func(req *http.Request) (*http.Response, error) {
		gotType = req.URL.Query().Get("type")
		return jsonResponse(200, `{
			"Title": "The Wire",
			"Year": "2002–2008",
			"Poster": "https://img.example/wire.jpg",
			"totalSeasons": "5",
			"Type": "series",
			"Response": "True"
		}`), nil
	})

	art, err := g.Query(context.Background(), grabber.Query{
		Title: "The Wire",
		Type:  grabber.RecordTypeTV,
	})
	if err != nil {
		t.Fatalf("Query() error = %v, want nil", err)
	}
	if art.Poster != "https://img.example/wire.jpg" {
		t.Errorf("Query() Poster = %q, want series poster", art.Poster)
	}
	if gotType != "series" {
		t.Errorf("Query() type param = %q, want series", gotType)
	}
}

func TestQuery_PlaceholderPosterIsNotFound(t *testing.T) {
	g := newTestGrabber(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
			"Title": "Obscure",
			"Year": "1990",
			"Poster": "N/A",
			"Type": "movie",
			"Response": "True"
		}`), nil
	})

	_, err := g.Query(context.Background(), grabber.Query{Title: "Obscure", Type: grabber.RecordTypeMovie})
	var ge *grabber.GrabberError
	if !errors.As(err, &ge) || ge.Code != "NOT_FOUND" {
		t.Errorf("Query() error = %v, want GrabberError NOT_FOUND for N/A poster", err)
	}
}

func TestQuery_APIErrorMapped(t *testing.T) {
	g := newTestGrabber(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"Response": "False", "Error": "Movie not found!"}`), nil
	})

	_, err := g.Query(context.Background(), grabber.Query{Title: "missing", Type: grabber.RecordTypeMovie})
	var ge *grabber.GrabberError
	if !errors.As(err, &ge) {
		t.Fatalf("Query() error = %v, want GrabberError", err)
	}
	if ge.Code != "NOT_FOUND" {
		t.Errorf("Query() error code = %q, want NOT_FOUND", ge.Code)
	}
}

func TestCleanPoster(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"N/A", ""},
		{"n/a", ""},
		{" N/A ", ""},
		{"https://img.example/p.jpg", "https://img.example/p.jpg"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := cleanPoster(tc.in); got != tc.want {
			t.Errorf("cleanPoster(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
