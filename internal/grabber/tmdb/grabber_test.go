package tmdb

import (
	"context"
	"errors"
	"testing"

	"github.com/patrickmn/go-cache"
	tmdbapi "github.com/ryanbradynd05/go-tmdb"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

// fakeClient implements Client with canned results and call counting.
type fakeClient struct {
	movieResults *tmdbapi.MovieSearchResults
	tvResults    *tmdbapi.TvSearchResults
	err          error
	movieCalls   int
	tvCalls      int
}

func (f *fakeClient) SearchMovie(name string, options map[string]string) (*tmdbapi.MovieSearchResults, error) {
	f.movieCalls++
	return f.movieResults, f.err
}

func (f *fakeClient) SearchTv(name string, options map[string]string) (*tmdbapi.TvSearchResults, error) {
	f.tvCalls++
	return f.tvResults, f.err
}

func newTestGrabber(client Client) *Grabber {
	return &Grabber{
		client: client,
		memo:   cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func movieResults(shorts ...tmdbapi.MovieShort) *tmdbapi.MovieSearchResults {
	return &tmdbapi.MovieSearchResults{Results: shorts}
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

func TestQuery_MovieArtworkURLs(t *testing.T) {
	client := &fakeClient{
		movieResults: movieResults(tmdbapi.MovieShort{
			Title:        "The Movie",
			PosterPath:   "/poster.jpg",
			BackdropPath: "/backdrop.jpg",
		}),
	}

	g := newTestGrabber(client)
	art, err := g.Query(context.Background(), grabber.Query{
		Title: "The Movie",
		Type:  grabber.RecordTypeMovie,
	})
	if err != nil {
		t.Fatalf("Query() error = %v, want nil", err)
	}

	if art.Poster != imageBase+"/poster.jpg" {
		t.Errorf("Query() Poster = %q, want full image URL", art.Poster)
	}
	if art.Fanart != imageBase+"/backdrop.jpg" {
		t.Errorf("Query() Fanart = %q, want full image URL", art.Fanart)
	}
}

func TestQuery_MissingPathsStayEmpty(t *testing.T) {
	client := &fakeClient{
		movieResults: movieResults(tmdbapi.MovieShort{
			Title:      "Poster Only",
			PosterPath: "/poster.jpg",
		}),
	}

	g := newTestGrabber(client)
	art, err := g.Query(context.Background(), grabber.Query{Title: "Poster Only", Type: grabber.RecordTypeMovie})
	if err != nil {
		t.Fatalf("Query() error = %v, want nil", err)
	}
	if art.Fanart != "" {
		t.Errorf("Query() Fanart = %q, want empty when backdrop is absent", art.Fanart)
	}
}

func TestQuery_NoResultsIsNotFound(t *testing.T) {
	g := newTestGrabber(&fakeClient{
		movieResults: &tmdbapi.MovieSearchResults{},
		tvResults:    &tmdbapi.TvSearchResults{},
	})

	for _, recType := range []grabber.RecordType{grabber.RecordTypeMovie, grabber.RecordTypeTV} {
		_, err := g.Query(context.Background(), grabber.Query{Title: "missing", Type: recType})
		var ge *grabber.GrabberError
		if !errors.As(err, &ge) || ge.Code != "NOT_FOUND" {
			t.Errorf("Query(%s) error = %v, want GrabberError NOT_FOUND", recType, err)
		}
	}
}

func TestQuery_MemoCollapsesDuplicateLookups(t *testing.T) {
	client := &fakeClient{
		movieResults: movieResults(tmdbapi.MovieShort{PosterPath: "/p.jpg"}),
	}

	g := newTestGrabber(client)
	q := grabber.Query{Title: "Same", Language: "en-US", Type: grabber.RecordTypeMovie}

	for i := 0; i < 3; i++ {
		if _, err := g.Query(context.Background(), q); err != nil {
			t.Fatalf("Query() #%d error = %v, want nil", i, err)
		}
	}
	if client.movieCalls != 1 {
		t.Errorf("SearchMovie called %d times, want 1 (memoized)", client.movieCalls)
	}

	// A different language is a different lookup.
	q.Language = "de"
	if _, err := g.Query(context.Background(), q); err != nil {
		t.Fatalf("Query() with new language error = %v, want nil", err)
	}
	if client.movieCalls != 2 {
		t.Errorf("SearchMovie called %d times, want 2 after language change", client.movieCalls)
	}
}

func TestQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		errText  string
		wantCode string
	}{
		{"401 unauthorized", "AUTH_FAILED"},
		{"429 too many requests: rate limit", "RATE_LIMITED"},
		{"503 service unavailable", "UNAVAILABLE"},
		{"connection reset", "UNKNOWN"},
	}

	for _, tc := range tests {
		g := newTestGrabber(&fakeClient{err: errors.New(tc.errText)})
		_, err := g.Query(context.Background(), grabber.Query{Title: "x", Type: grabber.RecordTypeMovie})
		var ge *grabber.GrabberError
		if !errors.As(err, &ge) || ge.Code != tc.wantCode {
			t.Errorf("Query() with %q error = %v, want code %s", tc.errText, err, tc.wantCode)
		}
	}
}
