// Package tmdb implements the tv_meta_tmdb grabber on The Movie Database.
package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

const (
	// Name is the grabber identifier.
	Name = "tv_meta_tmdb"

	imageBase = "https://image.tmdb.org/t/p/original"
)

// Client captures the go-tmdb methods the grabber uses (matches *tmdb.TMDb).
type Client interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
}

// Register adds the TMDB factory to the registry.
func Register(r *grabber.Registry) error {
	return r.Register(Name, grabber.Factory{
		Capabilities: grabber.CapabilitySet{
			grabber.CapabilityMovie: true,
			grabber.CapabilityTV:    true,
		},
		Description: "The Movie Database (TMDB) artwork",
		Source:      "builtin",
		New:         New,
	})
}

// Grabber queries TMDB search and maps poster/backdrop paths to image URLs.
type Grabber struct {
	client Client
	memo   *cache.Cache
}

// New constructs the grabber from its routed arguments. The key argument
// (tmdb-key before routing) is required.
func New(args map[string]string) (grabber.Grabber, error) {
	key := strings.TrimSpace(args["key"])
	if key == "" {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "AUTH_FAILED",
			Message: "tmdb-key argument is required",
		}
	}

	return &Grabber{
		client: tmdb.Init(tmdb.Config{APIKey: key}),
		// Collapses duplicate API calls across the language loop; nothing
		// outlives the process.
		memo: cache.New(cache.NoExpiration, cache.NoExpiration),
	}, nil
}

// Name returns the grabber identifier.
func (g *Grabber) Name() string {
	return Name
}

// Query looks up artwork for one (title, language) attempt.
func (g *Grabber) Query(ctx context.Context, q grabber.Query) (*grabber.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	memoKey := fmt.Sprintf("%s:%s:%s:%d", q.Type, q.Title, q.Language, q.Year)
	if cached, found := g.memo.Get(memoKey); found {
		if art, ok := cached.(*grabber.Artwork); ok {
			return art, nil
		}
	}

	var art *grabber.Artwork
	var err error

	switch q.Type {
	case grabber.RecordTypeMovie:
		art, err = g.queryMovie(q)
	case grabber.RecordTypeTV:
		art, err = g.queryTV(q)
	default:
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "INVALID_REQUEST",
			Message: fmt.Sprintf("unsupported record type: %s", q.Type),
		}
	}
	if err != nil {
		return nil, err
	}

	g.memo.Set(memoKey, art, cache.DefaultExpiration)
	return art, nil
}

func (g *Grabber) queryMovie(q grabber.Query) (*grabber.Artwork, error) {
	options := map[string]string{}
	if q.Language != "" {
		options["language"] = q.Language
	}
	if q.HasYear() {
		options["year"] = strconv.Itoa(q.Year)
	}

	results, err := g.client.SearchMovie(q.Title, options)
	if err != nil {
		return nil, mapError(err)
	}
	if results == nil || len(results.Results) == 0 {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("no results for movie %q", q.Title),
		}
	}

	movie := results.Results[0]
	return &grabber.Artwork{
		Poster: imageURL(movie.PosterPath),
		Fanart: imageURL(movie.BackdropPath),
	}, nil
}

func (g *Grabber) queryTV(q grabber.Query) (*grabber.Artwork, error) {
	options := map[string]string{}
	if q.Language != "" {
		options["language"] = q.Language
	}

	results, err := g.client.SearchTv(q.Title, options)
	if err != nil {
		return nil, mapError(err)
	}
	if results == nil || len(results.Results) == 0 {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("no results for show %q", q.Title),
		}
	}

	show := results.Results[0]
	return &grabber.Artwork{
		Poster: imageURL(show.PosterPath),
		Fanart: imageURL(show.BackdropPath),
	}, nil
}

func imageURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBase + path
}

// mapError maps TMDB errors to grabber errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"):
		return &grabber.GrabberError{Grabber: Name, Code: "AUTH_FAILED", Message: "TMDB authentication failed: " + err.Error()}
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return &grabber.GrabberError{Grabber: Name, Code: "RATE_LIMITED", Message: "TMDB rate limit exceeded"}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &grabber.GrabberError{Grabber: Name, Code: "UNAVAILABLE", Message: "TMDB service unavailable"}
	default:
		return &grabber.GrabberError{Grabber: Name, Code: "UNKNOWN", Message: "TMDB error: " + err.Error()}
	}
}
