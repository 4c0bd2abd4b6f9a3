// Package omdb implements the tv_meta_omdb grabber on the Open Movie
// Database. OMDb only serves posters, so its answers are always partial and
// the fallback chain fills in fanart from elsewhere.
package omdb

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

// Name is the grabber identifier.
const Name = "tv_meta_omdb"

// Register adds the OMDb factory to the registry.
func Register(r *grabber.Registry) error {
	return r.Register(Name, grabber.Factory{
		Capabilities: grabber.CapabilitySet{
			grabber.CapabilityMovie: true,
			grabber.CapabilityTV:    true,
		},
		Description: "Open Movie Database (OMDb) posters",
		Source:      "builtin",
		New:         New,
	})
}

// Grabber queries OMDb by title.
type Grabber struct {
	client *omdb.Client
}

// New constructs the grabber from its routed arguments. The key argument
// (omdb-key before routing) is required.
func New(args map[string]string) (grabber.Grabber, error) {
	key := strings.TrimSpace(args["key"])
	if key == "" {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "AUTH_FAILED",
			Message: "omdb-key argument is required",
		}
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &Grabber{client: omdb.NewClient(key, httpClient)}, nil
}

// Name returns the grabber identifier.
func (g *Grabber) Name() string {
	return Name
}

// Query looks up a poster for one (title, language) attempt.
func (g *Grabber) Query(ctx context.Context, q grabber.Query) (*grabber.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := omdb.QueryData{
		Title: q.Title,
		Plot:  "short",
	}
	if q.HasYear() {
		query.Year = strconv.Itoa(q.Year)
	}
	switch q.Type {
	case grabber.RecordTypeMovie:
		query.SearchType = "movie"
	case grabber.RecordTypeTV:
		query.SearchType = "series"
	}

	result, err := g.client.SearchByTitle(query)
	if err != nil {
		return nil, mapError(err)
	}

	poster := posterOf(result)
	if poster == "" {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("no poster for %q", q.Title),
		}
	}
	return &grabber.Artwork{Poster: poster}, nil
}

func posterOf(result any) string {
	switch r := result.(type) {
	case omdb.MovieResult:
		return cleanPoster(r.Poster)
	case *omdb.MovieResult:
		return cleanPoster(r.Poster)
	case omdb.SeriesResult:
		return cleanPoster(r.Poster)
	case *omdb.SeriesResult:
		return cleanPoster(r.Poster)
	default:
		return ""
	}
}

// cleanPoster drops OMDb's "N/A" placeholder.
func cleanPoster(poster string) string {
	if strings.EqualFold(strings.TrimSpace(poster), "N/A") {
		return ""
	}
	return strings.TrimSpace(poster)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &grabber.GrabberError{Grabber: Name, Code: "AUTH_FAILED", Message: "OMDb authentication failed: " + err.Error()}
	case strings.Contains(lower, "not found"):
		return &grabber.GrabberError{Grabber: Name, Code: "NOT_FOUND", Message: err.Error()}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &grabber.GrabberError{Grabber: Name, Code: "RATE_LIMITED", Message: err.Error()}
	default:
		return &grabber.GrabberError{Grabber: Name, Code: "UNKNOWN", Message: err.Error()}
	}
}
