// Package tvdb implements the tv_meta_tvdb grabber on TheTVDB v4 API.
package tvdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

// Name is the grabber identifier.
const Name = "tv_meta_tvdb"

// TVDB v4 artwork type ids.
const (
	artworkSeriesBackground int64 = 3
	artworkMovieBackground  int64 = 15
)

// Client captures the dashotv client methods the grabber uses.
type Client interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesExtended(id float64, meta *operations.GetSeriesExtendedQueryParamMeta, short *bool) (*tvdbapi.GetSeriesExtendedResponse, error)
	GetMovieExtended(id float64, meta *operations.QueryParamMeta, short *bool) (*tvdbapi.GetMovieExtendedResponse, error)
}

// Register adds the TVDB factory to the registry.
func Register(r *grabber.Registry) error {
	return r.Register(Name, grabber.Factory{
		Capabilities: grabber.CapabilitySet{
			grabber.CapabilityMovie: true,
			grabber.CapabilityTV:    true,
		},
		Description: "TheTVDB (TVDB) artwork",
		Source:      "builtin",
		New:         New,
	})
}

// Grabber queries TVDB search and reads poster and background from the
// extended record.
type Grabber struct {
	client Client
}

// New constructs the grabber from its routed arguments. The key argument
// (tvdb-key before routing) is required; construction logs in to TVDB so a
// bad key fails the whole run's use of this grabber, not every attempt.
func New(args map[string]string) (grabber.Grabber, error) {
	key := strings.TrimSpace(args["key"])
	if key == "" {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "AUTH_FAILED",
			Message: "tvdb-key argument is required",
		}
	}

	client, err := tvdbapi.Login(key)
	if err != nil {
		return nil, mapError(err)
	}
	return &Grabber{client: client}, nil
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

	switch q.Type {
	case grabber.RecordTypeMovie:
		return g.queryMovie(q)
	case grabber.RecordTypeTV:
		return g.queryTV(q)
	default:
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "INVALID_REQUEST",
			Message: fmt.Sprintf("unsupported record type: %s", q.Type),
		}
	}
}

func (g *Grabber) queryMovie(q grabber.Query) (*grabber.Artwork, error) {
	id, err := g.search(q, "movie")
	if err != nil {
		return nil, err
	}

	resp, err := g.client.GetMovieExtended(float64(id), nil, nil)
	if err != nil {
		return nil, mapError(err)
	}
	if resp == nil || resp.Data == nil {
		return nil, notFound("movie %q", q.Title)
	}

	art := grabber.Artwork{Poster: pointerToString(resp.Data.Image)}
	for _, a := range resp.Data.Artworks {
		if pointerToInt64(a.Type) == artworkMovieBackground {
			art.Fanart = pointerToString(a.Image)
			break
		}
	}
	if art.Poster == "" && art.Fanart == "" {
		return nil, notFound("no artwork for movie %q", q.Title)
	}
	return &art, nil
}

func (g *Grabber) queryTV(q grabber.Query) (*grabber.Artwork, error) {
	id, err := g.search(q, "series")
	if err != nil {
		return nil, err
	}

	resp, err := g.client.GetSeriesExtended(float64(id), nil, nil)
	if err != nil {
		return nil, mapError(err)
	}
	if resp == nil || resp.Data == nil {
		return nil, notFound("series %q", q.Title)
	}

	art := grabber.Artwork{Poster: pointerToString(resp.Data.Image)}
	for _, a := range resp.Data.Artworks {
		if pointerToInt64(a.Type) == artworkSeriesBackground {
			art.Fanart = pointerToString(a.Image)
			break
		}
	}
	if art.Poster == "" && art.Fanart == "" {
		return nil, notFound("no artwork for series %q", q.Title)
	}
	return &art, nil
}

// search returns the TVDB id of the first search result of the wanted type.
func (g *Grabber) search(q grabber.Query, searchType string) (int64, error) {
	query := strings.TrimSpace(q.Title)
	if query == "" {
		return 0, &grabber.GrabberError{
			Grabber: Name,
			Code:    "INVALID_REQUEST",
			Message: "lookup requires a title",
		}
	}

	req := operations.GetSearchResultsRequest{Query: &query, Type: &searchType}
	if q.HasYear() {
		year := float64(q.Year)
		req.Year = &year
	}

	resp, err := g.client.GetSearchResults(req)
	if err != nil {
		return 0, mapError(err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return 0, notFound("no results for %s %q", searchType, q.Title)
	}

	for _, candidate := range resp.Data {
		if !strings.EqualFold(pointerToString(candidate.Type), searchType) {
			continue
		}
		if id := recordID(candidate); id != 0 {
			return id, nil
		}
	}
	return 0, notFound("no %s result for %q", searchType, q.Title)
}

func recordID(result shared.SearchResult) int64 {
	id := parseInt64(pointerToString(result.TvdbID))
	if id == 0 {
		id = parseInt64(pointerToString(result.ID))
	}
	return id
}

func notFound(format string, args ...any) error {
	return &grabber.GrabberError{
		Grabber: Name,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf(format, args...),
	}
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func pointerToInt64(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

func parseInt64(value string) int64 {
	parsed, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return parsed
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &grabber.GrabberError{Grabber: Name, Code: "AUTH_FAILED", Message: "TVDB authentication failed: " + msg}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &grabber.GrabberError{Grabber: Name, Code: "RATE_LIMITED", Message: msg}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &grabber.GrabberError{Grabber: Name, Code: "NOT_FOUND", Message: msg}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &grabber.GrabberError{Grabber: Name, Code: "UNAVAILABLE", Message: msg}
	default:
		return &grabber.GrabberError{Grabber: Name, Code: "UNKNOWN", Message: msg}
	}
}
