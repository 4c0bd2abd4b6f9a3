package grabber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/avast/retry-go/v4"
)

// Manifest describes an external HTTP-JSON grabber dropped into a search
// location as tv_meta_<name>.toml. The URL templates may reference the query
// tokens {title}, {lang}, {year}, {episode} and {programid}, plus any routed
// argument by its key (e.g. {key} for <simple-name>-key).
type Manifest struct {
	Description   string `toml:"description"`
	SupportsMovie bool   `toml:"supports_movie"`
	SupportsTV    bool   `toml:"supports_tv"`
	MovieURL      string `toml:"movie_url"`
	TVURL         string `toml:"tv_url"`
	PosterPath    string `toml:"poster_path"` // dot path into the JSON response
	FanartPath    string `toml:"fanart_path"`
	TimeoutSec    int    `toml:"timeout_seconds"`
}

// LoadManifest parses and validates a grabber manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if !m.SupportsMovie && !m.SupportsTV {
		return nil, fmt.Errorf("manifest %s declares no capabilities", path)
	}
	if m.SupportsMovie && m.MovieURL == "" {
		return nil, fmt.Errorf("manifest %s declares supports_movie without movie_url", path)
	}
	if m.SupportsTV && m.TVURL == "" {
		return nil, fmt.Errorf("manifest %s declares supports_tv without tv_url", path)
	}
	if m.PosterPath == "" && m.FanartPath == "" {
		return nil, fmt.Errorf("manifest %s selects no artwork fields", path)
	}
	return &m, nil
}

// Factory wraps the manifest in the standard grabber factory shape.
func (m *Manifest) Factory(id, path string) Factory {
	return Factory{
		Capabilities: CapabilitySet{
			CapabilityMovie: m.SupportsMovie,
			CapabilityTV:    m.SupportsTV,
		},
		Description: m.Description,
		Source:      path,
		New: func(args map[string]string) (Grabber, error) {
			timeout := 15 * time.Second
			if m.TimeoutSec > 0 {
				timeout = time.Duration(m.TimeoutSec) * time.Second
			}
			return &manifestGrabber{
				id:       id,
				manifest: m,
				args:     args,
				client:   &http.Client{Timeout: timeout},
			}, nil
		},
	}
}

// manifestGrabber performs a single GET per query and pulls artwork URLs out
// of the JSON response via the manifest's dot paths.
type manifestGrabber struct {
	id       string
	manifest *Manifest
	args     map[string]string
	client   *http.Client
}

func (g *manifestGrabber) Name() string {
	return g.id
}

func (g *manifestGrabber) Query(ctx context.Context, q Query) (*Artwork, error) {
	tmpl := g.manifest.MovieURL
	if q.Type == RecordTypeTV {
		tmpl = g.manifest.TVURL
	}
	if tmpl == "" {
		return nil, &GrabberError{
			Grabber: g.id,
			Code:    "INVALID_REQUEST",
			Message: fmt.Sprintf("no %s lookup configured", q.Type),
		}
	}

	endpoint := g.expand(tmpl, q)

	var doc any
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := g.client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(&GrabberError{
					Grabber: g.id,
					Code:    "NOT_FOUND",
					Message: fmt.Sprintf("no match for %q", q.Title),
				})
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error %d", resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&doc)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	art := &Artwork{
		Poster: jsonPath(doc, g.manifest.PosterPath),
		Fanart: jsonPath(doc, g.manifest.FanartPath),
	}
	if art.Poster == "" && art.Fanart == "" {
		return nil, &GrabberError{
			Grabber: g.id,
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("response carried no artwork for %q", q.Title),
		}
	}
	return art, nil
}

func (g *manifestGrabber) expand(tmpl string, q Query) string {
	year := ""
	if q.HasYear() {
		year = strconv.Itoa(q.Year)
	}
	replacements := map[string]string{
		"{title}":     url.QueryEscape(q.Title),
		"{lang}":      url.QueryEscape(q.Language),
		"{year}":      year,
		"{episode}":   url.QueryEscape(q.Episode),
		"{programid}": url.QueryEscape(q.ProgramID),
	}

	expanded := tmpl
	for token, value := range replacements {
		expanded = strings.ReplaceAll(expanded, token, value)
	}
	for key, value := range g.args {
		expanded = strings.ReplaceAll(expanded, "{"+key+"}", url.QueryEscape(value))
	}
	return expanded
}

// jsonPath walks a decoded JSON document by dot-separated keys; numeric
// segments index into arrays. Any miss returns the empty string.
func jsonPath(doc any, path string) string {
	if path == "" {
		return ""
	}
	current := doc
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			current = node[segment]
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return ""
			}
			current = node[index]
		default:
			return ""
		}
	}
	value, _ := current.(string)
	return value
}
