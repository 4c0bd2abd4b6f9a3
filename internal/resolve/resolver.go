// Package resolve implements the artwork lookup: a languages × grabbers
// fallback chain with first-come-wins merging of partial results.
package resolve

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/pvrtools/tvmeta/internal/grabber"
	"github.com/pvrtools/tvmeta/internal/lang"
	"github.com/pvrtools/tvmeta/internal/pvr"
)

// ArtworkWriter persists resolved artwork back to the recording system.
type ArtworkWriter interface {
	SetArtwork(ctx context.Context, uuid string, art grabber.Artwork) error
}

// Resolver runs one artwork lookup. Grabber instances it constructs live for
// the length of the run and are owned by this Resolver, never shared
// process-globally.
type Resolver struct {
	registry  *grabber.Registry
	writer    ArtworkWriter
	args      map[string]string
	log       hclog.Logger
	instances map[string]grabber.Grabber
	broken    map[string]bool
}

// New creates a Resolver over the given registry. args is the flat
// namespaced argument map; each grabber receives only its routed slice.
func New(registry *grabber.Registry, writer ArtworkWriter, args map[string]string, log hclog.Logger) *Resolver {
	return &Resolver{
		registry:  registry,
		writer:    writer,
		args:      args,
		log:       log,
		instances: make(map[string]grabber.Grabber),
		broken:    make(map[string]bool),
	}
}

// ResolveArtwork looks up poster and fanart for one recording.
//
// The record's type selects the fallback chain. Unless forceRefresh is set,
// already-complete artwork short-circuits the lookup and existing values seed
// the accumulator as a floor. Every language in the record's title map is
// tried against every grabber in chain order; each artwork field settles on
// the first value any grabber supplies and is never overwritten. The loop
// stops as soon as both fields are present. Grabber failures are contained;
// only an empty chain or total exhaustion fail the run.
func (r *Resolver) ResolveArtwork(ctx context.Context, rec *pvr.Recording, forceRefresh bool, movieChain, tvChain []string) (grabber.Artwork, error) {
	chain := movieChain
	recType := grabber.RecordTypeMovie
	if rec.IsTV() {
		chain = tvChain
		recType = grabber.RecordTypeTV
	}
	if len(chain) == 0 {
		return grabber.Artwork{}, fmt.Errorf("no %s grabbers available: %w", recType, grabber.ErrMisconfigured)
	}

	if !forceRefresh && rec.HasArtwork() {
		r.log.Info("artwork already complete", "uuid", rec.UUID)
		return grabber.Artwork{Poster: rec.Image, Fanart: rec.Fanart}, nil
	}

	if rec.Titles.Len() == 0 {
		return grabber.Artwork{}, fmt.Errorf("recording %s has no title: %w", rec.UUID, grabber.ErrNotFound)
	}

	var acc grabber.Artwork
	if !forceRefresh {
		// Known-good values are a floor; refresh mode makes grabbers
		// re-supply everything.
		acc.Poster = rec.Image
		acc.Fanart = rec.Fanart
	}

lookup:
	for _, language := range rec.Titles.Languages() {
		title, _ := rec.Titles.Get(language)
		if title == "" {
			continue
		}
		for _, id := range chain {
			g := r.instance(id)
			if g == nil {
				continue
			}

			q := grabber.Query{
				Title:     title,
				Language:  lang.ToLocale(language),
				Year:      rec.Year, // 0 stays "unknown" all the way down
				Type:      recType,
				Episode:   rec.EpisodeDisp,
				ProgramID: rec.URI,
			}

			art, err := g.Query(ctx, q)
			if err != nil {
				r.log.Debug("grabber query failed", "grabber", id, "language", q.Language, "error", err)
				continue
			}
			if art == nil {
				continue
			}

			merge(&acc, art)
			r.log.Debug("grabber answered", "grabber", id, "language", q.Language,
				"poster", art.Poster != "", "fanart", art.Fanart != "")

			if acc.Complete() {
				break lookup
			}
		}
	}

	if acc.Poster == "" && acc.Fanart == "" {
		return grabber.Artwork{}, fmt.Errorf("no artwork for recording %s: %w", rec.UUID, grabber.ErrNotFound)
	}

	if err := r.writer.SetArtwork(ctx, rec.UUID, acc); err != nil {
		return grabber.Artwork{}, err
	}
	return acc, nil
}

// instance returns the per-run grabber for id, constructing it on first use
// with its routed arguments. A failed construction marks the grabber broken
// for every remaining attempt in this run.
func (r *Resolver) instance(id string) grabber.Grabber {
	if g, ok := r.instances[id]; ok {
		return g
	}
	if r.broken[id] {
		return nil
	}

	factory, ok := r.registry.Lookup(id)
	if !ok {
		r.log.Warn("grabber not registered", "grabber", id)
		r.broken[id] = true
		return nil
	}

	g, err := factory.New(grabber.RouteArgs(r.args, id))
	if err != nil {
		r.log.Warn("grabber construction failed", "grabber", id, "error", err)
		r.broken[id] = true
		return nil
	}

	r.instances[id] = g
	return g
}

// merge settles each artwork field independently: the first non-empty value
// wins and is never overwritten.
func merge(acc *grabber.Artwork, art *grabber.Artwork) {
	if acc.Poster == "" {
		acc.Poster = art.Poster
	}
	if acc.Fanart == "" {
		acc.Fanart = art.Fanart
	}
}
