// Package grabber defines the metadata grabber contract and the registry the
// lookup orchestrator resolves grabbers from.
package grabber

import (
	"context"
)

// Capability names a record type a grabber can look up.
type Capability string

const (
	CapabilityMovie Capability = "supports_movie"
	CapabilityTV    Capability = "supports_tv"
)

// CapabilitySet maps capability names to whether the grabber supports them.
// It is a static report, queryable without constructing the grabber.
type CapabilitySet map[Capability]bool

// Has reports whether the set claims the capability.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// RecordType classifies the recording being looked up. A recording with a
// non-empty episode display string is TV; everything else is a movie.
type RecordType string

const (
	RecordTypeMovie RecordType = "movie"
	RecordTypeTV    RecordType = "tv"
)

// Query carries one lookup attempt to a grabber.
type Query struct {
	Title     string
	Language  string // 2-letter locale tag
	Year      int    // 0 means unknown; grabbers must not send a literal 0
	Type      RecordType
	Episode   string // episode display string, empty for movies
	ProgramID string // external program identifier (URI), may be empty
}

// HasYear reports whether the query carries a usable copyright year.
func (q Query) HasYear() bool {
	return q.Year > 0
}

// Artwork is a grabber's answer for one query. Either field may be empty;
// the orchestrator merges partial answers across the fallback chain.
type Artwork struct {
	Poster string
	Fanart string
}

// Complete reports whether both artwork fields are settled.
func (a Artwork) Complete() bool {
	return a.Poster != "" && a.Fanart != ""
}

// Grabber is the query side of a provider module. Instances are constructed
// lazily, at most once per run, by the lookup orchestrator.
type Grabber interface {
	Name() string
	Query(ctx context.Context, q Query) (*Artwork, error)
}

// Factory describes a registered grabber: a capability report that can be
// inspected without construction side effects, and a constructor taking the
// grabber's routed arguments.
type Factory struct {
	Capabilities CapabilitySet
	Description  string
	Source       string // "builtin" or the manifest path the grabber was loaded from
	New          func(args map[string]string) (Grabber, error)
}
