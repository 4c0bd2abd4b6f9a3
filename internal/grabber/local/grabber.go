// Package local implements the tv_meta_local grabber: sidecar artwork files
// sitting next to the recording on disk.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/vansante/go-ffprobe.v2"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

// Name is the grabber identifier.
const Name = "tv_meta_local"

const probeTimeout = 10 * time.Second

var (
	posterNames = []string{"poster", "folder", "cover"}
	fanartNames = []string{"fanart", "backdrop", "background"}
	imageExts   = []string{".jpg", ".jpeg", ".png"}
)

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// Register adds the local sidecar factory to the registry.
func Register(r *grabber.Registry) error {
	return r.Register(Name, grabber.Factory{
		Capabilities: grabber.CapabilitySet{
			grabber.CapabilityMovie: true,
			grabber.CapabilityTV:    true,
		},
		Description: "Sidecar artwork files next to the recording",
		Source:      "builtin",
		New:         New,
	})
}

// Grabber scans the recording's directory for sidecar images.
type Grabber struct {
	probe probeFunc
}

// New constructs the grabber. It takes no arguments.
func New(map[string]string) (grabber.Grabber, error) {
	return &Grabber{probe: ffprobe.ProbeURL}, nil
}

// Name returns the grabber identifier.
func (g *Grabber) Name() string {
	return Name
}

// Query looks for sidecar artwork next to the recording file. The recording
// is probed first so a missing or unreadable file fails the attempt instead
// of returning artwork for something that is not there.
func (g *Grabber) Query(ctx context.Context, q grabber.Query) (*grabber.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := localPath(q.ProgramID)
	if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := g.probe(probeCtx, path); err != nil {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "PROBE_FAILED",
			Message: fmt.Sprintf("ffprobe failed for %s: %v", path, err),
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Dir(path)

	art := grabber.Artwork{
		Poster: findSidecar(dir, base, posterNames),
		Fanart: findSidecar(dir, base, fanartNames),
	}
	if art.Poster == "" && art.Fanart == "" {
		return nil, &grabber.GrabberError{
			Grabber: Name,
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("no sidecar artwork in %s", dir),
		}
	}
	return &art, nil
}

// localPath extracts a filesystem path from the recording's uri. Only local
// recordings can have sidecars.
func localPath(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == "" || !filepath.IsAbs(path) {
		return "", &grabber.GrabberError{
			Grabber: Name,
			Code:    "INVALID_REQUEST",
			Message: fmt.Sprintf("recording uri %q is not a local file", uri),
		}
	}
	return path, nil
}

// findSidecar returns a file:// URL for the first matching sidecar image.
// Recording-scoped names (<base>-poster.jpg) are preferred over
// directory-scoped ones (poster.jpg).
func findSidecar(dir, base string, names []string) string {
	for _, name := range names {
		for _, ext := range imageExts {
			candidates := []string{
				filepath.Join(dir, base+"-"+name+ext),
				filepath.Join(dir, name+ext),
			}
			for _, candidate := range candidates {
				if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
					return "file://" + candidate
				}
			}
		}
	}
	return ""
}
