package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/pvrtools/tvmeta/internal/config"
	"github.com/pvrtools/tvmeta/internal/grabber"
	"github.com/pvrtools/tvmeta/internal/pvr"
	"github.com/pvrtools/tvmeta/internal/resolve"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and store artwork for one recording",
	Long: `Fetch poster and fanart artwork for a single DVR recording and save the
URLs back to its entry.

This is the command the DVR invokes as its post-recording hook. Recordings
that already carry both artwork fields are left untouched unless --force is
given. Grabber credentials are passed as namespaced arguments, for example:

  tvmeta fetch --uuid 8d35... --arg tmdb-key=KEY --arg tvdb-key=KEY`,
	RunE: runFetchCommand,
}

var (
	uuidFlag  string
	forceFlag bool
	argFlags  []string
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&uuidFlag, "uuid", "", "Recording uuid (required)")
	fetchCmd.Flags().BoolVar(&forceFlag, "force", false, "Re-fetch artwork even when the recording already has it")
	fetchCmd.Flags().StringArrayVar(&argFlags, "arg", nil, "Grabber argument as key=value, e.g. tmdb-key=KEY (repeatable)")
	_ = fetchCmd.MarkFlagRequired("uuid")
}

func runFetchCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	grabberArgs, err := parseGrabberArgs(cfg)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(log, cfg)
	if err != nil {
		return err
	}

	movieChain, tvChain := grabberChains(log, reg, cfg)
	log.Debug("grabber chains", "movie", movieChain, "tv", tvChain)

	client := pvr.NewClient(fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port), cfg.Username, cfg.Password, log)

	ctx := context.Background()
	rec, err := client.Recording(ctx, uuidFlag)
	if err != nil {
		return err
	}

	resolver := resolve.New(reg, client, grabberArgs, log)
	art, err := resolver.ResolveArtwork(ctx, rec, forceFlag, movieChain, tvChain)
	if err != nil {
		return err
	}

	log.Info("artwork resolved", "uuid", rec.UUID, "poster", art.Poster, "fanart", art.Fanart)
	return nil
}

// parseGrabberArgs merges configured grabber arguments with --arg flags;
// flags win.
func parseGrabberArgs(cfg *config.Config) (map[string]string, error) {
	merged := make(map[string]string, len(cfg.GrabberArgs)+len(argFlags))
	for key, value := range cfg.GrabberArgs {
		merged[key] = value
	}
	for _, raw := range argFlags {
		key, value, found := strings.Cut(raw, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", raw)
		}
		merged[key] = value
	}
	return merged, nil
}

// grabberChains returns the movie and tv fallback chains: the configured
// lists when pinned, otherwise every known grabber, each filtered down to
// the matching capability.
func grabberChains(log hclog.Logger, reg *grabber.Registry, cfg *config.Config) (movie, tv []string) {
	movie = cfg.MovieGrabbers
	if len(movie) == 0 {
		movie = knownIdentifiers(reg, cfg)
	}
	tv = cfg.TVGrabbers
	if len(tv) == 0 {
		tv = knownIdentifiers(reg, cfg)
	}

	movie = reg.FilterByCapability(log, movie, grabber.CapabilityMovie)
	tv = reg.FilterByCapability(log, tv, grabber.CapabilityTV)
	return movie, tv
}

// knownIdentifiers is the union of registered grabbers and modules discovered
// on disk. Discovered-but-unregistered identifiers stay in the list so the
// capability filter can report them as unloadable.
func knownIdentifiers(reg *grabber.Registry, cfg *config.Config) []string {
	ids := reg.Identifiers()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range grabber.Discover(searchPaths(cfg)) {
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	sort.Strings(ids)
	return ids
}
