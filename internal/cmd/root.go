package cmd

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/pvrtools/tvmeta/internal/config"
	"github.com/pvrtools/tvmeta/internal/grabber"
	"github.com/pvrtools/tvmeta/internal/grabber/local"
	"github.com/pvrtools/tvmeta/internal/grabber/omdb"
	"github.com/pvrtools/tvmeta/internal/grabber/tmdb"
	"github.com/pvrtools/tvmeta/internal/grabber/tvdb"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tvmeta",
	Short: "Fetch artwork for DVR recordings",
	Long: `tvmeta looks up poster and fanart artwork for DVR recordings and stores
the resulting URLs back on the recording entry.

It is meant to run as a post-recording hook: given a recording uuid it reads
the entry from the DVR's management API, queries the configured artwork
grabbers in fallback order for every localized title, and saves whatever
artwork the lookup settles on.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	hostFlag     string
	portFlag     int
	userFlag     string
	passwordFlag string
	debugFlag    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "DVR host (overrides config)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "DVR HTTP port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "DVR username (overrides config)")
	rootCmd.PersistentFlags().StringVar(&passwordFlag, "password", "", "DVR password (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// newLogger builds the process logger. Output goes to stderr so hook runners
// capture it alongside the DVR's own logs.
func newLogger() hclog.Logger {
	level := hclog.Info
	if debugFlag {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "tvmeta",
		Level:  level,
		Output: os.Stderr,
	})
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if hostFlag != "" {
		cfg.Host = hostFlag
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if userFlag != "" {
		cfg.Username = userFlag
	}
	if passwordFlag != "" {
		cfg.Password = passwordFlag
	}
	return cfg, nil
}

// buildRegistry registers the builtin grabbers and loads manifest grabbers
// from the search paths.
func buildRegistry(log hclog.Logger, cfg *config.Config) (*grabber.Registry, error) {
	reg := grabber.NewRegistry()
	for _, register := range []func(*grabber.Registry) error{
		tmdb.Register,
		tvdb.Register,
		omdb.Register,
		local.Register,
	} {
		if err := register(reg); err != nil {
			return nil, err
		}
	}
	reg.LoadManifests(log, searchPaths(cfg))
	return reg, nil
}

// searchPaths returns the grabber module locations: the fixed defaults plus
// any configured extras.
func searchPaths(cfg *config.Config) []string {
	return append(grabber.DefaultSearchPaths(), cfg.GrabberPaths...)
}
