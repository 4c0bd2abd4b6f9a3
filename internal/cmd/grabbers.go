package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pvrtools/tvmeta/internal/grabber"
)

var grabbersCmd = &cobra.Command{
	Use:   "grabbers",
	Short: "List the available artwork grabbers",
	Long: `List every artwork grabber tvmeta knows about: the builtins plus any
grabber manifests found in the search paths, with the record types each one
supports.`,
	RunE: runGrabbersCommand,
}

func init() {
	rootCmd.AddCommand(grabbersCmd)
}

var (
	grabberNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	capabilityStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runGrabbersCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reg, err := buildRegistry(log, cfg)
	if err != nil {
		return err
	}

	for _, id := range reg.Identifiers() {
		factory, _ := reg.Lookup(id)

		caps := make([]string, 0, 2)
		if factory.Capabilities.Has(grabber.CapabilityMovie) {
			caps = append(caps, "movie")
		}
		if factory.Capabilities.Has(grabber.CapabilityTV) {
			caps = append(caps, "tv")
		}

		line := grabberNameStyle.Render(id)
		line += "  " + capabilityStyle.Render(fmt.Sprintf("%v", caps))
		if factory.Description != "" {
			line += "  " + factory.Description
		}
		line += "  " + sourceStyle.Render(factory.Source)

		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	return nil
}
