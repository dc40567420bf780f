// Package cli wires the folio commands together with cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/profile"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the folio command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Serve a personal portfolio and résumé",
		Long: `folio renders a single-page portfolio from a YAML or TOML profile,
with light/dark theming, project search, a contact form, and PDF export.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("FOLIO_CONFIG"),
		"path to a YAML config file (env: FOLIO_CONFIG)")

	cmd.AddCommand(
		newServeCmd(opts),
		newProjectsCmd(opts),
		newExportPDFCmd(opts),
		newValidateCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// loadProfile reads path, or returns the embedded profile when path is empty.
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}
