package cli

import (
	"fmt"
	"os"

	"github.com/Zachkp/folio/internal/logging"
	"github.com/Zachkp/folio/internal/pdf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newExportPDFCmd(root *rootOptions) *cobra.Command {
	var url, out string

	cmd := &cobra.Command{
		Use:   "export-pdf",
		Short: "Save the print view of a running server as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if url == "" {
				url = cfg.ResolvedBaseURL() + "/print"
			}
			if out == "" {
				p, err := loadProfile(cfg.Profile.Path)
				if err != nil {
					return err
				}
				out = pdf.Filename(p.Name)
			}

			data, err := pdf.NewExporter(cfg.PDF.ChromePath, cfg.PDF.Timeout, logger).Export(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "✓ ")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "page to print (default <base_url>/print)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <name>-resume.pdf)")
	return cmd
}
