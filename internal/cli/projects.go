package cli

import (
	"fmt"
	"strings"

	"github.com/Zachkp/folio/internal/project"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newProjectsCmd(root *rootOptions) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "projects [query]",
		Short: "List projects, filtered by name, description, or tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if profilePath == "" {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				profilePath = cfg.Profile.Path
			}
			p, err := loadProfile(profilePath)
			if err != nil {
				return err
			}

			var query string
			if len(args) == 1 {
				query = args[0]
			}
			printProjects(cmd, project.Filter(p.Projects, query))
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile file (defaults to the configured one)")
	return cmd
}

func printProjects(cmd *cobra.Command, projects []project.Project) {
	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No projects found matching your search.")
		return
	}

	name := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)
	for _, p := range projects {
		name.Fprint(out, p.Name)
		if len(p.Tags) > 0 {
			gray.Fprintf(out, "  [%s]", strings.Join(p.Tags, ", "))
		}
		fmt.Fprintln(out)
		if p.Description != "" {
			fmt.Fprintf(out, "  %s\n", p.Description)
		}
		if p.Link != "" {
			gray.Fprintf(out, "  %s\n", p.Link)
		}
	}
}
