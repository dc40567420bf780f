package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zachkp/folio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfileYAML = `
name: Ada Lovelace
role: Analyst
contacts:
  - type: email
    label: ada@example.com
    href: mailto:ada@example.com
projects:
  - name: Engine Notes
    description: Notes on the Analytical Engine
    link: https://example.com/notes
    tags: [math]
  - name: Loom
    description: Pattern cards for weaving
    link: https://example.com/loom
    tags: [Go, hardware]
`

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProjectsCmd(t *testing.T) {
	path := writeProfile(t, "profile.yaml", testProfileYAML)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{name: "all", args: []string{"projects", "-p", path}, want: []string{"Engine Notes", "Loom"}},
		{name: "tag", args: []string{"projects", "-p", path, "go"}, want: []string{"Loom", "hardware"}, notWant: []string{"Engine Notes"}},
		{name: "blank query", args: []string{"projects", "-p", path, "   "}, want: []string{"Engine Notes", "Loom"}},
		{name: "none", args: []string{"projects", "-p", path, "cobol"}, want: []string{"No projects found matching your search."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestProjectsCmd_EmbeddedProfile(t *testing.T) {
	t.Setenv("PROFILE_PATH", "")
	t.Setenv("FOLIO_CONFIG", "")
	out, err := run(t, "projects", "scholar")
	require.NoError(t, err)
	assert.Contains(t, out, "ScholarGuide")
}

func TestValidateCmd(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		out, err := run(t, "validate", writeProfile(t, "p.yaml", testProfileYAML))
		require.NoError(t, err)
		assert.Contains(t, out, "Ada Lovelace, 2 projects")
	})

	t.Run("valid toml", func(t *testing.T) {
		path := writeProfile(t, "p.toml", `
name = "Ada Lovelace"

[[projects]]
name = "Loom"
description = "Pattern cards"
tags = ["go"]
`)
		out, err := run(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "1 projects")
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := run(t, "validate", writeProfile(t, "p.yaml", "role: nobody\n"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := run(t, "validate", writeProfile(t, "p.json", "{}"))
		assert.Error(t, err)
	})

	t.Run("needs an argument", func(t *testing.T) {
		_, err := run(t, "validate")
		assert.Error(t, err)
	})
}

func TestRunServe_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Database.Path = filepath.Join(t.TempDir(), "folio.db")
	cfg.Theme.Store = config.ThemeStoreSQLite
	cfg.PDF.ChromePath = "definitely-not-a-browser"
	cfg.Logging.Level = "error"
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- runServe(ctx, cfg) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
