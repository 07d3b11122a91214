package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("positional workflow and defaults", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"shot.json"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "shot.json", cfg.WorkflowPath)
		assert.Equal(t, "print", cfg.Recipe)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Empty(t, cfg.Target)
		assert.False(t, cfg.RunNow)
	})

	t.Run("flags override the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "depends.yaml")
		require.NoError(t, os.WriteFile(path, []byte("recipe: bash\ndestination: /tmp/a\nlog:\n  level: warn\n  format: json\n"), 0o600))

		cfg, _, err := Parse([]string{
			"-config", path,
			"-workflow", "shot.json",
			"-node", "Comp",
			"-dest", "/tmp/b",
			"-run",
			"-log-level", "DEBUG",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "bash", cfg.Recipe, "recipe flag not given")
		assert.Equal(t, "/tmp/b", cfg.Destination)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "Comp", cfg.Target)
		assert.True(t, cfg.RunNow)
	})

	t.Run("usage", func(t *testing.T) {
		for _, args := range [][]string{{"-h"}, {}} {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(args, out)
			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		}
	})

	t.Run("error cases", func(t *testing.T) {
		testCases := []struct {
			name    string
			args    []string
			wantErr string
		}{
			{name: "unknown flag", args: []string{"-workers", "3"}, wantErr: "flag provided but not defined: -workers"},
			{name: "bad log format", args: []string{"-log-format", "xml", "shot.json"}, wantErr: "invalid log format"},
			{name: "bad log level", args: []string{"-log-level", "loud", "shot.json"}, wantErr: "invalid log level"},
			{name: "missing config", args: []string{"-config", "/nonexistent/depends.yaml", "shot.json"}, wantErr: "failed to read config file"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, _, err := Parse(tc.args, &bytes.Buffer{})
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
			})
		}
	})
}
