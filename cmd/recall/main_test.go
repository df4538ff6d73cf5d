package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"recall"}, args...))
	return out.String(), err
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "ingest", "vectorize", "add-item", "remove-item", "chat", "sessions", "reconcile"} {
		assert.NotNil(t, findCommand(app, name), "command %s", name)
	}
}

func TestGlobalFlags(t *testing.T) {
	app := newApp()

	var level *cli.StringFlag
	var configFlag *cli.StringFlag
	for _, flag := range app.Flags {
		if f, ok := flag.(*cli.StringFlag); ok {
			switch f.Name {
			case "log-level":
				level = f
			case "config":
				configFlag = f
			}
		}
	}
	require.NotNil(t, level)
	assert.Equal(t, "info", level.Value)
	require.NotNil(t, configFlag)
	assert.Equal(t, "recall.yaml", configFlag.Value)
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "INFO"},
		{level: "warn"},
		{level: "error"},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := runApp(t, "--log-level", tt.level, "--config", "/nonexistent.yaml", "sessions", "--help")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfig_DBOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "recall.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database:\n  path: /from/file\nchat:\n  max_results: 4\n"), 0644))

	var loaded string
	var maxResults int
	inspect := func() *cli.App {
		app := newApp()
		app.Commands = []*cli.Command{{
			Name: "inspect",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				loaded = cfg.Database.Path
				maxResults = cfg.Chat.MaxResults
				return nil
			},
		}}
		return app
	}

	require.NoError(t, inspect().Run([]string{"recall", "--config", configPath, "inspect"}))
	assert.Equal(t, "/from/file", loaded)
	assert.Equal(t, 4, maxResults)

	require.NoError(t, inspect().Run([]string{"recall", "--config", configPath, "--db", "/from/flag", "inspect"}))
	assert.Equal(t, "/from/flag", loaded)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "recall.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("model:\n  dimensions: 0\n"), 0644))

	_, err := runApp(t, "--config", configPath, "sessions", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSessionsAndReconcile_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	args := []string{"--config", "/nonexistent.yaml", "--db", db}

	out, err := runApp(t, append(args, "sessions", "list")...)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))

	out, err = runApp(t, append(args, "reconcile")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 orphaned vector records")

	out, err = runApp(t, append(args, "remove-item", "--id", "does-not-exist")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")

	_, err = runApp(t, append(args, "remove-item", "--title", "Nothing Here", "--year", "1999")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found")

	_, err = runApp(t, append(args, "sessions", "show", "missing")...)
	require.Error(t, err)
}

func TestSessionsCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	args := []string{"--config", "/nonexistent.yaml", "--db", db}

	// Seed a session through the library, then manage it through the CLI.
	engine, err := recall.Open(context.Background(), db,
		recall.WithProvider(mock.NewMockProvider()),
		recall.WithAIConfig(ai.NewConfig(ai.WithDimensions(ai.DefaultConfig().Dimensions))))
	require.NoError(t, err)
	session, err := engine.Sessions().NewSession(context.Background(), "Horror night")
	require.NoError(t, err)
	require.NoError(t, engine.Close())

	out, err := runApp(t, append(args, "sessions", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, session.ID.String())
	assert.Contains(t, out, "Horror night")

	out, err = runApp(t, append(args, "sessions", "rename", session.ID.String(), "Scary", "movies")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"Scary movies"`)

	out, err = runApp(t, append(args, "sessions", "delete", session.ID.String())...)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	out, err = runApp(t, append(args, "sessions")...)
	require.NoError(t, err)
	assert.NotContains(t, out, session.ID.String())
}

func TestAddItem_RequiresInput(t *testing.T) {
	_, err := runApp(t, "--config", "/nonexistent.yaml", "add-item")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file or --title")
}

func TestItemFromFlags_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "The Grudge", "year": 2020, "genres": ["Horror"]}`), 0644))

	app := newApp()
	var title string
	app.Commands = []*cli.Command{{
		Name:  "inspect",
		Flags: findCommand(newApp(), "add-item").Flags,
		Action: func(c *cli.Context) error {
			item, err := itemFromFlags(c)
			if err != nil {
				return err
			}
			title = item.Title
			return nil
		},
	}}
	require.NoError(t, app.Run([]string{"recall", "inspect", "--file", path}))
	assert.Equal(t, "The Grudge", title)
}
