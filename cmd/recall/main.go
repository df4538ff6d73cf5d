// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recall",
		Usage: "Retrieval-augmented chat over a movie catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "recall.yaml",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Import a catalog blob and vectorize it",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "blob",
						Usage: "Blob name or doublestar pattern (overrides config)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory holding staged blobs (overrides config)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Base URL to fetch blobs from instead of a directory",
					},
					&cli.BoolFlag{
						Name:  "skip-vectorize",
						Usage: "Only import, leave vectorization for later",
					},
				},
			},
			{
				Name:   "vectorize",
				Usage:  "Compute vector records for every catalog item that needs one",
				Action: vectorizeCommand,
			},
			{
				Name:   "add-item",
				Usage:  "Add or replace a catalog item",
				Action: addItemCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "JSON file holding the item",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Item title",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Release year",
					},
					&cli.StringSliceFlag{
						Name:  "genre",
						Usage: "Genre (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "cast",
						Usage: "Cast member (repeatable)",
					},
					&cli.StringFlag{
						Name:  "extract",
						Usage: "Plot summary",
					},
				},
			},
			{
				Name:   "remove-item",
				Usage:  "Remove a catalog item and its vector record",
				Action: removeItemCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Item ID",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Item title, used with --year when the ID is unknown",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Release year",
					},
				},
			},
			{
				Name:      "chat",
				Usage:     "Ask questions about the catalog",
				ArgsUsage: "[prompt]",
				Action:    chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Continue an existing session instead of starting a new one",
					},
				},
			},
			{
				Name:  "sessions",
				Usage: "Manage chat sessions",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List sessions, most recent first",
						Action: listSessionsCommand,
					},
					{
						Name:      "show",
						Usage:     "Print the messages of a session",
						ArgsUsage: "<session-id>",
						Action:    showSessionCommand,
					},
					{
						Name:      "rename",
						Usage:     "Rename a session",
						ArgsUsage: "<session-id> <name>",
						Action:    renameSessionCommand,
					},
					{
						Name:      "delete",
						Usage:     "Delete a session and its messages",
						ArgsUsage: "<session-id>",
						Action:    deleteSessionCommand,
					},
				},
				Action: listSessionsCommand,
			},
			{
				Name:   "reconcile",
				Usage:  "Remove vector records whose catalog item no longer exists",
				Action: reconcileCommand,
			},
		},
	}
}

// loadConfig reads the configuration file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openEngine(c *cli.Context, cfg *config.Config, opts ...recall.EngineOption) (*recall.Engine, error) {
	engine, err := recall.OpenConfig(c.Context, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
