package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/api"
	"github.com/poiesic/recall/catalog"
	"github.com/poiesic/recall/chat"
	"github.com/poiesic/recall/config"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
)

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(blobSource(cfg))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewHandler(api.Deps{
			Catalog:  engine.Catalog(),
			Sessions: engine.Sessions(),
			Chat:     engine.Chat(),
			Ingester: pipeline,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "recall listening on %s\n", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-c.Context.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func blobSource(cfg *config.Config) ingestion.BlobSource {
	if cfg.Ingest.BaseURL != "" {
		return ingestion.NewHTTPSource(cfg.Ingest.BaseURL, &http.Client{Timeout: 5 * time.Minute})
	}
	return ingestion.NewDirSource(cfg.Ingest.Dir)
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if blob := c.String("blob"); blob != "" {
		cfg.Ingest.Blob = blob
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Ingest.Dir = dir
		cfg.Ingest.BaseURL = ""
	}
	if url := c.String("url"); url != "" {
		cfg.Ingest.BaseURL = url
	}

	engine, err := openEngine(c, cfg,
		recall.WithCatalogOptions(catalog.WithProgress(newProgress(os.Stderr, "Vectorizing"))))
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(blobSource(cfg))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(os.Stderr, "Blob: %s\n", cfg.Ingest.Blob)
	fmt.Fprintln(os.Stderr)

	if c.Bool("skip-vectorize") {
		blobs, err := pipeline.Stage(c.Context, cfg.Ingest.Blob)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		result, err := pipeline.Import(c.Context, blobs)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Imported %d items (%d duplicates, %d rejected)\n",
			result.Imported, len(result.Duplicates), len(result.Rejected))
		return nil
	}

	report, err := pipeline.Run(c.Context, cfg.Ingest.Blob)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d items from %d blobs (%d duplicates, %d rejected), vectorized %d\n",
		report.Imported, len(report.Blobs), report.Duplicates, report.Rejected, report.Vectorized)
	return nil
}

func vectorizeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c, cfg,
		recall.WithCatalogOptions(catalog.WithProgress(newProgress(os.Stderr, "Vectorizing"))))
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := engine.Catalog().VectorizeAll(c.Context)
	if err != nil {
		return fmt.Errorf("vectorization failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Vectorized %d items\n", n)
	return nil
}

// itemFromFlags builds an item from --file, or from the individual fields.
func itemFromFlags(c *cli.Context) (*core.Item, error) {
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var item core.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidArgument, path, err)
		}
		return &item, nil
	}
	if c.String("title") == "" {
		return nil, errors.New("either --file or --title is required")
	}
	return &core.Item{
		Title:   c.String("title"),
		Year:    c.Int("year"),
		Genres:  c.StringSlice("genre"),
		Cast:    c.StringSlice("cast"),
		Extract: c.String("extract"),
	}, nil
}

func addItemCommand(c *cli.Context) error {
	item, err := itemFromFlags(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	saved, err := engine.Catalog().UpsertItem(c.Context, item)
	if err != nil {
		return fmt.Errorf("add-item failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Added %s (%s, %d)\n", saved.ID, saved.Title, saved.Year)
	return nil
}

func removeItemCommand(c *cli.Context) error {
	item := &core.Item{
		ID:    core.ID(c.String("id")),
		Title: c.String("title"),
		Year:  c.Int("year"),
	}
	if item.ID == "" && item.Title == "" {
		return errors.New("either --id or --title is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Catalog().DeleteItem(c.Context, item); err != nil {
		return fmt.Errorf("remove-item failed: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "Removed")
	return nil
}

func chatCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	sessionID := core.ID(c.String("session"))
	if sessionID == "" {
		session, err := engine.Sessions().NewSession(c.Context, "")
		if err != nil {
			return err
		}
		sessionID = session.ID
	}
	fmt.Fprintf(os.Stderr, "Session: %s\n", sessionID)

	if c.Args().Present() {
		return runTurn(c.Context, c.App.Writer, engine.Chat(), sessionID, strings.Join(c.Args().Slice(), " "))
	}
	return chatLoop(c.Context, c.App.Reader, c.App.Writer, engine.Chat(), sessionID)
}

// chatLoop runs one turn per input line until EOF or an empty line.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, orchestrator *chat.Orchestrator, sessionID core.ID) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			return nil
		}
		if err := runTurn(ctx, out, orchestrator, sessionID, prompt); err != nil {
			return err
		}
	}
}

func runTurn(ctx context.Context, out io.Writer, orchestrator *chat.Orchestrator, sessionID core.ID, prompt string) error {
	result, err := orchestrator.Turn(ctx, sessionID, prompt)
	if err != nil {
		return fmt.Errorf("chat turn failed: %w", err)
	}
	fmt.Fprintln(out, result.Completion.Text)
	fmt.Fprintf(out, "[%s | %d hits | %d tokens]\n", result.Session.Name, len(result.Hits), result.Session.Tokens)
	return nil
}

func listSessionsCommand(c *cli.Context) error {
	return withEngine(c, func(engine *recall.Engine) error {
		sessions, err := engine.Sessions().ListSessions(c.Context)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%d turns\t%d tokens\t%s\n",
				s.ID, s.Name, s.Turns, s.Tokens, s.UpdatedAt.Local().Format(time.DateTime))
		}
		return nil
	})
}

func showSessionCommand(c *cli.Context) error {
	id := core.ID(c.Args().First())
	if id == "" {
		return errors.New("session id is required")
	}
	return withEngine(c, func(engine *recall.Engine) error {
		messages, err := engine.Sessions().ListMessages(c.Context, id)
		if err != nil {
			return err
		}
		for _, m := range messages {
			fmt.Fprintf(c.App.Writer, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.DateTime), m.Role, m.Text)
		}
		return nil
	})
}

func renameSessionCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("session id and name are required")
	}
	id := core.ID(c.Args().First())
	name := strings.Join(c.Args().Tail(), " ")
	return withEngine(c, func(engine *recall.Engine) error {
		session, err := engine.Sessions().Rename(c.Context, id, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Renamed %s to %q\n", session.ID, session.Name)
		return nil
	})
}

func deleteSessionCommand(c *cli.Context) error {
	id := core.ID(c.Args().First())
	if id == "" {
		return errors.New("session id is required")
	}
	return withEngine(c, func(engine *recall.Engine) error {
		if err := engine.Sessions().DeleteSession(c.Context, id); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted %s\n", id)
		return nil
	})
}

func reconcileCommand(c *cli.Context) error {
	return withEngine(c, func(engine *recall.Engine) error {
		n, err := engine.Catalog().Reconcile(c.Context)
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Removed %d orphaned vector records\n", n)
		return nil
	})
}

func withEngine(c *cli.Context, fn func(*recall.Engine) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()
	return fn(engine)
}
