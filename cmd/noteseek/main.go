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
	"strings"
	"time"

	"github.com/poiesic/noteseek"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/indexer"
	"github.com/poiesic/noteseek/search"
	"github.com/poiesic/noteseek/vault"
	"github.com/urfave/cli/v2"
)

var dbFlag = &cli.StringFlag{
	Name:     "db",
	Aliases:  []string{"d"},
	Usage:    "Path to the index database directory",
	Required: true,
}

func main() {
	app := &cli.App{
		Name:  "noteseek",
		Usage: "Offline semantic search for a markdown note vault",
		Flags: []cli.Flag{
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
				Name:   "index",
				Usage:  "Reindex a note vault (incremental; only changed notes are embedded)",
				Action: indexCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "vault",
						Aliases:  []string{"v"},
						Usage:    "Path to the note vault directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding (default: half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "lock-attempts",
						Usage: "Maximum attempts to acquire the index write lock",
						Value: indexer.DefaultLockAttempts,
					},
					&cli.DurationFlag{
						Name:  "lock-delay",
						Usage: "Base delay for lock acquisition backoff",
						Value: indexer.DefaultLockDelay,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index with a hybrid semantic and keyword query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultLimit,
					},
					&cli.Float64Flag{
						Name:  "alpha",
						Usage: "Weight of the semantic signal (0..1); the rest goes to keywords",
						Value: float64(search.DefaultAlpha),
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only return notes with this frontmatter type",
					},
					&cli.StringFlag{
						Name:  "area",
						Usage: "Only return notes with this frontmatter area",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only return notes with this frontmatter status",
					},
				},
			},
			{
				Name:      "related",
				Usage:     "Find the nearest neighbors of an indexed note",
				ArgsUsage: "<note-id>",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultLimit,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show index statistics",
				Action: statusCommand,
				Flags:  []cli.Flag{dbFlag},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	source, err := vault.NewDir(c.String("vault"))
	if err != nil {
		return err
	}

	index, err := noteseek.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	opts := []indexer.Option{
		indexer.WithProgress(os.Stderr),
		indexer.WithLockRetry(c.Int("lock-attempts"), c.Duration("lock-delay")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, indexer.WithPoolSize(size))
	}

	ix, err := index.NewIndexer(opts...)
	if err != nil {
		return err
	}
	defer ix.Release()

	summary, err := ix.Reindex(ctx, source)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	if summary.FullRebuild {
		fmt.Fprintln(os.Stderr, "Index configuration changed; rebuilt from scratch.")
	}
	fmt.Printf("Indexed %d, unchanged %d, removed %d in %v\n",
		summary.Updated, summary.Unchanged, summary.Deleted,
		summary.Duration.Round(time.Millisecond))
	for _, id := range summary.FailedIDs {
		fmt.Fprintf(os.Stderr, "Skipped unreadable note: %s\n", id)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	index, err := noteseek.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	searcher, err := index.NewSearcher(search.WithAlpha(float32(c.Float64("alpha"))))
	if err != nil {
		return err
	}

	filter := core.Filter{
		Type:   c.String("type"),
		Area:   c.String("area"),
		Status: c.String("status"),
	}

	results, err := searcher.Search(context.Background(), query, filter, c.Int("limit"))
	if err != nil {
		return err
	}

	printResults(results)
	return nil
}

func relatedCommand(c *cli.Context) error {
	noteID := c.Args().First()
	if noteID == "" {
		return fmt.Errorf("a note id is required")
	}

	index, err := noteseek.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	searcher, err := index.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.Related(context.Background(), noteID, c.Int("limit"))
	if err != nil {
		return err
	}

	printResults(results)
	return nil
}

func statusCommand(c *cli.Context) error {
	index, err := noteseek.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	status, err := index.Status(context.Background())
	if err != nil {
		return err
	}

	if !status.Built {
		fmt.Println("Index has not been built yet.")
		return nil
	}

	fmt.Printf("Notes indexed:    %d\n", status.Notes)
	fmt.Printf("Vector dimension: %d\n", status.Dimension)
	fmt.Printf("Tokenizer rules:  v%d\n", status.TokenizerRules)
	fmt.Printf("Derivation:       v%d\n", status.Derivation)
	if status.LastIndexed.IsZero() {
		fmt.Println("Last indexed:     never")
	} else {
		fmt.Printf("Last indexed:     %s\n", status.LastIndexed.Local().Format(time.RFC1123))
	}

	return nil
}

func printResults(results []core.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, result := range results {
		fmt.Printf("%2d. %-40s %.4f  [%s]\n", i+1, result.NoteID, result.Score, result.Signal)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
