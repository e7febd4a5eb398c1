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

	"github.com/urfave/cli/v2"

	"github.com/poiesic/clinquery"
	"github.com/poiesic/clinquery/config"
	"github.com/poiesic/clinquery/search"
	"github.com/poiesic/clinquery/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "clinquery",
		Usage: "Retrieval engine for clinical Q&A datasets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:     "dataset",
				Aliases:  []string{"d"},
				Usage:    "Path to the JSON dataset file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Graph cache directory (overrides cache_path from config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank documents against a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "min-score",
						Usage: "Drop results scoring below this value",
					},
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Keep only results matching this keyword (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "cancer-type",
						Usage: "Keep only documents tagged with this cancer type (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "gene",
						Usage: "Keep only documents tagged with this gene (repeatable)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to print",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "closest",
						Usage: "Use the legacy closest-match backend instead of ranking",
					},
				},
			},
			{
				Name:      "related",
				Usage:     "List concepts related to a query via the knowledge graph",
				ArgsUsage: "<query>",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "Maximum number of concepts to print (0 uses the configured default)",
					},
				},
			},
			{
				Name:   "build-graph",
				Usage:  "Build the knowledge graph and persist it to the cache",
				Action: buildGraphCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newEngine assembles an engine from the global flags and loads the dataset.
func newEngine(c *cli.Context) (*clinquery.Engine, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if path := c.String("cache"); path != "" {
		cfg.CachePath = path
	}

	opts := []clinquery.Option{clinquery.WithLogger(slog.Default())}
	if cfg.CachePath != "" {
		cache, err := badger.NewGraphCache(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open graph cache: %w", err)
		}
		opts = append(opts, clinquery.WithGraphCache(cache))
	}

	engine, err := clinquery.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := engine.LoadDatasetFile(context.Background(), c.String("dataset")); err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return engine, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()

	if c.Bool("closest") {
		doc, ok, err := engine.ClosestMatch(ctx, query)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No sufficiently similar document found.")
			return nil
		}
		fmt.Printf("[%d] %s\n    %s\n", doc.Id, doc.Prompt, doc.Completion)
		return nil
	}

	facets := search.FacetFilters{}
	if values := c.StringSlice("cancer-type"); len(values) > 0 {
		facets[search.FacetCancerType] = values
	}
	if values := c.StringSlice("gene"); len(values) > 0 {
		facets[search.FacetGenes] = values
	}

	results, err := engine.Search(ctx, clinquery.SearchRequest{
		Query:    query,
		MinScore: c.Int("min-score"),
		Keywords: c.StringSlice("keyword"),
		Facets:   facets,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	limit := c.Int("limit")
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for _, r := range results {
		fmt.Printf("[%d] score=%d (prompt=%d completion=%d) tokens=%s\n",
			r.Document.Id, r.Score, r.PromptMatches, r.CompletionMatches,
			strings.Join(r.MatchedTokens, ","))
		fmt.Printf("    %s\n    %s\n", r.Document.Prompt, r.Document.Completion)
	}
	return nil
}

func relatedCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	concepts, err := engine.RelatedConcepts(context.Background(), query, c.Int("top-n"))
	if err != nil {
		return err
	}
	if len(concepts) == 0 {
		fmt.Println("No related concepts.")
		return nil
	}
	for _, concept := range concepts {
		fmt.Printf("%-40s %d\n", concept.Concept, concept.Weight)
	}
	return nil
}

func buildGraphCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	g, err := engine.BuildOrLoadGraph(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Graph ready: %d nodes, %d co-occurrence edges, %d relations\n",
		g.NodeCount(), len(g.CoocEdges()), len(g.Relations()))
	return nil
}

func setupLogger(c *cli.Context) error {
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
