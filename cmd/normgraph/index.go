package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/normgraph/normgraph"
	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/search"
	"github.com/normgraph/normgraph/sink"
)

func runIndex(cmd *cobra.Command, args []string) error {
	solrURL, err := cmd.Flags().GetString("solr")
	if err != nil {
		return fmt.Errorf("failed to read --solr flag: %w", err)
	}
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to read --db flag: %w", err)
	}
	batchSize, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		return fmt.Errorf("failed to read --batch-size flag: %w", err)
	}
	clearFirst, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return fmt.Errorf("failed to read --clear flag: %w", err)
	}
	if solrURL != "" && dbPath != "" {
		return fmt.Errorf("choose one of --solr or --db")
	}

	triples, err := graph.ReadTurtleFile(args[0])
	if err != nil {
		return err
	}
	docs := search.Project(triples)

	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	p := normgraph.New(cfg)
	ctx := cmd.Context()

	if dbPath != "" {
		idx, err := sink.OpenIndex(dbPath)
		if err != nil {
			return err
		}
		defer idx.Close()

		if clearFirst {
			if err := idx.Clear(ctx); err != nil {
				return err
			}
		}
		if err := p.IndexDocuments(ctx, idx, docs); err != nil {
			return err
		}
		count, err := idx.Count(ctx)
		if err != nil {
			return err
		}
		slog.Info("index: local index populated", "db", dbPath, "documents", count)
		return nil
	}

	if solrURL == "" {
		solrURL = cfg.SolrURL
	}
	solr := sink.NewSolr(solrURL)
	if err := solr.Ping(ctx); err != nil {
		return fmt.Errorf("solr unreachable at %s: %w", solrURL, err)
	}
	if clearFirst {
		if err := solr.Clear(ctx); err != nil {
			return err
		}
	}
	if err := p.IndexDocuments(ctx, solr, docs); err != nil {
		return err
	}
	slog.Info("index: solr core populated", "core", solrURL, "documents", len(docs))
	return nil
}
