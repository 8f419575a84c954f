package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/normgraph/normgraph"
	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/model"
)

func runTransform(cmd *cobra.Command, args []string) error {
	jsonPath, err := cmd.Flags().GetString("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	ttlPath, err := cmd.Flags().GetString("ttl")
	if err != nil {
		return fmt.Errorf("failed to read --ttl flag: %w", err)
	}
	jsonLD, err := cmd.Flags().GetBool("jsonld")
	if err != nil {
		return fmt.Errorf("failed to read --jsonld flag: %w", err)
	}

	p := normgraph.New(cfg)
	code, err := p.TransformFile(args[0])
	if err != nil {
		return err
	}

	concepts := model.BuildConceptIndex(code)
	triples, err := graph.Build(code, concepts)
	if err != nil {
		return err
	}

	dump, err := model.Dump(code, jsonLD)
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, dump, 0o644); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}

	f, err := os.Create(ttlPath)
	if err != nil {
		return fmt.Errorf("writing turtle: %w", err)
	}
	if err := graph.WriteTurtle(f, triples); err != nil {
		f.Close()
		return fmt.Errorf("writing turtle: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing turtle: %w", err)
	}

	slog.Info("transform: artifacts written",
		"json", jsonPath, "ttl", ttlPath,
		"norms", len(code.Norms), "concepts", len(concepts), "triples", len(triples))
	return nil
}
