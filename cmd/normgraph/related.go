package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/normgraph/normgraph/graph"
)

func runRelated(cmd *cobra.Command, args []string) error {
	ttlPath, err := cmd.Flags().GetString("graph")
	if err != nil {
		return fmt.Errorf("failed to read --graph flag: %w", err)
	}
	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return fmt.Errorf("failed to read --depth flag: %w", err)
	}
	if depth < 1 {
		return fmt.Errorf("--depth must be at least 1")
	}

	// Accepts "433", "§433" and "§ 433" alike.
	ident := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args[0]), "§"))
	if ident == "" {
		return fmt.Errorf("norm identifier required")
	}

	triples, err := graph.ReadTurtleFile(ttlPath)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	related := graph.Neighborhood(triples, ident, depth)
	if len(related) == 0 {
		fmt.Fprintf(w, "no citations around § %s\n", ident)
		return nil
	}
	fmt.Fprintf(w, "norms within %d hops of § %s:\n", depth, ident)
	for _, n := range related {
		fmt.Fprintf(w, "  § %s\n", n)
	}
	return nil
}
