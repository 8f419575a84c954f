package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/normgraph/normgraph/search"
	"github.com/normgraph/normgraph/sink"
	"github.com/normgraph/normgraph/tui"
)

func runQuery(cmd *cobra.Command, args []string) error {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to read --db flag: %w", err)
	}
	solrURL, err := cmd.Flags().GetString("solr")
	if err != nil {
		return fmt.Errorf("failed to read --solr flag: %w", err)
	}
	docType, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to read --type flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to read --limit flag: %w", err)
	}
	interactive, err := cmd.Flags().GetBool("interactive")
	if err != nil {
		return fmt.Errorf("failed to read --interactive flag: %w", err)
	}

	if interactive {
		if solrURL != "" {
			return fmt.Errorf("interactive mode requires the local index (--db)")
		}
		if dbPath == "" {
			dbPath = cfg.IndexPath
		}
		idx, err := openExistingIndex(dbPath)
		if err != nil {
			return err
		}
		defer idx.Close()

		if _, err := tea.NewProgram(tui.New(idx, docType)).Run(); err != nil {
			return fmt.Errorf("running browser: %w", err)
		}
		return nil
	}

	q := strings.TrimSpace(strings.Join(args, " "))
	if q == "" {
		return fmt.Errorf("query terms required (or -i for the interactive browser)")
	}
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if solrURL != "" {
		solr := sink.NewSolr(solrURL)
		res, err := solr.Query(ctx, q, docType, limit)
		if err != nil {
			return err
		}
		if len(res.Docs) == 0 {
			fmt.Fprintf(w, "no hits for %q\n", q)
			return nil
		}
		fmt.Fprintf(w, "%d hits for %q\n\n", res.NumFound, q)
		for i, doc := range res.Docs {
			printHit(w, i, doc, 0, "")
		}
		return nil
	}

	if dbPath == "" {
		dbPath = cfg.IndexPath
	}
	idx, err := openExistingIndex(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(ctx, q, docType, limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintf(w, "no hits for %q\n", q)
		return nil
	}
	fmt.Fprintf(w, "%d hits for %q\n\n", len(hits), q)
	for i, h := range hits {
		printHit(w, i, h.Document, h.Score, h.Snippet)
	}
	return nil
}

// openExistingIndex refuses to create a fresh database on query, which
// would otherwise silently answer every search with zero hits.
func openExistingIndex(path string) (*sink.Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no index at %s (run \"normgraph index --db %s\" first)", path, path)
	}
	return sink.OpenIndex(path)
}

func printHit(w io.Writer, i int, doc search.Document, score float64, snippet string) {
	if score != 0 {
		fmt.Fprintf(w, "%d. %s (score %.3f)\n", i+1, doc.Type, score)
	} else {
		fmt.Fprintf(w, "%d. %s\n", i+1, doc.Type)
	}
	fmt.Fprintf(w, "   uri: %s\n", doc.URI)
	if doc.Label != "" {
		fmt.Fprintf(w, "   label: %s\n", doc.Label)
	}
	if doc.Title != "" {
		fmt.Fprintf(w, "   title: %s\n", doc.Title)
	}
	if doc.NormNumber != "" {
		fmt.Fprintf(w, "   norm: § %s\n", doc.NormNumber)
	}
	if doc.ParagraphNumber != "" {
		fmt.Fprintf(w, "   paragraph: %s\n", doc.ParagraphNumber)
	}
	if snippet != "" {
		fmt.Fprintf(w, "   match: %s\n", snippet)
	} else if doc.TextContent != "" {
		fmt.Fprintf(w, "   text: %s\n", truncate(doc.TextContent, 200))
	}
	fmt.Fprintln(w)
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
