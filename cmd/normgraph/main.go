// Command normgraph drives the statute extraction pipeline: transform
// published statute XML into a structured dump and a Turtle graph, load the
// graph into a SPARQL store, index it into a search sink and query the
// result.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/normgraph/normgraph"
)

var version = "0.1.0-dev"

// cfg is loaded once by the root command's PersistentPreRunE and shared by
// all subcommands.
var cfg normgraph.Config

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "normgraph",
		Short: "Extract a legal code into a knowledge graph and search index",
		Long: `Normgraph turns the published XML of a German legal code into a small
RDF knowledge graph and a set of flat search documents.

The pipeline runs in stages, one subcommand each: transform extracts the
XML into a structured JSON dump and a Turtle file, load pushes the Turtle
into a SPARQL store (Blazegraph-style), index projects it into search
documents for a Solr core or a local SQLite index, and query searches the
indexed documents.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelName, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return fmt.Errorf("failed to read --log-level flag: %w", err)
			}
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to read --config flag: %w", err)
			}
			return setup(levelName, configPath)
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")

	transformCmd := &cobra.Command{
		Use:   "transform <statute.xml>",
		Short: "Extract statute XML into a JSON dump and a Turtle graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransform,
	}
	transformCmd.Flags().String("json", "law.json", "Structured dump output path")
	transformCmd.Flags().String("ttl", "graph.ttl", "Turtle output path")
	transformCmd.Flags().Bool("jsonld", false, "Write the dump as JSON-LD with an @context block")

	loadCmd := &cobra.Command{
		Use:   "load <graph.ttl>",
		Short: "Load a Turtle graph into the SPARQL store",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	loadCmd.Flags().Bool("clear", false, "Drop all statements from the store first")
	loadCmd.Flags().Bool("wait", false, "Wait for the store to become reachable before loading")
	loadCmd.Flags().Bool("verify", false, "Run sample queries against the store after loading")

	indexCmd := &cobra.Command{
		Use:   "index <graph.ttl>",
		Short: "Project a Turtle graph into search documents and index them",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}
	indexCmd.Flags().String("solr", "", "Solr core URL (default from config)")
	indexCmd.Flags().String("db", "", "Index into a local SQLite file instead of Solr")
	indexCmd.Flags().Int("batch-size", 0, "Documents per delivery batch (default from config)")
	indexCmd.Flags().Bool("clear", false, "Clear the sink before indexing")

	queryCmd := &cobra.Command{
		Use:   "query [terms...]",
		Short: "Search the document index",
		RunE:  runQuery,
	}
	queryCmd.Flags().String("db", "", "Local SQLite index path (default from config)")
	queryCmd.Flags().String("solr", "", "Query a Solr core instead of the local index")
	queryCmd.Flags().String("type", "", "Restrict to one document type (legal_code|norm|paragraph|legal_concept)")
	queryCmd.Flags().Int("limit", 10, "Maximum number of hits")
	queryCmd.Flags().BoolP("interactive", "i", false, "Open the interactive browser")

	reportCmd := &cobra.Command{
		Use:   "report <law.json>",
		Short: "Write an xlsx curation report from the structured dump",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().String("out", "report.xlsx", "Workbook output path")

	relatedCmd := &cobra.Command{
		Use:   "related <norm>",
		Short: "List norms connected to one norm through citations",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelated,
	}
	relatedCmd.Flags().String("graph", "graph.ttl", "Turtle graph to read")
	relatedCmd.Flags().Int("depth", 2, "Maximum citation hops to follow")

	rootCmd.AddCommand(
		transformCmd,
		loadCmd,
		indexCmd,
		queryCmd,
		reportCmd,
		relatedCmd,
	)

	return rootCmd
}

// setup installs the process-wide logger and loads the shared config.
func setup(levelName, configPath string) error {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", levelName)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	// A missing default config falls back silently; a config named on the
	// command line has to exist.
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	var err error
	cfg, err = normgraph.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Override from environment variables.
	if v := os.Getenv("NORMGRAPH_SPARQL_URL"); v != "" {
		cfg.SPARQLURL = v
	}
	if v := os.Getenv("NORMGRAPH_SOLR_URL"); v != "" {
		cfg.SolrURL = v
	}
	if v := os.Getenv("NORMGRAPH_INDEX_PATH"); v != "" {
		cfg.IndexPath = v
	}
	return nil
}
