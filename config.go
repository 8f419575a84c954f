package normgraph

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/normgraph/normgraph/model"
)

// Config holds all configuration for the extraction pipeline.
type Config struct {
	// CodeID is the compact identifier of the legal code node,
	// e.g. "data:BGB".
	CodeID string `json:"code_id" yaml:"code_id"`

	// CodeTitle is used when the source document carries no title of
	// its own.
	CodeTitle string `json:"code_title" yaml:"code_title"`

	// SPARQLURL is the base URL of the triple store,
	// e.g. "http://localhost:9999/bigdata".
	SPARQLURL string `json:"sparql_url" yaml:"sparql_url"`

	// SolrURL is the full core URL,
	// e.g. "http://localhost:8984/solr/bgb_core".
	SolrURL string `json:"solr_url" yaml:"solr_url"`

	// IndexPath is the path of the embedded SQLite search index used
	// when no Solr core is available.
	IndexPath string `json:"index_path" yaml:"index_path"`

	// BatchSize controls how many search documents are delivered per
	// request.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Concepts pre-declares legal concepts that the text heuristics
	// cannot find on their own. Pre-declared concepts win over
	// heuristic hits with the same identifier.
	Concepts []ConceptSeed `json:"concepts,omitempty" yaml:"concepts,omitempty"`
}

// ConceptSeed pre-declares one legal concept by label. DefinedIn may be
// a compact or expanded paragraph identifier, or empty for concepts
// without a known definition site.
type ConceptSeed struct {
	Label     string `json:"label" yaml:"label"`
	DefinedIn string `json:"defined_in,omitempty" yaml:"defined_in,omitempty"`
}

// Concept converts the seed into its model form.
func (s ConceptSeed) Concept() model.LegalConcept {
	return model.LegalConcept{
		ID:        model.ConceptID(s.Label),
		Label:     s.Label,
		DefinedIn: s.DefinedIn,
	}
}

// DefaultConfig returns a Config wired for the local docker setup:
// Blazegraph on 9999, Solr on 8984, the German civil code as subject.
func DefaultConfig() Config {
	return Config{
		CodeID:    "data:BGB",
		CodeTitle: "Bürgerliches Gesetzbuch",
		SPARQLURL: "http://localhost:9999/bigdata",
		SolrURL:   "http://localhost:8984/solr/bgb_core",
		IndexPath: "normgraph.db",
		BatchSize: 100,
	}
}

// LoadConfig reads a YAML config from path. A missing file yields the
// defaults; a present file is merged over them.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyConfigDefaults(&cfg)
	return cfg, nil
}

func applyConfigDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.CodeID == "" {
		cfg.CodeID = def.CodeID
	}
	if cfg.CodeTitle == "" {
		cfg.CodeTitle = def.CodeTitle
	}
	if cfg.SPARQLURL == "" {
		cfg.SPARQLURL = def.SPARQLURL
	}
	if cfg.SolrURL == "" {
		cfg.SolrURL = def.SolrURL
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = def.IndexPath
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
}
