package normgraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/extract"
	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/lawxml"
	"github.com/normgraph/normgraph/model"
	"github.com/normgraph/normgraph/search"
)

// Pipeline turns a statute XML export into a knowledge graph and a set
// of search documents.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	applyConfigDefaults(&cfg)
	return &Pipeline{cfg: cfg}
}

// Result bundles everything one pipeline run produces.
type Result struct {
	Code      *model.LegalCode
	Concepts  map[string]model.LegalConcept
	Triples   []rdf.Triple
	Documents []search.Document
}

// Transform parses the statute XML in r and extracts the legal code
// model: norms, paragraphs, references and concept definitions.
func (p *Pipeline) Transform(r io.Reader) (*model.LegalCode, error) {
	start := time.Now()

	doc, err := lawxml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	code := p.buildCode(doc)
	if len(code.Norms) == 0 {
		return nil, fmt.Errorf("%w: no norms found", ErrInvalidDocument)
	}

	paragraphs := 0
	for i := range code.Norms {
		paragraphs += len(code.Norms[i].Paragraphs)
	}
	slog.Info("transform: extraction complete",
		"code", code.ID, "norms", len(code.Norms), "paragraphs", paragraphs,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return code, nil
}

// TransformFile is Transform reading from the file at path.
func (p *Pipeline) TransformFile(path string) (*model.LegalCode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer f.Close()
	return p.Transform(f)
}

// buildCode maps parsed provisions onto the model. Provisions without a
// recognizable norm identifier (tables of contents, section headings)
// are dropped.
func (p *Pipeline) buildCode(doc *lawxml.Document) *model.LegalCode {
	code := &model.LegalCode{
		ID:    p.cfg.CodeID,
		Title: doc.Title,
	}
	if code.Title == "" {
		code.Title = p.cfg.CodeTitle
	}
	for _, seed := range p.cfg.Concepts {
		code.Concepts = append(code.Concepts, seed.Concept())
	}

	for _, prov := range doc.Provisions {
		ident, ok := extract.Identifier(prov.Label, prov.Title)
		if !ok {
			continue
		}
		norm := model.Norm{
			ID:             model.NormID(ident),
			NormIdentifier: extract.CanonicalIdentifier(ident),
			Title:          prov.Title,
			IsRepealed:     extract.IsRepealed(prov.Title, prov.Body),
		}
		for _, part := range extract.SplitParagraphs(prov.Body) {
			para := model.Paragraph{
				ID:                  model.ParagraphID(norm.ID, part.Key),
				ParagraphIdentifier: part.Number,
				TextContent:         part.Text,
			}
			for _, ref := range extract.FindReferences(part.Text) {
				para.RefersTo = append(para.RefersTo, model.Reference{
					TargetNormID: model.NormID(ref.Number),
					TextSnippet:  ref.Snippet,
				})
			}
			for _, def := range extract.FindDefinitions(part.Text) {
				para.DefinesConcepts = append(para.DefinesConcepts, model.LegalConcept{
					ID:        model.ConceptID(def.Label),
					Label:     def.Label,
					DefinedIn: para.ID,
				})
			}
			norm.Paragraphs = append(norm.Paragraphs, para)
		}
		code.Norms = append(code.Norms, norm)
	}
	return code
}

// Run executes the full pipeline on the statute XML in r: transform,
// graph assembly and search projection. Nothing is delivered anywhere;
// use LoadGraph and IndexDocuments for that.
func (p *Pipeline) Run(r io.Reader) (*Result, error) {
	code, err := p.Transform(r)
	if err != nil {
		return nil, err
	}

	concepts := model.BuildConceptIndex(code)

	start := time.Now()
	triples, err := graph.Build(code, concepts)
	if err != nil {
		return nil, err
	}
	slog.Info("graph: assembly complete",
		"triples", len(triples), "concepts", len(concepts),
		"elapsed", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	docs := search.Project(triples)
	slog.Info("search: projection complete",
		"documents", len(docs),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Result{Code: code, Concepts: concepts, Triples: triples, Documents: docs}, nil
}

// LoadGraph submits the triples to the given store in one request.
func (p *Pipeline) LoadGraph(ctx context.Context, store graph.Sink, triples []rdf.Triple) error {
	start := time.Now()
	if err := store.Submit(ctx, triples); err != nil {
		return fmt.Errorf("%w: %v", ErrGraphLoad, err)
	}
	slog.Info("graph: load complete",
		"triples", len(triples), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// IndexDocuments delivers the search documents to the given sink in
// batches of the configured size.
func (p *Pipeline) IndexDocuments(ctx context.Context, sink search.Sink, docs []search.Document) error {
	start := time.Now()
	if err := search.Deliver(ctx, sink, docs, p.cfg.BatchSize); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexing, err)
	}
	slog.Info("search: indexing complete",
		"documents", len(docs), "batch_size", p.cfg.BatchSize,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
