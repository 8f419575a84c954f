// Package graph assembles RDF triples from the extracted document model,
// serialises them as Turtle and offers a few read-side helpers over the
// cross-reference network.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/model"
)

// Sink receives finished triples, typically backed by a SPARQL store.
type Sink interface {
	Submit(ctx context.Context, triples []rdf.Triple) error
}

// Build turns a legal code and its consolidated concept index into triples.
// Statements appear in document order with concepts sorted by id at the end;
// exact duplicates are dropped so the result behaves like a set.
func Build(code *model.LegalCode, concepts map[string]model.LegalConcept) ([]rdf.Triple, error) {
	e := newEmitter()

	codeIRI, err := iri(code.ID)
	if err != nil {
		return nil, fmt.Errorf("graph: code id %q: %w", code.ID, err)
	}
	e.add(codeIRI, RDFType, LegalCodeClass)
	e.add(codeIRI, DCTitle, stringLit(code.Title))

	for _, norm := range code.Norms {
		normIRI, err := iri(norm.ID)
		if err != nil {
			return nil, fmt.Errorf("graph: norm %s: %w", norm.NormIdentifier, err)
		}
		e.add(normIRI, RDFType, NormClass)
		e.add(codeIRI, HasNorm, normIRI)
		e.add(normIRI, NormIdentifier, stringLit(norm.NormIdentifier))
		if norm.Title != "" {
			e.add(normIRI, DCTitle, stringLit(norm.Title))
		}
		e.add(normIRI, IsRepealed, boolLit(norm.IsRepealed))

		for _, para := range norm.Paragraphs {
			paraIRI, err := iri(para.ID)
			if err != nil {
				return nil, fmt.Errorf("graph: paragraph %s: %w", para.ID, err)
			}
			e.add(paraIRI, RDFType, ParagraphClass)
			e.add(normIRI, HasParagraph, paraIRI)
			e.add(paraIRI, ParagraphIdentifier, stringLit(para.ParagraphIdentifier))
			e.add(paraIRI, TextContent, stringLit(para.TextContent))

			// Targets pointing outside the document are kept; resolving
			// them is the consumer's concern.
			for _, ref := range para.RefersTo {
				targetIRI, err := iri(ref.TargetNormID)
				if err != nil {
					return nil, fmt.Errorf("graph: reference target %s: %w", ref.TargetNormID, err)
				}
				e.add(paraIRI, RefersTo, targetIRI)
			}
		}
	}

	ids := make([]string, 0, len(concepts))
	for id := range concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := concepts[id]
		conceptIRI, err := iri(c.ID)
		if err != nil {
			return nil, fmt.Errorf("graph: concept %q: %w", c.Label, err)
		}
		e.add(conceptIRI, RDFType, LegalConceptClass)
		e.add(conceptIRI, RDFSLabel, stringLit(c.Label))
		if c.DefinedIn != "" {
			definerIRI, err := iri(c.DefinedIn)
			if err != nil {
				return nil, fmt.Errorf("graph: concept %q definer: %w", c.Label, err)
			}
			e.add(definerIRI, Defines, conceptIRI)
		}
	}

	return e.triples, nil
}

// emitter collects triples while discarding exact duplicates.
type emitter struct {
	triples []rdf.Triple
	seen    map[string]bool
}

func newEmitter() *emitter {
	return &emitter{seen: make(map[string]bool)}
}

func (e *emitter) add(subj rdf.Subject, pred rdf.Predicate, obj rdf.Object) {
	t := rdf.Triple{Subj: subj, Pred: pred, Obj: obj}
	key := t.Serialize(rdf.NTriples)
	if e.seen[key] {
		return
	}
	e.seen[key] = true
	e.triples = append(e.triples, t)
}

// iri expands a compact data:/onto: identifier into a full IRI term.
func iri(id string) (rdf.IRI, error) {
	return rdf.NewIRI(model.ExpandCURIE(id))
}

// stringLit and boolLit wrap rdf.NewLiteral for inputs it always accepts.

func stringLit(s string) rdf.Literal {
	l, _ := rdf.NewLiteral(s)
	return l
}

func boolLit(b bool) rdf.Literal {
	l, _ := rdf.NewLiteral(b)
	return l
}
