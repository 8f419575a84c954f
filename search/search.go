// Package search projects the RDF graph into flat documents for full-text
// indexing and delivers them to an index in batches.
package search

import (
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/model"
)

// Document is one index entry. Which optional fields are set depends on the
// Type: legal_code carries Title and HasNorm, legal_concept carries Label,
// norm carries NormNumber and HasParagraph, paragraph carries the paragraph
// fields plus concept mentions.
type Document struct {
	ID              string   `json:"id"`
	URI             string   `json:"uri"`
	RDFType         []string `json:"rdf_type"`
	Type            string   `json:"type,omitempty"`
	Title           string   `json:"title,omitempty"`
	Label           string   `json:"label,omitempty"`
	NormNumber      string   `json:"norm_number,omitempty"`
	ParagraphNumber string   `json:"paragraph_number,omitempty"`
	BelongsToNorm   string   `json:"belongs_to_norm,omitempty"`
	TextContent     string   `json:"text_content,omitempty"`
	HasNorm         []string `json:"has_norm,omitempty"`
	HasParagraph    []string `json:"has_paragraph,omitempty"`
	MentionsConcept []string `json:"mentions_concept,omitempty"`
}

var (
	rdfTypePred      = graph.RDFType.String()
	rdfsLabelPred    = graph.RDFSLabel.String()
	dcTitlePred      = graph.DCTitle.String()
	hasNormPred      = graph.HasNorm.String()
	hasParagraphPred = graph.HasParagraph.String()
	textContentPred  = graph.TextContent.String()
)

// Project flattens the graph into one document per typed subject. Subjects
// typed outside the ontology produce no document, and identifiers that only
// appear as objects produce none either. Output is ordered by subject IRI so
// repeated runs index identically.
func Project(triples []rdf.Triple) []Document {
	props := make(map[string]map[string][]string)
	subjects := make([]string, 0, len(props))
	for _, t := range triples {
		s := t.Subj.String()
		m, ok := props[s]
		if !ok {
			m = make(map[string][]string)
			props[s] = m
			subjects = append(subjects, s)
		}
		pred := t.Pred.String()
		m[pred] = append(m[pred], t.Obj.String())
	}
	sort.Strings(subjects)

	concepts := conceptLabels(triples)

	docs := make([]Document, 0, len(subjects))
	for _, s := range subjects {
		if doc, ok := project(s, props[s], concepts); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func project(subject string, props map[string][]string, concepts []conceptLabel) (Document, bool) {
	doc := Document{
		ID:  localName(subject),
		URI: subject,
	}
	for _, o := range props[rdfTypePred] {
		doc.RDFType = append(doc.RDFType, localName(o))
	}

	switch {
	case contains(doc.RDFType, "LegalCode"):
		doc.Type = "legal_code"
		doc.Title = first(props, dcTitlePred)
		for _, o := range props[hasNormPred] {
			doc.HasNorm = append(doc.HasNorm, localName(o))
		}

	case contains(doc.RDFType, "LegalConcept"):
		doc.Type = "legal_concept"
		doc.Label = first(props, rdfsLabelPred)

	case contains(doc.RDFType, "Norm"):
		doc.Type = "norm"
		if num, ok := model.NormNumber(subject); ok {
			doc.NormNumber = num
		}
		for _, o := range props[hasParagraphPred] {
			doc.HasParagraph = append(doc.HasParagraph, localName(o))
		}

	case contains(doc.RDFType, "Paragraph"):
		doc.Type = "paragraph"
		if num, ok := model.ParagraphNumber(subject); ok {
			doc.ParagraphNumber = num
		}
		// The norm number is the owning norm's token, not the paragraph's
		// own local name.
		if num, ok := model.NormNumber(subject); ok {
			doc.NormNumber = num
			doc.BelongsToNorm = model.ExpandCURIE(model.NormID(num))
		}
		doc.TextContent = first(props, textContentPred)
		lower := strings.ToLower(doc.TextContent)
		for _, c := range concepts {
			if c.label != "" && strings.Contains(lower, strings.ToLower(c.label)) {
				doc.MentionsConcept = append(doc.MentionsConcept, c.local)
			}
		}

	default:
		return Document{}, false
	}
	return doc, true
}

type conceptLabel struct {
	local string
	label string
}

// conceptLabels lists the graph's concepts in statement order. Mention
// scanning is a plain case-insensitive substring check, so compound words
// count as mentions too.
func conceptLabels(triples []rdf.Triple) []conceptLabel {
	var out []conceptLabel
	for _, t := range triples {
		if t.Pred.String() != rdfsLabelPred {
			continue
		}
		local := localName(t.Subj.String())
		if !strings.HasPrefix(local, "concept_") {
			continue
		}
		out = append(out, conceptLabel{local: local, label: t.Obj.String()})
	}
	return out
}

func localName(iri string) string {
	for _, ns := range []string{model.DataNS, model.OntoNS, model.RDFSNS, model.RDFNS, model.DCTermsNS} {
		if rest, ok := strings.CutPrefix(iri, ns); ok {
			return rest
		}
	}
	if i := strings.LastIndexAny(iri, "/#"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

func first(props map[string][]string, pred string) string {
	if vals := props[pred]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
