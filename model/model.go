// Package model defines the structured records a legal code is parsed into
// and the identifier scheme that links them: every entity carries a CURIE of
// the form prefix:local, resolved against a fixed pair of namespaces before
// graph serialization.
package model

import (
	"regexp"
	"strings"
)

// Namespace URIs for the fixed ontology.
const (
	DataNS    = "http://example.org/lex/data/"
	OntoNS    = "http://example.org/lex/ontology/"
	RDFNS     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS    = "http://www.w3.org/2000/01/rdf-schema#"
	DCTermsNS = "http://purl.org/dc/terms/"
)

// Namespaces maps CURIE prefixes to their namespace URIs.
var Namespaces = map[string]string{
	"data":    DataNS,
	"onto":    OntoNS,
	"rdf":     RDFNS,
	"rdfs":    RDFSNS,
	"dcterms": DCTermsNS,
}

// ExpandCURIE resolves a prefixed identifier to a full URI. Tokens without a
// known prefix are returned verbatim and treated as absolute identifiers.
func ExpandCURIE(token string) string {
	if rest, ok := strings.CutPrefix(token, "data:"); ok {
		return DataNS + rest
	}
	if rest, ok := strings.CutPrefix(token, "onto:"); ok {
		return OntoNS + rest
	}
	return token
}

// NormID derives the CURIE for a norm from its bare identifier token
// (e.g. "433" or "23a").
func NormID(ident string) string {
	return "data:norm_" + ident
}

// ParagraphID derives the CURIE for a paragraph from its owning norm's id
// and the paragraph's id key (the number, possibly disambiguated).
func ParagraphID(normID, key string) string {
	return normID + "_para_" + key
}

// ConceptID derives the CURIE for a concept from its label. The derivation
// is deterministic so the same label always maps to the same id.
func ConceptID(label string) string {
	return "data:concept_" + strings.ReplaceAll(label, " ", "_")
}

var (
	// The lazy group stops the owning norm's token from swallowing the
	// paragraph suffix of ids like norm_433_para_2.
	normNumberPattern      = regexp.MustCompile(`^norm_(\w+?)(?:_para_|$)`)
	paragraphNumberPattern = regexp.MustCompile(`_para_(\w+)$`)
)

// NormNumber extracts the owning norm's identifier token from a norm or
// paragraph id, compact or expanded. It reports false for ids outside that
// family.
func NormNumber(id string) (string, bool) {
	m := normNumberPattern.FindStringSubmatch(localName(id))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParagraphNumber extracts the paragraph id key from a paragraph id,
// compact or expanded.
func ParagraphNumber(id string) (string, bool) {
	m := paragraphNumberPattern.FindStringSubmatch(localName(id))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func localName(id string) string {
	id = strings.TrimPrefix(id, DataNS)
	return strings.TrimPrefix(id, "data:")
}

// Reference is a textual mention of another norm inside a paragraph. The
// target is derived from the matched text and never checked against the
// actual norm set: dangling references are part of the contract.
type Reference struct {
	TargetNormID string `json:"target_norm_id"`
	TextSnippet  string `json:"text_snippet,omitempty"`
}

// LegalConcept is a legal term explicitly defined in some paragraph's text.
type LegalConcept struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	DefinedIn string `json:"defined_in,omitempty"`
}

// Paragraph is a numbered subsection of a norm's body text.
type Paragraph struct {
	ID                  string         `json:"id"`
	ParagraphIdentifier string         `json:"paragraph_identifier"`
	TextContent         string         `json:"text_content"`
	DefinesConcepts     []LegalConcept `json:"defines_concepts"`
	RefersTo            []Reference    `json:"refers_to"`
}

// Norm is a single numbered provision (a "§").
type Norm struct {
	ID             string      `json:"id"`
	NormIdentifier string      `json:"norm_identifier"`
	Title          string      `json:"title,omitempty"`
	IsRepealed     bool        `json:"is_repealed"`
	Paragraphs     []Paragraph `json:"paragraphs"`
}

// LegalCode is the root of the extracted structure: one instance per run.
// Concepts holds explicitly pre-declared global concepts; concepts found in
// paragraph text are carried on the paragraphs themselves and consolidated
// by BuildConceptIndex.
type LegalCode struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Norms    []Norm         `json:"norms"`
	Concepts []LegalConcept `json:"concepts,omitempty"`
}

// BuildConceptIndex merges all concept records into one map keyed by
// concept id. Pre-declared global concepts are inserted first, then the
// paragraph-local concepts in document order. The first record for an id
// wins; later records sharing the id are dropped entirely, even when their
// label or defined_in differ. The returned map is a fresh copy and is never
// mutated by the pipeline afterwards.
func BuildConceptIndex(code *LegalCode) map[string]LegalConcept {
	index := make(map[string]LegalConcept)
	for _, c := range code.Concepts {
		if _, ok := index[c.ID]; !ok {
			index[c.ID] = c
		}
	}
	for _, norm := range code.Norms {
		for _, para := range norm.Paragraphs {
			for _, c := range para.DefinesConcepts {
				if _, ok := index[c.ID]; !ok {
					index[c.ID] = c
				}
			}
		}
	}
	return index
}
