package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// jsonContext maps the dump's field names onto the fixed ontology's
// properties, so the JSON-LD form can be consumed by semantic tooling
// without a separate mapping step.
var jsonContext = map[string]interface{}{
	"@vocab":  OntoNS,
	"data":    DataNS,
	"onto":    OntoNS,
	"rdf":     RDFNS,
	"rdfs":    RDFSNS,
	"dcterms": DCTermsNS,

	"title":                "dcterms:title",
	"norm_identifier":      "onto:normIdentifier",
	"paragraph_identifier": "onto:paragraphIdentifier",
	"text_content":         "onto:textContent",
	"is_repealed":          "onto:isRepealed",
	"label":                "rdfs:label",
	"defines_concepts":     map[string]string{"@id": "onto:defines", "@type": "@id"},
	"refers_to":            map[string]string{"@id": "onto:refersTo", "@type": "@id"},
	"norms":                map[string]string{"@id": "onto:hasNorm", "@type": "@id"},
	"paragraphs":           map[string]string{"@id": "onto:hasParagraph", "@type": "@id"},
}

// Dump serializes the code to indented JSON. The consolidated concept
// index is always included: in plain mode as a "concepts" list sorted by
// id, in JSON-LD mode as a "conceptIndex" object next to the "@context"
// block.
func Dump(code *LegalCode, jsonLD bool) ([]byte, error) {
	raw, err := json.Marshal(code)
	if err != nil {
		return nil, fmt.Errorf("encoding code: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rebuilding document: %w", err)
	}

	index := BuildConceptIndex(code)
	if jsonLD {
		doc["@context"] = jsonContext
		doc["conceptIndex"] = index
	} else {
		// The concepts field on the struct only carries pre-declared
		// globals; the dump exposes the full consolidated index.
		concepts := make([]LegalConcept, 0, len(index))
		for _, c := range index {
			concepts = append(concepts, c)
		}
		sort.Slice(concepts, func(i, j int) bool { return concepts[i].ID < concepts[j].ID })
		doc["concepts"] = concepts
	}

	return json.MarshalIndent(doc, "", "  ")
}
