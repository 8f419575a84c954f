package graph

import (
	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/model"
)

// Ontology classes of the emitted graph.
var (
	LegalCodeClass    = mustIRI(model.OntoNS + "LegalCode")
	NormClass         = mustIRI(model.OntoNS + "Norm")
	ParagraphClass    = mustIRI(model.OntoNS + "Paragraph")
	LegalConceptClass = mustIRI(model.OntoNS + "LegalConcept")
)

// Ontology properties.
var (
	HasNorm             = mustIRI(model.OntoNS + "hasNorm")
	HasParagraph        = mustIRI(model.OntoNS + "hasParagraph")
	NormIdentifier      = mustIRI(model.OntoNS + "normIdentifier")
	ParagraphIdentifier = mustIRI(model.OntoNS + "paragraphIdentifier")
	TextContent         = mustIRI(model.OntoNS + "textContent")
	IsRepealed          = mustIRI(model.OntoNS + "isRepealed")
	RefersTo            = mustIRI(model.OntoNS + "refersTo")
	Defines             = mustIRI(model.OntoNS + "defines")
)

// Terms borrowed from the RDF, RDFS and Dublin Core vocabularies.
var (
	RDFType   = mustIRI(model.RDFNS + "type")
	RDFSLabel = mustIRI(model.RDFSNS + "label")
	DCTitle   = mustIRI(model.DCTermsNS + "title")
)

// mustIRI builds a package-level IRI term. The inputs are compile-time
// constants, so a failure is a programming error.
func mustIRI(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		panic(err)
	}
	return iri
}
