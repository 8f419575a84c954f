package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/model"
)

// xsdNS is bound in the prefix header because typed literals serialise with
// an explicit datatype.
const xsdNS = "http://www.w3.org/2001/XMLSchema#"

// localNamePattern limits prefixed-name abbreviation to locals that need no
// escaping.
var localNamePattern = regexp.MustCompile(`^[\pL\pN_]+$`)

// prefixOrder fixes the prefix iteration order for header and abbreviation.
var prefixOrder = func() []string {
	prefixes := make([]string, 0, len(model.Namespaces))
	for p := range model.Namespaces {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}()

// WriteTurtle serialises triples as Turtle, one statement per line, with the
// model's prefix table bound up front.
func WriteTurtle(w io.Writer, triples []rdf.Triple) error {
	bw := bufio.NewWriter(w)

	for _, p := range prefixOrder {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", p, model.Namespaces[p])
	}
	fmt.Fprintf(bw, "@prefix xsd: <%s> .\n\n", xsdNS)

	for _, t := range triples {
		fmt.Fprintf(bw, "%s %s %s .\n", abbreviate(t.Subj), predicateName(t.Pred), abbreviate(t.Obj))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("graph: write turtle: %w", err)
	}
	return nil
}

// predicateName renders a predicate, using the "a" keyword for rdf:type.
func predicateName(p rdf.Predicate) string {
	if ir, ok := p.(rdf.IRI); ok && ir.String() == model.RDFNS+"type" {
		return "a"
	}
	return abbreviate(p)
}

// abbreviate renders a term, preferring a prefixed name when the IRI falls
// under a bound namespace and its local part is plain enough.
func abbreviate(term rdf.Term) string {
	ir, ok := term.(rdf.IRI)
	if !ok {
		return term.Serialize(rdf.Turtle)
	}
	s := ir.String()
	for _, p := range prefixOrder {
		ns := model.Namespaces[p]
		if !strings.HasPrefix(s, ns) {
			continue
		}
		if local := s[len(ns):]; localNamePattern.MatchString(local) {
			return p + ":" + local
		}
	}
	return fmt.Sprintf("<%s>", s)
}
