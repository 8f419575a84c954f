package graph

import (
	"fmt"
	"io"
	"os"

	"github.com/knakk/rdf"
)

// ReadTurtle parses a Turtle document into triples.
func ReadTurtle(r io.Reader) ([]rdf.Triple, error) {
	triples, err := rdf.NewTripleDecoder(r, rdf.Turtle).DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("graph: read turtle: %w", err)
	}
	return triples, nil
}

// ReadTurtleFile opens path and parses it. See ReadTurtle.
func ReadTurtleFile(path string) ([]rdf.Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	defer f.Close()
	return ReadTurtle(f)
}

// SetEqual reports whether two triple slices describe the same statement
// set, ignoring order and duplicates.
func SetEqual(a, b []rdf.Triple) bool {
	as := statementSet(a)
	bs := statementSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

func statementSet(triples []rdf.Triple) map[string]bool {
	set := make(map[string]bool, len(triples))
	for _, t := range triples {
		set[t.Serialize(rdf.NTriples)] = true
	}
	return set
}
