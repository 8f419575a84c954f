package normgraph

import "errors"

var (
	// ErrInvalidDocument is returned when the statute XML cannot be
	// turned into a legal code model.
	ErrInvalidDocument = errors.New("normgraph: invalid statute document")

	// ErrGraphLoad is returned when the triple store rejects a graph.
	ErrGraphLoad = errors.New("normgraph: graph load failed")

	// ErrIndexing is returned when search document delivery fails.
	ErrIndexing = errors.New("normgraph: indexing failed")

	// ErrStoreUnavailable is returned when a delivery target cannot be
	// reached.
	ErrStoreUnavailable = errors.New("normgraph: store unavailable")
)
