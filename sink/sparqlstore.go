// Package sink provides the delivery targets of the pipeline: a SPARQL
// triple store, a Solr core and an embedded SQLite full-text index.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"

	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/model"
)

// requestTimeout bounds every single HTTP call to a sink.
const requestTimeout = 30 * time.Second

// readyPollInterval is the pause between readiness probes.
const readyPollInterval = 2 * time.Second

// TripleStore talks to a Blazegraph-compatible SPARQL endpoint.
type TripleStore struct {
	base     string
	endpoint string
	repo     *sparql.Repo
	client   *http.Client
}

// NewTripleStore connects to the store rooted at base, e.g.
// "http://localhost:9999/bigdata". The SPARQL endpoint lives at
// base + "/sparql".
func NewTripleStore(base string) (*TripleStore, error) {
	base = strings.TrimRight(base, "/")
	endpoint := base + "/sparql"
	repo, err := sparql.NewRepo(endpoint, sparql.Timeout(requestTimeout))
	if err != nil {
		return nil, fmt.Errorf("sparql: repo for %s: %w", endpoint, err)
	}
	return &TripleStore{
		base:     base,
		endpoint: endpoint,
		repo:     repo,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// Submit serialises the triples as Turtle and posts them in one request.
// The store either accepts the whole document or rejects it; there is no
// partial load.
func (t *TripleStore) Submit(ctx context.Context, triples []rdf.Triple) error {
	var buf bytes.Buffer
	if err := graph.WriteTurtle(&buf, triples); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("sparql: submit: %w", err)
	}
	req.Header.Set("Content-Type", "text/turtle")
	req.Header.Set("Accept", "application/xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sparql: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sparql: submit: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Clear removes every statement in the store.
func (t *TripleStore) Clear(ctx context.Context) error {
	form := url.Values{"update": {"DELETE WHERE { ?s ?p ?o . }"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sparql: clear: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sparql: clear: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sparql: clear: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Count returns the number of statements in the store.
func (t *TripleStore) Count() (int, error) {
	res, err := t.repo.Query("SELECT (COUNT(*) AS ?count) WHERE { ?s ?p ?o . }")
	if err != nil {
		return 0, fmt.Errorf("sparql: count: %w", err)
	}
	solutions := res.Solutions()
	if len(solutions) == 0 {
		return 0, fmt.Errorf("sparql: count: empty result")
	}
	term, ok := solutions[0]["count"]
	if !ok {
		return 0, fmt.Errorf("sparql: count: missing binding")
	}
	n, err := strconv.Atoi(term.String())
	if err != nil {
		return 0, fmt.Errorf("sparql: count: %w", err)
	}
	return n, nil
}

// Ping probes the store's base URL.
func (t *TripleStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base, nil)
	if err != nil {
		return fmt.Errorf("sparql: ping: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sparql: ping: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sparql: ping: status %d", resp.StatusCode)
	}
	return nil
}

// WaitReady polls the store until it answers or ctx expires.
func (t *TripleStore) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		if err := t.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("sparql: store not ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// ConceptLabels returns up to limit concept labels, alphabetically.
func (t *TripleStore) ConceptLabels(limit int) ([]string, error) {
	q := fmt.Sprintf(`PREFIX rdfs: <%s>
PREFIX onto: <%s>
SELECT ?label WHERE { ?c a onto:LegalConcept ; rdfs:label ?label . } ORDER BY ?label LIMIT %d`,
		model.RDFSNS, model.OntoNS, limit)

	res, err := t.repo.Query(q)
	if err != nil {
		return nil, fmt.Errorf("sparql: concept labels: %w", err)
	}

	var labels []string
	for _, sol := range res.Solutions() {
		if v, ok := sol["label"]; ok {
			labels = append(labels, v.String())
		}
	}
	return labels, nil
}

// ParagraphMatch is one verification hit from the store.
type ParagraphMatch struct {
	URI  string
	Text string
}

// ParagraphsContaining returns paragraphs whose text contains term,
// case-insensitively.
func (t *TripleStore) ParagraphsContaining(term string, limit int) ([]ParagraphMatch, error) {
	escaped := strings.ReplaceAll(term, `"`, `\"`)
	q := fmt.Sprintf(`PREFIX onto: <%s>
SELECT ?p ?text WHERE {
  ?p a onto:Paragraph ;
     onto:textContent ?text .
  FILTER(CONTAINS(LCASE(?text), LCASE("%s")))
} LIMIT %d`, model.OntoNS, escaped, limit)

	res, err := t.repo.Query(q)
	if err != nil {
		return nil, fmt.Errorf("sparql: paragraph search: %w", err)
	}

	var matches []ParagraphMatch
	for _, sol := range res.Solutions() {
		var m ParagraphMatch
		if v, ok := sol["p"]; ok {
			m.URI = v.String()
		}
		if v, ok := sol["text"]; ok {
			m.Text = v.String()
		}
		matches = append(matches, m)
	}
	return matches, nil
}
