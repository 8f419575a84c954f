package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/normgraph/normgraph/search"
)

// Solr indexes documents into a Solr core over its JSON update API.
type Solr struct {
	base   string
	client *http.Client
}

// NewSolr points at a core URL like "http://localhost:8984/solr/bgb_core".
func NewSolr(base string) *Solr {
	return &Solr{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

// AddBatch posts documents to the update handler without committing them.
func (s *Solr) AddBatch(ctx context.Context, docs []search.Document) error {
	return s.postJSON(ctx, "/update", docs)
}

// Commit makes everything previously added visible to searches.
func (s *Solr) Commit(ctx context.Context) error {
	return s.postJSON(ctx, "/update", map[string]interface{}{"commit": map[string]interface{}{}})
}

// Clear deletes every document in the core and commits the deletion.
func (s *Solr) Clear(ctx context.Context) error {
	if err := s.postJSON(ctx, "/update", map[string]interface{}{
		"delete": map[string]string{"query": "*:*"},
	}); err != nil {
		return err
	}
	return s.Commit(ctx)
}

// Ping checks the core's health endpoint.
func (s *Solr) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/admin/ping", nil)
	if err != nil {
		return fmt.Errorf("solr: ping: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("solr: ping: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("solr: ping: status %d", resp.StatusCode)
	}
	return nil
}

// QueryResult is one page of hits from the select handler.
type QueryResult struct {
	NumFound int
	Docs     []search.Document
}

// Query searches across the fields the pipeline indexes: paragraph text,
// concept labels, titles and norm numbers. docType narrows the result to
// one document type when set.
func (s *Solr) Query(ctx context.Context, q, docType string, limit int) (*QueryResult, error) {
	quoted := `"` + strings.ReplaceAll(q, `"`, `\"`) + `"`
	fields := []string{"text_content", "label", "title", "norm_number"}
	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = f + ":" + quoted
	}

	params := url.Values{}
	params.Set("q", strings.Join(clauses, " OR "))
	params.Set("rows", strconv.Itoa(limit))
	params.Set("wt", "json")
	if docType != "" {
		params.Set("fq", "type:"+docType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/select?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("solr: select: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solr: select: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("solr: select: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Response struct {
			NumFound int               `json:"numFound"`
			Docs     []search.Document `json:"docs"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("solr: decode select: %w", err)
	}
	return &QueryResult{NumFound: payload.Response.NumFound, Docs: payload.Response.Docs}, nil
}

func (s *Solr) postJSON(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("solr: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("solr: post %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("solr: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("solr: post %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
