package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/normgraph/normgraph/search"
)

type solrRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
	Query       map[string]string
}

func newSolrRecorder() (*[]solrRequest, http.HandlerFunc) {
	requests := &[]solrRequest{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := map[string]string{}
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				query[k] = vs[0]
			}
		}
		*requests = append(*requests, solrRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
			Query:       query,
		})
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"responseHeader":{"status":0}}`)
	}
	return requests, handler
}

func TestSolrAddBatchAndCommit(t *testing.T) {
	requests, handler := newSolrRecorder()
	server := httptest.NewServer(handler)
	defer server.Close()

	solr := NewSolr(server.URL + "/")
	docs := []search.Document{
		{ID: "norm_433", URI: "http://example.org/lex/data/norm_433", RDFType: []string{"http://example.org/lex/ontology/Norm"}, Type: "norm", NormNumber: "433"},
		{ID: "concept_Verbraucher", URI: "http://example.org/lex/data/concept_Verbraucher", RDFType: []string{"http://example.org/lex/ontology/LegalConcept"}, Type: "legal_concept", Label: "Verbraucher"},
	}

	ctx := context.Background()
	if err := solr.AddBatch(ctx, docs); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if err := solr.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(*requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(*requests))
	}

	add := (*requests)[0]
	if add.Method != http.MethodPost || add.Path != "/update" {
		t.Errorf("add request = %s %s, want POST /update", add.Method, add.Path)
	}
	if add.ContentType != "application/json" {
		t.Errorf("add content type = %q", add.ContentType)
	}
	var sent []search.Document
	if err := json.Unmarshal([]byte(add.Body), &sent); err != nil {
		t.Fatalf("add body is not a document array: %v", err)
	}
	if len(sent) != 2 || sent[0].ID != "norm_433" || sent[1].Label != "Verbraucher" {
		t.Errorf("add body = %s", add.Body)
	}

	commit := (*requests)[1]
	if commit.Body != `{"commit":{}}` {
		t.Errorf("commit body = %q", commit.Body)
	}
}

func TestSolrClear(t *testing.T) {
	requests, handler := newSolrRecorder()
	server := httptest.NewServer(handler)
	defer server.Close()

	solr := NewSolr(server.URL)
	if err := solr.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(*requests) != 2 {
		t.Fatalf("got %d requests, want delete then commit", len(*requests))
	}
	if !strings.Contains((*requests)[0].Body, `"delete"`) || !strings.Contains((*requests)[0].Body, `"*:*"`) {
		t.Errorf("delete body = %q", (*requests)[0].Body)
	}
	if (*requests)[1].Body != `{"commit":{}}` {
		t.Errorf("commit body = %q", (*requests)[1].Body)
	}
}

func TestSolrErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"msg":"unknown field 'bogus'"}}`)
	}))
	defer server.Close()

	solr := NewSolr(server.URL)
	err := solr.AddBatch(context.Background(), []search.Document{{ID: "x"}})
	if err == nil {
		t.Fatal("expected error from rejecting core")
	}
	if !strings.Contains(err.Error(), "status 400") || !strings.Contains(err.Error(), "unknown field") {
		t.Errorf("error missing status and body: %v", err)
	}
}

func TestSolrPing(t *testing.T) {
	var gotPath string
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
	}))
	defer server.Close()

	solr := NewSolr(server.URL)
	if err := solr.Ping(context.Background()); err != nil {
		t.Errorf("Ping against healthy core: %v", err)
	}
	if gotPath != "/admin/ping" {
		t.Errorf("path = %q, want /admin/ping", gotPath)
	}

	status = http.StatusServiceUnavailable
	if err := solr.Ping(context.Background()); err == nil {
		t.Error("expected error from unavailable core")
	}
}

func TestSolrQuery(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				gotQuery[k] = vs[0]
			}
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"responseHeader": {"status": 0},
			"response": {
				"numFound": 2,
				"start": 0,
				"docs": [
					{
						"id": "norm_433_para_1",
						"uri": "http://example.org/lex/data/norm_433_para_1",
						"rdf_type": ["http://example.org/lex/ontology/Paragraph"],
						"type": "paragraph",
						"norm_number": "433",
						"paragraph_number": "1",
						"text_content": "Durch den Kaufvertrag wird der Verkäufer verpflichtet."
					},
					{
						"id": "norm_433",
						"uri": "http://example.org/lex/data/norm_433",
						"rdf_type": ["http://example.org/lex/ontology/Norm"],
						"type": "norm",
						"norm_number": "433"
					}
				]
			}
		}`)
	}))
	defer server.Close()

	solr := NewSolr(server.URL)
	res, err := solr.Query(context.Background(), "Kaufvertrag", "paragraph", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if !strings.Contains(gotQuery["q"], `text_content:"Kaufvertrag"`) {
		t.Errorf("q param = %q", gotQuery["q"])
	}
	if !strings.Contains(gotQuery["q"], " OR ") {
		t.Errorf("q param does not span fields: %q", gotQuery["q"])
	}
	if gotQuery["fq"] != "type:paragraph" {
		t.Errorf("fq param = %q", gotQuery["fq"])
	}
	if gotQuery["rows"] != "5" {
		t.Errorf("rows param = %q", gotQuery["rows"])
	}

	if res.NumFound != 2 {
		t.Errorf("NumFound = %d, want 2", res.NumFound)
	}
	if len(res.Docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(res.Docs))
	}
	if res.Docs[0].ID != "norm_433_para_1" || res.Docs[0].NormNumber != "433" {
		t.Errorf("first doc = %+v", res.Docs[0])
	}
	if !strings.Contains(res.Docs[0].TextContent, "Kaufvertrag") {
		t.Errorf("text content = %q", res.Docs[0].TextContent)
	}
}

func TestSolrQueryNoTypeFilter(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response": {"numFound": 0, "docs": []}}`)
	}))
	defer server.Close()

	solr := NewSolr(server.URL)
	res, err := solr.Query(context.Background(), "Sache", "", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if strings.Contains(rawQuery, "fq=") {
		t.Errorf("unexpected filter query in %q", rawQuery)
	}
	if res.NumFound != 0 || len(res.Docs) != 0 {
		t.Errorf("result = %+v", res)
	}
}
