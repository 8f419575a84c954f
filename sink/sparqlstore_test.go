package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/model"
)

func iriTriple(t *testing.T, s, p, o string) rdf.Triple {
	t.Helper()
	subj, err := rdf.NewIRI(s)
	if err != nil {
		t.Fatalf("subject %s: %v", s, err)
	}
	pred, err := rdf.NewIRI(p)
	if err != nil {
		t.Fatalf("predicate %s: %v", p, err)
	}
	obj, err := rdf.NewIRI(o)
	if err != nil {
		t.Fatalf("object %s: %v", o, err)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}
}

func litTriple(t *testing.T, s, p, o string) rdf.Triple {
	t.Helper()
	subj, err := rdf.NewIRI(s)
	if err != nil {
		t.Fatalf("subject %s: %v", s, err)
	}
	pred, err := rdf.NewIRI(p)
	if err != nil {
		t.Fatalf("predicate %s: %v", p, err)
	}
	obj, err := rdf.NewLiteral(o)
	if err != nil {
		t.Fatalf("object %s: %v", o, err)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}
}

func TestTripleStoreSubmit(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotBody        string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL + "/")
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}

	triples := []rdf.Triple{
		iriTriple(t, model.DataNS+"norm_433", model.RDFNS+"type", model.OntoNS+"Norm"),
		litTriple(t, model.DataNS+"norm_433", model.OntoNS+"normIdentifier", "§ 433"),
	}
	if err := store.Submit(context.Background(), triples); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotPath != "/sparql" {
		t.Errorf("path = %q, want /sparql", gotPath)
	}
	if gotContentType != "text/turtle" {
		t.Errorf("content type = %q, want text/turtle", gotContentType)
	}
	for _, want := range []string{
		"@prefix data: <http://example.org/lex/data/> .",
		"data:norm_433 a onto:Norm .",
		`data:norm_433 onto:normIdentifier "§ 433" .`,
	} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("turtle body missing %q:\n%s", want, gotBody)
		}
	}
}

func TestTripleStoreSubmitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "out of disk")
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}

	triples := []rdf.Triple{
		iriTriple(t, model.DataNS+"BGB", model.RDFNS+"type", model.OntoNS+"LegalCode"),
	}
	err = store.Submit(context.Background(), triples)
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "out of disk") {
		t.Errorf("error missing status and body: %v", err)
	}
}

func TestTripleStoreClear(t *testing.T) {
	var gotUpdate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUpdate = r.FormValue("update")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if gotUpdate != "DELETE WHERE { ?s ?p ?o . }" {
		t.Errorf("update = %q", gotUpdate)
	}
}

func TestTripleStoreCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{
			"head": {"vars": ["count"]},
			"results": {"bindings": [
				{"count": {"type": "literal", "datatype": "http://www.w3.org/2001/XMLSchema#integer", "value": "42"}}
			]}
		}`)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}
	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 42 {
		t.Errorf("Count = %d, want 42", n)
	}
}

func TestTripleStoreConceptLabels(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.FormValue("query")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{
			"head": {"vars": ["label"]},
			"results": {"bindings": [
				{"label": {"type": "literal", "value": "Sache"}},
				{"label": {"type": "literal", "value": "Verbraucher"}}
			]}
		}`)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}
	labels, err := store.ConceptLabels(10)
	if err != nil {
		t.Fatalf("ConceptLabels: %v", err)
	}

	if !strings.Contains(gotQuery, "onto:LegalConcept") {
		t.Errorf("query does not select concepts: %s", gotQuery)
	}
	want := []string{"Sache", "Verbraucher"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestTripleStoreParagraphsContaining(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.FormValue("query")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{
			"head": {"vars": ["p", "text"]},
			"results": {"bindings": [
				{
					"p": {"type": "uri", "value": "http://example.org/lex/data/norm_13_para_0"},
					"text": {"type": "literal", "value": "Verbraucher ist jede natürliche Person."}
				}
			]}
		}`)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}
	matches, err := store.ParagraphsContaining("Verbraucher", 5)
	if err != nil {
		t.Fatalf("ParagraphsContaining: %v", err)
	}

	if !strings.Contains(gotQuery, `CONTAINS(LCASE(?text), LCASE("Verbraucher"))`) {
		t.Errorf("query does not filter on the term: %s", gotQuery)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].URI != model.DataNS+"norm_13_para_0" {
		t.Errorf("URI = %q", matches[0].URI)
	}
	if !strings.Contains(matches[0].Text, "Verbraucher ist") {
		t.Errorf("Text = %q", matches[0].Text)
	}
}

func TestTripleStorePing(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping against healthy store: %v", err)
	}

	status = http.StatusServiceUnavailable
	if err := store.Ping(context.Background()); err == nil {
		t.Error("expected error from unavailable store")
	}
}

func TestTripleStoreWaitReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}
	if err := store.WaitReady(context.Background()); err != nil {
		t.Errorf("WaitReady against healthy store: %v", err)
	}
}

func TestTripleStoreWaitReadyGivesUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store, err := NewTripleStore(server.URL)
	if err != nil {
		t.Fatalf("NewTripleStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := store.WaitReady(ctx); err == nil {
		t.Error("expected error once the deadline passed")
	}
}
