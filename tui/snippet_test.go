package tui

import (
	"strings"
	"testing"

	"github.com/normgraph/normgraph/search"
)

func TestSignificantWords(t *testing.T) {
	words := significantWords("Der Verkäufer wird durch den Kaufvertrag verpflichtet. Das ist nicht strittig.")

	for _, want := range []string{"verkäufer", "kaufvertrag", "verpflichtet", "strittig"} {
		if !words[want] {
			t.Errorf("expected %q in significant words", want)
		}
	}
	for _, drop := range []string{"durch", "wird", "nicht", "der", "den", "ist"} {
		if words[drop] {
			t.Errorf("%q should be excluded", drop)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	text := "Erster Satz. Zweiter Satz? Dritter Satz! Rest ohne Schlusszeichen"
	sentences := splitSentences(text)

	if len(sentences) != 4 {
		t.Fatalf("got %d sentences, want 4: %v", len(sentences), sentences)
	}
	if sentences[0] != "Erster Satz." {
		t.Errorf("sentence 0: %q", sentences[0])
	}
	if sentences[3] != "Rest ohne Schlusszeichen" {
		t.Errorf("sentence 3: %q", sentences[3])
	}
}

func TestBestSentenceIndex(t *testing.T) {
	sentences := []string{
		"Durch den Kaufvertrag wird der Verkäufer verpflichtet.",
		"Der Käufer muss den vereinbarten Kaufpreis zahlen.",
		"Weitere Pflichten bestimmt das Gesetz.",
	}

	if got := bestSentenceIndex(sentences, significantWords("Kaufpreis zahlen")); got != 1 {
		t.Errorf("best index = %d, want 1", got)
	}
	if got := bestSentenceIndex(sentences, significantWords("Mietwagen")); got != -1 {
		t.Errorf("no-overlap index = %d, want -1", got)
	}
	if got := bestSentenceIndex(sentences, nil); got != -1 {
		t.Errorf("empty query index = %d, want -1", got)
	}
}

func TestHighlightBestNoOverlap(t *testing.T) {
	text := "Durch den Kaufvertrag wird der Verkäufer verpflichtet."
	if got := highlightBest(text, "Mietwagen"); got != text {
		t.Errorf("text changed without overlap: %q", got)
	}
}

func TestHighlightBestKeepsAllSentences(t *testing.T) {
	text := "Durch den Kaufvertrag wird der Verkäufer verpflichtet. Der Käufer muss den Kaufpreis zahlen."
	got := highlightBest(text, "Kaufpreis")

	for _, sentence := range []string{
		"Durch den Kaufvertrag wird der Verkäufer verpflichtet.",
		"Der Käufer muss den Kaufpreis zahlen.",
	} {
		if !strings.Contains(got, sentence) {
			t.Errorf("output lost sentence %q: %q", sentence, got)
		}
	}
}

func TestDocumentHeadline(t *testing.T) {
	tests := []struct {
		name string
		doc  search.Document
		want string
	}{
		{"paragraph", search.Document{Type: "paragraph", NormNumber: "433", ParagraphNumber: "1"}, "§ 433 Abs. 1"},
		{"norm", search.Document{Type: "norm", NormNumber: "90a"}, "§ 90a"},
		{"concept", search.Document{Type: "legal_concept", Label: "Verbraucher"}, "Verbraucher"},
		{"code", search.Document{Type: "legal_code", Title: "Bürgerliches Gesetzbuch"}, "Bürgerliches Gesetzbuch"},
		{"unknown", search.Document{ID: "x", Type: "other"}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documentHeadline(tt.doc); got != tt.want {
				t.Errorf("documentHeadline = %q, want %q", got, tt.want)
			}
		})
	}
}
