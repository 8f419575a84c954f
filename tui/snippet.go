package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/normgraph/normgraph/search"
)

// documentHeadline is the one-line designation of a hit, by document type.
func documentHeadline(doc search.Document) string {
	switch doc.Type {
	case "paragraph":
		return fmt.Sprintf("§ %s Abs. %s", doc.NormNumber, doc.ParagraphNumber)
	case "norm":
		return "§ " + doc.NormNumber
	case "legal_concept":
		return doc.Label
	case "legal_code":
		return doc.Title
	default:
		return doc.ID
	}
}

// highlightBest renders text with its most query-relevant sentence
// emphasized. Text without any overlap is returned unchanged.
func highlightBest(text, query string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return text
	}
	best := bestSentenceIndex(sentences, significantWords(query))
	if best < 0 {
		return text
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		if i == best {
			out[i] = highlightStyle.Render(s)
		} else {
			out[i] = s
		}
	}
	return strings.Join(out, " ")
}

// bestSentenceIndex scores each sentence by overlap with queryWords and
// returns the index of the best one, or -1 when nothing overlaps.
func bestSentenceIndex(sentences []string, queryWords map[string]bool) int {
	if len(queryWords) == 0 {
		return -1
	}
	bestIdx, bestScore := -1, 0
	for i, s := range sentences {
		overlap := 0
		for w := range significantWords(s) {
			if queryWords[w] {
				overlap++
			}
		}
		if overlap > bestScore {
			bestScore = overlap
			bestIdx = i
		}
	}
	return bestIdx
}

// significantWords returns the set of lowercased words >= 4 characters,
// excluding common German stop words.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) >= 4 && !stopWords[w] {
			words[w] = true
		}
	}
	return words
}

// splitSentences splits text into sentences at period/question/exclamation
// boundaries followed by whitespace or end of string. Abbreviations like
// "Abs." split too; for highlight scoring that is harmless.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// stopWords is a set of common German stop words to exclude from matching.
var stopWords = map[string]bool{
	"aber": true, "alle": true, "allem": true, "allen": true,
	"aller": true, "alles": true, "auch": true, "beim": true,
	"dabei": true, "damit": true, "dass": true, "diese": true,
	"diesem": true, "diesen": true, "dieser": true, "dieses": true,
	"durch": true, "eine": true, "einem": true, "einen": true,
	"einer": true, "eines": true, "gegen": true, "haben": true,
	"ihre": true, "ihrem": true, "ihren": true, "ihrer": true,
	"kann": true, "können": true, "muss": true, "müssen": true,
	"nach": true, "nicht": true, "noch": true, "oder": true,
	"ohne": true, "sein": true, "seine": true, "seinem": true,
	"seiner": true, "sich": true, "sind": true, "soll": true,
	"sollen": true, "sowie": true, "unter": true, "wenn": true,
	"werden": true, "wird": true, "wobei": true, "wurde": true,
	"wurden": true, "zwischen": true, "über": true,
}
