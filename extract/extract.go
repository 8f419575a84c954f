// Package extract holds the heuristic text matchers the pipeline runs over
// provision labels and body text. Every function is stateless and pure: it
// takes strings and returns match records, with no shared registries and no
// side effects. Source text is irregular, so a non-matching input is never
// an error; it simply yields no records.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Norm identification
// ---------------------------------------------------------------------------

// normIdentPattern matches norm identifiers such as "§ 1", "§23" or
// "§ 312a". The captured group is the bare number-plus-optional-letter
// token.
var normIdentPattern = regexp.MustCompile(`§\s*([0-9]+[a-zA-Z]?)`)

// repealMarker flags provisions that were struck from the code but kept
// as placeholders in the published text.
const repealMarker = "(weggefallen)"

// Identifier extracts the norm identifier token from a provision's
// enumeration label, falling back to its title. It returns the bare token
// ("1", "312a") and whether a match was found. Provisions where neither
// field matches cannot be reliably identified and are dropped by the
// caller.
func Identifier(label, title string) (string, bool) {
	if m := normIdentPattern.FindStringSubmatch(label); m != nil {
		return m[1], true
	}
	if m := normIdentPattern.FindStringSubmatch(title); m != nil {
		return m[1], true
	}
	return "", false
}

// CanonicalIdentifier renders a bare identifier token in its canonical
// display form, e.g. "433" becomes "§ 433".
func CanonicalIdentifier(token string) string {
	return "§ " + token
}

// IsRepealed reports whether the repeal marker appears in either the
// provision's title or its body text, in any casing.
func IsRepealed(title, body string) bool {
	return strings.Contains(strings.ToLower(title), repealMarker) ||
		strings.Contains(strings.ToLower(body), repealMarker)
}

// ---------------------------------------------------------------------------
// Paragraph splitting
// ---------------------------------------------------------------------------

// paraMarkerPattern matches the "(1)", "(2)" paragraph markers that
// separate the numbered subsections of a norm's body.
var paraMarkerPattern = regexp.MustCompile(`\((\d+)\)`)

// blankLinePattern separates text blocks in bodies without numbered
// markers.
var blankLinePattern = regexp.MustCompile(`\n\n+`)

// ParagraphPart is one split-out paragraph of a norm body.
type ParagraphPart struct {
	Number string // displayed paragraph number, e.g. "0", "1", "2"
	Key    string // id token; equals Number unless disambiguated, e.g. "2_1"
	Text   string // trimmed body text, never empty
}

// SplitParagraphs splits a norm body into numbered paragraphs.
//
// The primary strategy splits on "(n)" markers. Text before the first
// marker becomes paragraph "0" when non-empty. A number that repeats
// within the body keeps its displayed Number but has its Key suffixed
// with an incrementing counter, so both occurrences survive under
// distinct ids. When no markers exist the body is split on blank lines
// into sequential 1-based paragraphs; a body with no blank lines either
// is a single paragraph "1". Parts that are empty after trimming are
// dropped, and an empty or whitespace-only body yields no paragraphs.
func SplitParagraphs(body string) []ParagraphPart {
	locs := paraMarkerPattern.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return splitOnBlankLines(body)
	}

	var parts []ParagraphPart
	seen := make(map[string]bool)

	if leading := strings.TrimSpace(body[:locs[0][0]]); leading != "" {
		parts = append(parts, ParagraphPart{Number: "0", Key: "0", Text: leading})
		seen["0"] = true
	}

	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(body[loc[1]:end])
		if text == "" {
			continue
		}

		number := body[loc[2]:loc[3]]
		key := number
		for counter := 1; seen[key]; counter++ {
			key = fmt.Sprintf("%s_%d", number, counter)
		}
		seen[key] = true

		parts = append(parts, ParagraphPart{Number: number, Key: key, Text: text})
	}
	return parts
}

// splitOnBlankLines is the fallback for bodies without "(n)" markers.
func splitOnBlankLines(body string) []ParagraphPart {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil
	}

	var parts []ParagraphPart
	n := 0
	for _, chunk := range blankLinePattern.Split(trimmed, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		n++
		num := fmt.Sprintf("%d", n)
		parts = append(parts, ParagraphPart{Number: num, Key: num, Text: chunk})
	}
	return parts
}

// ---------------------------------------------------------------------------
// Cross-reference detection
// ---------------------------------------------------------------------------

// Reference holds a detected mention of another norm within text.
type Reference struct {
	Number  string // the referenced norm's identifier token, e.g. "433"
	Snippet string // the entire matched substring, e.g. "§ 433"
	Offset  int    // byte offset of the match within the input text
}

// FindReferences scans text and returns every norm mention found. Matches
// are not deduplicated and self-references are not filtered; targets are
// never checked for existence.
func FindReferences(text string) []Reference {
	matches := normIdentPattern.FindAllStringSubmatchIndex(text, -1)
	refs := make([]Reference, 0, len(matches))
	for _, loc := range matches {
		refs = append(refs, Reference{
			Number:  text[loc[2]:loc[3]],
			Snippet: text[loc[0]:loc[1]],
			Offset:  loc[0],
		})
	}
	return refs
}

// ---------------------------------------------------------------------------
// Definition extraction
// ---------------------------------------------------------------------------

// conceptPattern matches the definitional copula idiom of German legal
// prose: one or more consecutive capitalized words directly followed by
// "ist", as in "Verbraucher ist jede natürliche Person ..." or
// "Eingetragener Verein ist ...".
var conceptPattern = regexp.MustCompile(
	`\b((?:[A-ZÄÖÜ][a-zäöüA-ZÄÖÜ]+)(?:\s+[A-ZÄÖÜ][a-zäöüA-ZÄÖÜ]+)*)\s+ist\b`,
)

// leadingArticles are capitalized sentence-initial articles that the
// copula pattern would otherwise sweep into the label ("Ein Vertrag ist"
// defines "Vertrag", not "Ein Vertrag"). Comparison is against whole
// tokens, so words like "Eingetragener" are unaffected.
var leadingArticles = map[string]bool{
	"Der": true, "Die": true, "Das": true,
	"Des": true, "Dem": true, "Den": true,
	"Ein": true, "Eine": true, "Einem": true,
	"Einen": true, "Einer": true, "Eines": true,
}

// Definition holds a single detected concept definition.
type Definition struct {
	Label  string // the defined term, possibly multi-word
	Offset int    // byte offset of the match within the input text
}

// FindDefinitions scans text for the definitional copula pattern and
// returns the defined labels. Leading article tokens are stripped from
// each label; a match reduced to nothing by that is skipped. False
// positives from unrelated capitalized phrases are an accepted limitation
// of the pattern; no semantic filtering is applied beyond it.
func FindDefinitions(text string) []Definition {
	matches := conceptPattern.FindAllStringSubmatchIndex(text, -1)
	var defs []Definition
	for _, loc := range matches {
		label := stripLeadingArticles(text[loc[2]:loc[3]])
		if label == "" {
			continue
		}
		defs = append(defs, Definition{Label: label, Offset: loc[0]})
	}
	return defs
}

func stripLeadingArticles(label string) string {
	words := strings.Fields(label)
	for len(words) > 0 && leadingArticles[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
