// Package lawxml reads the "Gesetze im Internet" statute XML export and
// flattens it into a small document model for downstream processing.
package lawxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Provision is a single <norm> record carrying provision text. Label holds
// the enbez field (e.g. "§ 433") and Title the flattened titel text; either
// may be empty. Callers decide which records name an actual norm.
type Provision struct {
	Label string
	Title string
	Body  string
}

// Document is one parsed statute file.
type Document struct {
	Title      string
	Abbrev     string
	Provisions []Provision
}

// ParseFile opens path and parses it. See Parse.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lawxml: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a statute XML stream. The first <norm> that carries neither
// an enbez nor a titel is taken as the heading record naming the statute;
// every other <norm> becomes a Provision in document order. Records without
// metadata are skipped, records without text get an empty Body.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Document{}
	headerSeen := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lawxml: decode: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "norm" {
			continue
		}

		var n xmlNorm
		if err := dec.DecodeElement(&n, &se); err != nil {
			return nil, fmt.Errorf("lawxml: decode norm: %w", err)
		}
		if n.Metadaten == nil {
			continue
		}

		label := strings.TrimSpace(n.Metadaten.Enbez)
		title := strings.TrimSpace(n.Metadaten.Titel.Text)

		if label == "" && title == "" {
			if !headerSeen {
				doc.Title = firstNonEmpty(n.Metadaten.Langue, n.Metadaten.Kurzue)
				doc.Abbrev = firstNonEmpty(n.Metadaten.Jurabk, n.Metadaten.Amtabk)
				headerSeen = true
			}
			continue
		}

		doc.Provisions = append(doc.Provisions, Provision{
			Label: label,
			Title: title,
			Body:  n.Textdaten.body(),
		})
	}
	return doc, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// charsetReader copes with the legacy ISO-8859-1 declarations still found in
// older statute exports.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

// ---------------------------------------------------------------------------
// XML document structure
// ---------------------------------------------------------------------------

// Minimal subset of the gesetze-im-internet DTD. Only the fields the
// pipeline consumes are mapped.

type xmlNorm struct {
	Metadaten *xmlMetadaten `xml:"metadaten"`
	Textdaten *xmlTextdaten `xml:"textdaten"`
}

type xmlMetadaten struct {
	Jurabk string   `xml:"jurabk"`
	Amtabk string   `xml:"amtabk"`
	Kurzue string   `xml:"kurzue"`
	Langue string   `xml:"langue"`
	Enbez  string   `xml:"enbez"`
	Titel  flatText `xml:"titel"`
}

type xmlTextdaten struct {
	Text *xmlText `xml:"text"`
}

type xmlText struct {
	Content *contentText `xml:"Content"`
}

// body joins the per-<P> blocks with blank lines, or falls back to the
// flattened element text when no <P> markup is present.
func (t *xmlTextdaten) body() string {
	if t == nil || t.Text == nil || t.Text.Content == nil {
		return ""
	}
	c := t.Text.Content
	if len(c.Blocks) > 0 {
		return strings.Join(c.Blocks, "\n\n")
	}
	return strings.TrimSpace(c.Flat)
}

// flatText flattens an element's entire character data, inline markup
// included.
type flatText struct {
	Text string
}

func (t *flatText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(tt)
		}
	}
	t.Text = b.String()
	return nil
}

// contentText captures a provision body. Blocks holds the trimmed text of
// each <P> element; Flat is the whole element's character data for bodies
// written without <P> markup.
type contentText struct {
	Blocks []string
	Flat   string
}

func (c *contentText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var flat, block strings.Builder
	depth := 1
	pDepth := 0
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			depth++
			if tt.Name.Local == "P" {
				if pDepth == 0 {
					block.Reset()
				}
				pDepth++
			}
		case xml.EndElement:
			depth--
			if tt.Name.Local == "P" && pDepth > 0 {
				pDepth--
				if pDepth == 0 {
					if s := strings.TrimSpace(block.String()); s != "" {
						c.Blocks = append(c.Blocks, s)
					}
				}
			}
		case xml.CharData:
			flat.Write(tt)
			if pDepth > 0 {
				block.Write(tt)
			}
		}
	}
	c.Flat = flat.String()
	return nil
}
