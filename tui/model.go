// Package tui is an interactive terminal front end for the search index:
// type a query, cycle through the ranked hits, see the matched passage
// highlighted in context.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/normgraph/normgraph/sink"
)

// searchLimit is how many hits one query pulls into the result pager.
const searchLimit = 10

// Searcher is the TUI-facing subset of a search backend.
type Searcher interface {
	Search(ctx context.Context, query, docType string, limit int) ([]sink.SearchResult, error)
}

// Model is the Bubble Tea model for the interactive search session.
type Model struct {
	searcher  Searcher
	docType   string
	input     textinput.Model
	viewport  viewport.Model
	results   []sink.SearchResult
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a model searching the given backend. docType narrows every
// query to one document type; empty searches everything.
func New(searcher Searcher, docType string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Suchbegriff eingeben und Enter drücken"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		searcher: searcher,
		docType:  docType,
		input:    ti,
		viewport: vp,
		status:   "Index geladen. Tippen zum Suchen.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.searcher.Search(context.Background(), q, m.docType, searchLimit)
				if err != nil {
					m.status = "Fehler: " + err.Error()
					m.results = nil
				} else if len(res) == 0 {
					m.status = fmt.Sprintf("Keine Treffer für %q", q)
					m.results = nil
				} else {
					m.status = fmt.Sprintf("%d Treffer für %q", len(res), q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Laden..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Normgraph Suche")
	scope := "alle Dokumenttypen"
	if m.docType != "" {
		scope = "Typ: " + m.docType
	}
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(scope)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "Noch keine Treffer."
	}
	r := m.results[m.cursor]
	head := fmt.Sprintf("Treffer %d/%d  score=%.2f", m.cursor+1, len(m.results), r.Score)
	return head + "\n" + headlineStyle.Render(documentHeadline(r.Document)) + "\n\n" + m.renderBody(r)
}

func (m Model) renderBody(r sink.SearchResult) string {
	doc := r.Document
	switch doc.Type {
	case "paragraph":
		return highlightBest(doc.TextContent, m.lastQuery)
	case "norm":
		lines := []string{fmt.Sprintf("Absätze: %d", len(doc.HasParagraph))}
		for _, p := range doc.HasParagraph {
			lines = append(lines, "  - "+p)
		}
		return strings.Join(lines, "\n")
	case "legal_concept":
		return "Definierter Rechtsbegriff."
	case "legal_code":
		return fmt.Sprintf("Normen: %d", len(doc.HasNorm))
	default:
		return doc.URI
	}
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headlineStyle  = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
