package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/knakk/rdf"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/normgraph/normgraph/graph"
	"github.com/normgraph/normgraph/model"
)

// runReport rebuilds the graph from a structured dump and writes a curation
// workbook: entity counts, the norm list with citation degrees, the concept
// index with mention counts, and the citation clusters.
func runReport(cmd *cobra.Command, args []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to read --out flag: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}
	var code model.LegalCode
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("parsing dump: %w", err)
	}
	if len(code.Norms) == 0 {
		return fmt.Errorf("dump %s contains no norms", args[0])
	}

	concepts := model.BuildConceptIndex(&code)
	triples, err := graph.Build(&code, concepts)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverviewSheet(f, &code, concepts, triples); err != nil {
		return err
	}
	if err := writeNormsSheet(f, &code, triples); err != nil {
		return err
	}
	if err := writeConceptsSheet(f, &code, concepts); err != nil {
		return err
	}
	if err := writeClustersSheet(f, triples); err != nil {
		return err
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	slog.Info("report: workbook written",
		"out", outPath, "norms", len(code.Norms), "concepts", len(concepts))
	return nil
}

func writeOverviewSheet(f *excelize.File, code *model.LegalCode, concepts map[string]model.LegalConcept, triples []rdf.Triple) error {
	if err := f.SetSheetName("Sheet1", "Overview"); err != nil {
		return err
	}
	paragraphs, references, repealed := 0, 0, 0
	for _, n := range code.Norms {
		if n.IsRepealed {
			repealed++
		}
		paragraphs += len(n.Paragraphs)
		for _, p := range n.Paragraphs {
			references += len(p.RefersTo)
		}
	}
	rows := [][]interface{}{
		{"code", code.ID},
		{"title", code.Title},
		{"norms", len(code.Norms)},
		{"repealed norms", repealed},
		{"paragraphs", paragraphs},
		{"references", references},
		{"concepts", len(concepts)},
		{"triples", len(triples)},
		{"generated", time.Now().Format(time.RFC3339)},
	}
	for i, row := range rows {
		if err := setRow(f, "Overview", i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeNormsSheet(f *excelize.File, code *model.LegalCode, triples []rdf.Triple) error {
	const sheet = "Norms"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	counts := make(map[string]graph.ReferenceCount)
	for _, rc := range graph.CountReferences(triples) {
		counts[rc.Norm] = rc
	}

	header := []interface{}{"identifier", "title", "repealed", "paragraphs", "outgoing", "incoming"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, n := range code.Norms {
		token, _ := model.NormNumber(n.ID)
		rc := counts[token]
		row := []interface{}{n.NormIdentifier, n.Title, n.IsRepealed, len(n.Paragraphs), rc.Outgoing, rc.Incoming}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeConceptsSheet(f *excelize.File, code *model.LegalCode, concepts map[string]model.LegalConcept) error {
	const sheet = "Concepts"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	ids := make([]string, 0, len(concepts))
	for id := range concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := setRow(f, sheet, 1, []interface{}{"label", "defined_in", "mentions"}); err != nil {
		return err
	}
	for i, id := range ids {
		c := concepts[id]
		row := []interface{}{c.Label, c.DefinedIn, countMentions(code, c.Label)}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// countMentions applies the projector's mention rule, a case-insensitive
// substring test of the label against each paragraph's text.
func countMentions(code *model.LegalCode, label string) int {
	needle := strings.ToLower(label)
	n := 0
	for _, norm := range code.Norms {
		for _, p := range norm.Paragraphs {
			if strings.Contains(strings.ToLower(p.TextContent), needle) {
				n++
			}
		}
	}
	return n
}

func writeClustersSheet(f *excelize.File, triples []rdf.Triple) error {
	const sheet = "Clusters"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, []interface{}{"cluster", "size", "norms"}); err != nil {
		return err
	}
	for i, comp := range graph.Components(triples) {
		members := make([]string, len(comp))
		for j, m := range comp {
			members[j] = "§ " + m
		}
		row := []interface{}{i + 1, len(comp), strings.Join(members, ", ")}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
