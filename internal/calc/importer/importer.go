package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"Structura/internal/calc/components"
	"Structura/internal/calc/field"

	"github.com/xuri/excelize/v2"
)

const maxRows = 1000

type Row struct {
	Line      int     `json:"line"`
	Component string  `json:"component"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Name      string  `json:"name"`
	Verdict   string  `json:"verdict"`
}

type Result struct {
	Count   int   `json:"count"`
	Skipped []int `json:"skipped,omitempty"`
	Rows    []Row `json:"rows"`
}

// Import reads `component, field1, field2` rows from the first sheet of an
// xlsx workbook. The first row is a header. Rows with an unknown component,
// unparseable numbers or non-positive dimensions are reported in Skipped by
// their 1-based sheet line.
func Import(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Result{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return Result{}, fmt.Errorf("empty sheet")
	}
	if len(rows)-1 > maxRows {
		return Result{}, fmt.Errorf("too many rows: %d > %d", len(rows)-1, maxRows)
	}

	rules := make(map[string]components.Rule)
	for _, rule := range components.Rules() {
		rules[rule.Key] = rule
	}

	res := Result{Rows: []Row{}}
	for i := 1; i < len(rows); i++ {
		line := i + 1
		row, ok := parseRow(rows[i], rules)
		if !ok {
			res.Skipped = append(res.Skipped, line)
			continue
		}
		rule := rules[row.Component]
		verdicts := components.Evaluate(components.Input{
			row.Component: field.Record{
				rule.Fields[0]: field.Num(row.A),
				rule.Fields[1]: field.Num(row.B),
			},
		})
		verdict, ok := verdicts[rule.Name]
		if !ok {
			res.Skipped = append(res.Skipped, line)
			continue
		}
		row.Line = line
		row.Name = rule.Name
		row.Verdict = verdict
		res.Rows = append(res.Rows, row)
	}
	res.Count = len(res.Rows)
	return res, nil
}

func parseRow(cells []string, rules map[string]components.Rule) (Row, bool) {
	if len(cells) < 3 {
		return Row{}, false
	}
	key := strings.ToLower(strings.TrimSpace(cells[0]))
	if _, ok := rules[key]; !ok {
		return Row{}, false
	}
	a, err := toFloat(cells[1])
	if err != nil {
		return Row{}, false
	}
	b, err := toFloat(cells[2])
	if err != nil {
		return Row{}, false
	}
	return Row{Component: key, A: a, B: b}, true
}

func toFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
