package model

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

//
// where the workbook comes from; exactly one of
// Data (an uploaded file) or URL is expected
//
type Source struct {
	URL  string
	Data []byte
}

func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return fmt.Sprintf("uploaded file (%d bytes)", len(s.Data))
}

//
// retrieves remote workbook content
//
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Loader struct {
	fetcher Fetcher
}

func NewLoader(f Fetcher) *Loader {
	return &Loader{fetcher: f}
}

//
// reads the questionnaire from the given source.
//
// returns the requirement rows in sheet order, plus any
// weight corrections that were applied while reading.
//
func (l *Loader) Load(ctx context.Context, src Source) ([]RequirementRow, *Warnings, error) {
	data := src.Data
	if src.URL != "" {
		if l.fetcher == nil {
			return nil, nil, &LoadError{Source: src.String(), Err: errors.New("no fetcher configured")}
		}
		b, err := l.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return nil, nil, newLoadError(src.String(), err, "fetch failed")
		}
		data = b
	}
	if len(data) == 0 {
		return nil, nil, &LoadError{Source: src.String(), Err: errors.New("empty workbook")}
	}

	rows, warns, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Source = src.String()
		}
		return nil, nil, err
	}
	return rows, warns, nil
}

//
// parses workbook bytes into requirement rows
//
func Parse(data []byte) ([]RequirementRow, *Warnings, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, newLoadError("", err, "not a readable workbook")
	}
	defer f.Close()

	found := false
	for _, name := range f.GetSheetList() {
		if name == SheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, &LoadError{Err: errors.Errorf("sheet %q not found", SheetName)}
	}

	grid, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, newLoadError("", err, "cannot read sheet")
	}

	return fromGrid(grid)
}

func fromGrid(grid [][]string) ([]RequirementRow, *Warnings, error) {
	var header []string
	if len(grid) > 0 {
		header = grid[0]
	}
	cols := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	missing := []string{}
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i := cols[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	warns := &Warnings{}
	rows := []RequirementRow{}
	seen := map[string]bool{}
	dups := []string{}
	for n, raw := range grid[1:] {
		sheetRow := n + 2
		r := RequirementRow{
			Pillar:      cell(raw, ColPillar),
			Code:        cell(raw, ColCode),
			Requirement: cell(raw, ColRequirement),
			Description: cell(raw, ColDescription),
		}
		weight := cell(raw, ColWeight)
		if r.Pillar == "" && r.Code == "" && r.Requirement == "" && r.Description == "" && weight == "" {
			continue
		}
		if r.Pillar == "" {
			warns.Add(ParseWarning{Row: sheetRow, Code: r.Code, Value: r.Requirement, Reason: "row without pillar skipped"})
			continue
		}

		w, reason := parseWeight(weight)
		if reason != "" {
			warns.Add(ParseWarning{Row: sheetRow, Pillar: r.Pillar, Code: r.Code, Value: weight, Reason: reason})
		}
		r.Weight = w

		key := r.Pillar + "::" + r.Code
		if seen[key] {
			dups = append(dups, key)
			continue
		}
		seen[key] = true
		rows = append(rows, r)
	}
	if len(dups) > 0 {
		return nil, nil, &SchemaError{Duplicates: dups}
	}

	return rows, warns, nil
}

//
// weights that are not usable numbers become 0;
// the returned reason is empty when the value was accepted
//
func parseWeight(s string) (float64, string) {
	if s == "" {
		return 0, "weight missing, using 0"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "weight not numeric, using 0"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "weight not finite, using 0"
	}
	if v < 0 {
		return 0, "negative weight, using 0"
	}
	return v, ""
}
