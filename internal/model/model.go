//
// Package model loads the maturity questionnaire definition
// from a spreadsheet workbook.
//
package model

// name of the sheet that holds the questionnaire
const SheetName = "Checklist & Autoavaliação"

// required column headers, in the order they are reported
const (
	ColPillar      = "Pilar / Dimensão"
	ColCode        = "Código"
	ColRequirement = "Requisito (NP 4427)"
	ColDescription = "Descrição / Pergunta de Avaliação"
	ColWeight      = "Peso (%)"
)

var RequiredColumns = []string{
	ColPillar,
	ColCode,
	ColRequirement,
	ColDescription,
	ColWeight,
}

//
// A single assessable requirement as defined
// in the questionnaire sheet.
// Rows are never modified after load.
//
type RequirementRow struct {
	Pillar      string  `json:"pillar"`
	Code        string  `json:"code"`
	Requirement string  `json:"requirement"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

//
// rows sharing a pillar, in sheet order
//
type PillarGroup struct {
	Pillar       string           `json:"pillar"`
	Requirements []RequirementRow `json:"requirements"`
}

//
// groups rows by pillar, keeping the order in which
// each pillar first appears
//
func GroupByPillar(rows []RequirementRow) []PillarGroup {
	groups := []PillarGroup{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Pillar]
		if !ok {
			i = len(groups)
			index[r.Pillar] = i
			groups = append(groups, PillarGroup{Pillar: r.Pillar})
		}
		groups[i].Requirements = append(groups[i].Requirements, r)
	}
	return groups
}
