package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

//
// returned when the questionnaire sheet does not carry the
// expected columns, or repeats a pillar/code pair
//
type SchemaError struct {
	Missing    []string
	Duplicates []string
}

func (e *SchemaError) Error() string {
	parts := []string{}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, "duplicate requirements: "+strings.Join(e.Duplicates, ", "))
	}
	return "invalid questionnaire schema: " + strings.Join(parts, "; ")
}

//
// returned when the source cannot be fetched or read
// as a workbook
//
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load questionnaire from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// pkg/errors compatible
func (e *LoadError) Cause() error { return e.Err }

func newLoadError(source string, err error, msg string) *LoadError {
	return &LoadError{Source: source, Err: errors.Wrap(err, msg)}
}

//
// recorded for a requirement whose weight could not be
// used as given and was replaced
//
type ParseWarning struct {
	Row    int    `json:"row"`
	Pillar string `json:"pillar"`
	Code   string `json:"code"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("row %d (%s/%s): %s %q", w.Row, w.Pillar, w.Code, w.Reason, w.Value)
}

//
// collects non-fatal problems found while loading
//
type Warnings struct {
	items []ParseWarning
}

func (w *Warnings) Add(pw ParseWarning) {
	w.items = append(w.items, pw)
}

func (w *Warnings) Items() []ParseWarning {
	if w == nil {
		return nil
	}
	return w.items
}

func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}
	return len(w.items)
}
