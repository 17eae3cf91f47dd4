package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// one parsed line of an exported file
type Record struct {
	Participant    Participant
	Pillar         string
	Code           string
	Requirement    string
	Description    string
	Level          int
	Rated          bool
	Weight         float64
	Points         float64
	GlobalLevel    float64
	Interpretation string
	At             time.Time
}

//
// parses a file produced by Write
//
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	head, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read csv header")
	}
	for i, c := range Columns {
		if head[i] != c {
			return nil, errors.Errorf("unexpected column %q at position %d, want %q", head[i], i, c)
		}
	}

	out := []Record{}
	for line := 2; ; line++ {
		f, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rec := Record{
			Participant:    Participant{Name: f[0], Email: f[1], Group: f[2]},
			Pillar:         f[3],
			Code:           f[4],
			Requirement:    f[5],
			Description:    f[6],
			Interpretation: f[11],
		}
		if f[7] != "" {
			if rec.Level, err = strconv.Atoi(f[7]); err != nil {
				return nil, errors.Wrapf(err, "line %d: level", line)
			}
			rec.Rated = true
		}
		if rec.Weight, err = strconv.ParseFloat(f[8], 64); err != nil {
			return nil, errors.Wrapf(err, "line %d: weight", line)
		}
		if rec.Points, err = parseOptional(f[9]); err != nil {
			return nil, errors.Wrapf(err, "line %d: points", line)
		}
		if rec.GlobalLevel, err = parseOptional(f[10]); err != nil {
			return nil, errors.Wrapf(err, "line %d: global level", line)
		}
		if rec.At, err = time.Parse(TimestampLayout, f[12]); err != nil {
			return nil, errors.Wrapf(err, "line %d: timestamp", line)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseOptional(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
