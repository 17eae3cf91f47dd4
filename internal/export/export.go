//
// Package export writes scored questionnaires as CSV and
// reads them back.
//
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nsip/otf-maturity/internal/scoring"
	"github.com/pkg/errors"
)

const TimestampLayout = "2006-01-02 15:04:05 UTC"

var Columns = []string{
	"Nome",
	"Email",
	"Turma",
	"Pilar / Dimensão",
	"Código",
	"Requisito (NP 4427)",
	"Descrição / Pergunta de Avaliação",
	"Nível",
	"Peso (%)",
	"Pontuação",
	"Nível Global",
	"Interpretação",
	"Timestamp",
}

var ErrNameRequired = errors.New("participant name is required to export results")

type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Group string `json:"group"`
}

// everything needed to produce one export
type Sheet struct {
	Participant Participant
	Result      scoring.Result
	At          time.Time
}

//
// writes one line per requirement; global columns are
// repeated on every line
//
func Write(w io.Writer, s Sheet) error {
	if strings.TrimSpace(s.Participant.Name) == "" {
		return ErrNameRequired
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(err, "cannot write csv header")
	}

	global := ""
	if s.Result.Global.Defined() {
		global = formatFloat(s.Result.Global.WeightedLevel)
	}
	ts := s.At.UTC().Format(TimestampLayout)

	for _, rs := range s.Result.Rows {
		level, points := "", ""
		if rs.Rated {
			level = strconv.Itoa(rs.Level)
			points = formatFloat(rs.Contribution)
		}
		rec := []string{
			s.Participant.Name,
			s.Participant.Email,
			s.Participant.Group,
			rs.Row.Pillar,
			rs.Row.Code,
			rs.Row.Requirement,
			rs.Row.Description,
			level,
			formatFloat(rs.Row.Weight),
			points,
			global,
			s.Result.Global.Interpretation,
			ts,
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "cannot write csv record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "cannot flush csv")
}

//
// NP4427_<name>.csv with spaces replaced
//
func FileName(name string) string {
	return "NP4427_" + strings.ReplaceAll(strings.TrimSpace(name), " ", "_") + ".csv"
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
