package export

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/nsip/otf-maturity/internal/model"
	"github.com/nsip/otf-maturity/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("WET+1", 3600))

func scored() ([]model.RequirementRow, scoring.Ratings, scoring.Result) {
	rows := []model.RequirementRow{
		{Pillar: "Governação", Code: "G1", Requirement: "Política, formal", Description: "Existe \"política\"?", Weight: 60},
		{Pillar: "Governação", Code: "G2", Requirement: "Papéis", Description: "Definidos?", Weight: 40},
		{Pillar: "Dados", Code: "D1", Requirement: "Qualidade", Description: "Controlo?", Weight: 12.5},
	}
	ratings := scoring.Ratings{
		{Pillar: "Governação", Code: "G1"}: 4,
		{Pillar: "Governação", Code: "G2"}: 2,
	}
	return rows, ratings, scoring.Score(rows, ratings)
}

func TestWriteLayout(t *testing.T) {
	_, _, res := scored()
	var buf bytes.Buffer
	err := Write(&buf, Sheet{Participant: Participant{Name: "Ana Silva", Group: "T1"}, Result: res, At: at})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "2024-03-09 13:05:07 UTC"), lines[1])
	assert.Contains(t, lines[1], ",4,60,240,")
	// unrated requirement leaves level and points empty
	assert.Contains(t, lines[3], ",,12.5,,")
}

func TestWriteRequiresName(t *testing.T) {
	_, _, res := scored()
	err := Write(&bytes.Buffer{}, Sheet{Participant: Participant{Name: "  "}, Result: res, At: at})
	assert.Equal(t, ErrNameRequired, err)
}

func TestRoundTrip(t *testing.T) {
	rows, ratings, res := scored()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Sheet{Participant: Participant{Name: "Ana", Email: "ana@example.pt"}, Result: res, At: at}))

	recs, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, recs, len(rows))
	for i, rec := range recs {
		k := scoring.KeyOf(rows[i])
		assert.Equal(t, rows[i].Pillar, rec.Pillar)
		assert.Equal(t, rows[i].Code, rec.Code)
		assert.Equal(t, rows[i].Requirement, rec.Requirement)
		assert.Equal(t, rows[i].Weight, rec.Weight)
		want, rated := ratings.Get(k)
		assert.Equal(t, rated, rec.Rated)
		assert.Equal(t, want, rec.Level)
		assert.InDelta(t, res.Global.WeightedLevel, rec.GlobalLevel, 1e-9)
		assert.Equal(t, res.Global.Interpretation, rec.Interpretation)
		assert.True(t, rec.At.Equal(at))
	}
	assert.True(t, math.IsNaN(recs[2].Points))
}

func TestUndefinedGlobal(t *testing.T) {
	rows, _, _ := scored()
	res := scoring.Score(rows, scoring.Ratings{})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Sheet{Participant: Participant{Name: "Ana"}, Result: res, At: at}))

	recs, err := Read(&buf)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(recs[0].GlobalLevel))
	assert.Equal(t, scoring.LevelUndefined, recs[0].Interpretation)
}

func TestReadRejectsForeignHeader(t *testing.T) {
	_, err := Read(strings.NewReader("a,b,c,d,e,f,g,h,i,j,k,l,m\n"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "NP4427_Ana_Maria_Silva.csv", FileName(" Ana Maria Silva "))
}
