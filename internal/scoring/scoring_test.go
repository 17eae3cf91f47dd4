package scoring

import (
	"math"
	"testing"

	"github.com/nsip/otf-maturity/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows() []model.RequirementRow {
	return []model.RequirementRow{
		{Pillar: "P1", Code: "A", Weight: 60},
		{Pillar: "P1", Code: "B", Weight: 40},
	}
}

func TestScoreTwoRowPillar(t *testing.T) {
	res := Score(rows(), Ratings{
		{Pillar: "P1", Code: "A"}: 4,
		{Pillar: "P1", Code: "B"}: 2,
	})

	require.Len(t, res.Pillars, 1)
	p := res.Pillars[0]
	assert.Equal(t, "P1", p.Pillar)
	assert.Equal(t, 3.0, p.MeanRating)
	assert.Equal(t, 100.0, p.TotalWeight)
	assert.Equal(t, 320.0, p.TotalContribution)
	assert.Equal(t, 2, p.ItemCount)
	assert.InDelta(t, 3.2, res.Global.WeightedLevel, 1e-9)
	assert.Equal(t, LevelStandardised, res.Global.Interpretation)
	assert.True(t, res.Global.Defined())

	assert.Equal(t, 0.5, res.Diagnostics.ShareAtLeast4)
	assert.Equal(t, 0.5, res.Diagnostics.ShareAtMost2)
}

func TestScoreNoRatings(t *testing.T) {
	res := Score(rows(), Ratings{})

	assert.False(t, res.Global.Defined())
	assert.Equal(t, LevelUndefined, res.Global.Interpretation)
	assert.True(t, math.IsNaN(res.Pillars[0].MeanRating))
	assert.Equal(t, 100.0, res.Pillars[0].TotalWeight)
	assert.True(t, math.IsNaN(res.Diagnostics.ShareAtLeast4))
}

func TestScoreZeroWeight(t *testing.T) {
	res := Score([]model.RequirementRow{{Pillar: "P1", Code: "A"}}, Ratings{{Pillar: "P1", Code: "A"}: 5})

	assert.False(t, res.Global.Defined())
	assert.Equal(t, LevelUndefined, res.Global.Interpretation)
	assert.Equal(t, 5.0, res.Pillars[0].MeanRating)
}

func TestScoreSkipsUnrated(t *testing.T) {
	rs := append(rows(), model.RequirementRow{Pillar: "P2", Code: "A", Weight: 100})
	res := Score(rs, Ratings{
		{Pillar: "P1", Code: "A"}: 5,
		{Pillar: "P2", Code: "A"}: 1,
	})

	require.Len(t, res.Pillars, 2)
	p1 := res.Pillars[0]
	// the unrated row keeps its weight but not a value
	assert.Equal(t, 5.0, p1.MeanRating)
	assert.Equal(t, 100.0, p1.TotalWeight)
	assert.Equal(t, 1, p1.RatedCount)
	assert.Equal(t, 2, p1.ItemCount)

	assert.InDelta(t, (5*60.0+1*100.0)/200.0, res.Global.WeightedLevel, 1e-9)
	assert.False(t, res.Rows[1].Rated)
	assert.Equal(t, 0.0, res.Rows[1].Contribution)
}

func TestScoreIgnoresOutOfRange(t *testing.T) {
	res := Score(rows(), Ratings{
		{Pillar: "P1", Code: "A"}: 0,
		{Pillar: "P1", Code: "B"}: 9,
	})
	assert.Equal(t, 0, res.Diagnostics.Rated)
	assert.False(t, res.Global.Defined())
}

func TestScorePillarWeightTotalsInSheetOrder(t *testing.T) {
	rs := []model.RequirementRow{
		{Pillar: "Y", Code: "1", Weight: 10},
		{Pillar: "X", Code: "1", Weight: 5},
		{Pillar: "Y", Code: "2", Weight: 7.5},
		{Pillar: "X", Code: "2", Weight: 0},
	}
	res := Score(rs, Ratings{{Pillar: "X", Code: "1"}: 3})

	// first appearance, not alphabetical
	require.Len(t, res.Pillars, 2)
	assert.Equal(t, "Y", res.Pillars[0].Pillar)
	assert.Equal(t, "X", res.Pillars[1].Pillar)
	assert.Equal(t, 17.5, res.Pillars[0].TotalWeight)
	assert.Equal(t, 5.0, res.Pillars[1].TotalWeight)
}

func TestWithDefaults(t *testing.T) {
	r := Ratings{{Pillar: "P1", Code: "A"}: 5}
	filled := r.WithDefaults(rows(), DefaultRating)

	assert.Equal(t, 5, filled[Key{"P1", "A"}])
	assert.Equal(t, DefaultRating, filled[Key{"P1", "B"}])
	_, ok := r[Key{"P1", "B"}]
	assert.False(t, ok, "original ratings untouched")
}

func TestInterpretLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, LevelInitial},
		{1.99, LevelInitial},
		{2, LevelBasic},
		{2.99, LevelBasic},
		{3, LevelStandardised},
		{3.99, LevelStandardised},
		{4, LevelManaged},
		{4.5, LevelManaged},
		{4.51, LevelOptimised},
		{5, LevelOptimised},
		{math.NaN(), LevelUndefined},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretLevel(tt.in), "level %v", tt.in)
	}
}
