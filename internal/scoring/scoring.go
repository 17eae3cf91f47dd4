//
// Package scoring computes weighted maturity levels from
// requirement ratings.
//
// All functions are pure: results depend only on the rows
// and ratings passed in.
//
package scoring

import (
	"math"

	"github.com/nsip/otf-maturity/internal/model"
)

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// identifies a requirement within a questionnaire
type Key struct {
	Pillar string
	Code   string
}

func KeyOf(r model.RequirementRow) Key {
	return Key{Pillar: r.Pillar, Code: r.Code}
}

// ratings by requirement; absent keys are unrated
type Ratings map[Key]int

func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

//
// returns the rating for key, false when it is unset
// or outside the accepted range
//
func (rs Ratings) Get(k Key) (int, bool) {
	v, ok := rs[k]
	if !ok || !ValidRating(v) {
		return 0, false
	}
	return v, true
}

//
// copy of the ratings with every unrated row set to def,
// the way the questionnaire form pre-fills its answers
//
func (rs Ratings) WithDefaults(rows []model.RequirementRow, def int) Ratings {
	out := make(Ratings, len(rows))
	for k, v := range rs {
		out[k] = v
	}
	for _, r := range rows {
		if _, ok := out.Get(KeyOf(r)); !ok {
			out[KeyOf(r)] = def
		}
	}
	return out
}

type PillarAggregate struct {
	Pillar string
	// NaN when no row of the pillar is rated
	MeanRating        float64
	TotalWeight       float64
	TotalContribution float64
	ItemCount         int
	RatedCount        int
}

type GlobalScore struct {
	// NaN when undefined
	WeightedLevel  float64
	Interpretation string
}

func (g GlobalScore) Defined() bool {
	return !math.IsNaN(g.WeightedLevel)
}

type Diagnostics struct {
	Rated int
	// shares of rated rows; NaN when nothing is rated
	ShareAtLeast4 float64
	ShareAtMost2  float64
}

// per-row outcome, in row order
type RowScore struct {
	Row   model.RequirementRow
	Level int
	Rated bool
	// rating x weight, 0 when unrated
	Contribution float64
}

type Result struct {
	Rows        []RowScore
	Pillars     []PillarAggregate
	Global      GlobalScore
	Diagnostics Diagnostics
}

//
// scores the rows against the ratings.
// Unrated rows add weight to their pillar and to the global
// denominator but contribute no value.
// Pillars are returned in the order they first appear in rows,
// the same order as the questionnaire form, not sorted by name.
//
func Score(rows []model.RequirementRow, ratings Ratings) Result {
	res := Result{Rows: make([]RowScore, 0, len(rows))}

	index := map[string]int{}
	sums := []float64{}
	var totalWeight, totalContribution float64
	var high, low int

	for _, r := range rows {
		i, ok := index[r.Pillar]
		if !ok {
			i = len(res.Pillars)
			index[r.Pillar] = i
			res.Pillars = append(res.Pillars, PillarAggregate{Pillar: r.Pillar})
			sums = append(sums, 0)
		}
		p := &res.Pillars[i]
		p.ItemCount++
		p.TotalWeight += r.Weight
		totalWeight += r.Weight

		rs := RowScore{Row: r}
		if v, ok := ratings.Get(KeyOf(r)); ok {
			rs.Level = v
			rs.Rated = true
			rs.Contribution = float64(v) * r.Weight
			p.RatedCount++
			p.TotalContribution += rs.Contribution
			sums[i] += float64(v)
			totalContribution += rs.Contribution
			res.Diagnostics.Rated++
			if v >= 4 {
				high++
			}
			if v <= 2 {
				low++
			}
		}
		res.Rows = append(res.Rows, rs)
	}

	for i := range res.Pillars {
		p := &res.Pillars[i]
		if p.RatedCount == 0 {
			p.MeanRating = math.NaN()
			continue
		}
		p.MeanRating = sums[i] / float64(p.RatedCount)
	}

	level := math.NaN()
	if totalWeight > 0 && res.Diagnostics.Rated > 0 {
		level = totalContribution / totalWeight
	}
	res.Global = GlobalScore{WeightedLevel: level, Interpretation: InterpretLevel(level)}

	if n := res.Diagnostics.Rated; n > 0 {
		res.Diagnostics.ShareAtLeast4 = float64(high) / float64(n)
		res.Diagnostics.ShareAtMost2 = float64(low) / float64(n)
	} else {
		res.Diagnostics.ShareAtLeast4 = math.NaN()
		res.Diagnostics.ShareAtMost2 = math.NaN()
	}

	return res
}
