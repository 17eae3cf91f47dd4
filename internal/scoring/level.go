package scoring

import "math"

// maturity bands
const (
	LevelInitial      = "Inicial"
	LevelBasic        = "Básico"
	LevelStandardised = "Padronizado"
	LevelManaged      = "Gerido"
	LevelOptimised    = "Otimizado"
	// no level could be computed
	LevelUndefined = "—"
)

//
// classifies a weighted level into its maturity band.
// 4.5 itself still counts as managed.
//
func InterpretLevel(x float64) string {
	switch {
	case math.IsNaN(x):
		return LevelUndefined
	case x < 2:
		return LevelInitial
	case x < 3:
		return LevelBasic
	case x < 4:
		return LevelStandardised
	case x <= 4.5:
		return LevelManaged
	default:
		return LevelOptimised
	}
}
