// Package decision implements the action path rule table for classified,
// matched items.
package decision

import (
	"github.com/example/bomflow/internal/extraction"
	"github.com/example/bomflow/internal/matching"
)

// ActionPath routes an item toward automatic registration, manual
// verification, or human intervention.
type ActionPath string

const (
	AutoRegister      ActionPath = "Auto-Register"
	VerifyMatch       ActionPath = "Verify Match"
	HumanIntervention ActionPath = "Human Intervention Required"
)

// Decide maps a classified item to its action path. The rule table is
// evaluated top to bottom, first match wins:
//
//	label 1-2, high confidence, matched        -> Auto-Register
//	label 3-4                                  -> Auto-Register if matched, else Human Intervention Required
//	label 5                                    -> Human Intervention Required
//	no match                                   -> Human Intervention Required
//	medium confidence                          -> Verify Match
//	otherwise                                  -> Human Intervention Required
//
// The consumable flag is part of the contract for forward compatibility;
// no current rule branches on it.
func Decide(label int, level extraction.Level, source matching.Source, consumable bool) ActionPath {
	matched := source != matching.SourceNoMatch

	switch {
	case (label == 1 || label == 2) && level == extraction.LevelHigh && matched:
		return AutoRegister
	case label == 3 || label == 4:
		if matched {
			return AutoRegister
		}
		return HumanIntervention
	case label == 5:
		return HumanIntervention
	case !matched:
		return HumanIntervention
	case level == extraction.LevelMedium:
		return VerifyMatch
	default:
		return HumanIntervention
	}
}
