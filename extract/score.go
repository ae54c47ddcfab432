package extract

import "github.com/fwojciec/harvest"

// Score weights for the confidence model.
const (
	requiredWeight = 0.7
	coverageWeight = 0.3
)

// Score computes the confidence of a field map against the rule set that
// produced it. The score is a pure function: 0.7 x required-field coverage
// plus 0.3 x overall field yield, always in [0,1].
func Score(fields harvest.FieldMap, rules harvest.RuleSet) float64 {
	requiredScore := 1.0
	if n := rules.RequiredCount(); n > 0 {
		var present int
		for _, rule := range rules.Rules {
			if !rule.Required {
				continue
			}
			if _, ok := fields[rule.Name]; ok {
				present++
			}
		}
		requiredScore = float64(present) / float64(n)
	}

	coverageScore := 1.0
	if len(rules.Rules) > 0 {
		coverageScore = float64(len(fields)) / float64(len(rules.Rules))
	}

	return requiredWeight*requiredScore + coverageWeight*coverageScore
}
