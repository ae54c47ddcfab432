package extract

import "github.com/fwojciec/harvest"

// defaultRuleSets is the process-wide read-only rule table. Access goes
// through RuleSetFor, which returns a deep copy so callers can never mutate
// the defaults.
var defaultRuleSets = map[harvest.Category][]harvest.ExtractionRule{
	harvest.CategoryEcommerce: {
		{Name: "title", Strategy: harvest.StrategyTitle, Required: true},
		{Name: "price", Strategy: harvest.StrategyPrice, Required: true, Multiple: true},
		{Name: "description", Strategy: harvest.StrategyDescription},
		{Name: "rating", Strategy: harvest.StrategyRating},
		{Name: "images", Strategy: harvest.StrategyImages, Multiple: true},
	},
	harvest.CategoryRealEstate: {
		{Name: "title", Strategy: harvest.StrategyTitle, Required: true},
		{Name: "price", Strategy: harvest.StrategyPrice, Required: true},
		{Name: "address", Strategy: harvest.StrategyGeneric, Required: true},
		{Name: "description", Strategy: harvest.StrategyDescription},
		{Name: "images", Strategy: harvest.StrategyImages, Multiple: true},
	},
	harvest.CategoryTravel: {
		{Name: "title", Strategy: harvest.StrategyTitle, Required: true},
		{Name: "price", Strategy: harvest.StrategyPrice, Multiple: true},
		{Name: "rating", Strategy: harvest.StrategyRating},
		{Name: "description", Strategy: harvest.StrategyDescription},
		{Name: "links", Strategy: harvest.StrategyLinks, Multiple: true},
	},
	harvest.CategoryHealthcare: {
		{Name: "title", Strategy: harvest.StrategyTitle, Required: true},
		{Name: "description", Strategy: harvest.StrategyDescription},
		{Name: "contact", Strategy: harvest.StrategyGeneric},
		{Name: "address", Strategy: harvest.StrategyGeneric},
		{Name: "links", Strategy: harvest.StrategyLinks, Multiple: true},
	},
	harvest.CategoryGeneral: {
		{Name: "title", Strategy: harvest.StrategyTitle, Required: true},
		{Name: "description", Strategy: harvest.StrategyDescription},
		{Name: "links", Strategy: harvest.StrategyLinks, Multiple: true},
		{Name: "images", Strategy: harvest.StrategyImages, Multiple: true},
	},
}

// RuleSetFor returns the rule set for a category. Unknown categories get the
// general rule set. The returned set is a copy; mutating it does not affect
// the defaults.
func RuleSetFor(category harvest.Category) harvest.RuleSet {
	rules, ok := defaultRuleSets[category]
	if !ok {
		category = harvest.CategoryGeneral
		rules = defaultRuleSets[harvest.CategoryGeneral]
	}
	out := harvest.RuleSet{Category: category, Rules: make([]harvest.ExtractionRule, len(rules))}
	copy(out.Rules, rules)
	return out
}

// Categories returns all categories with a default rule set, in priority
// order with general last.
func Categories() []harvest.Category {
	return []harvest.Category{
		harvest.CategoryEcommerce,
		harvest.CategoryRealEstate,
		harvest.CategoryTravel,
		harvest.CategoryHealthcare,
		harvest.CategoryGeneral,
	}
}
