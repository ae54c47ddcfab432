package harvest

// MatchStrategy selects the extraction algorithm applied by a rule.
type MatchStrategy string

// Supported match strategies. Unrecognized strategies are treated as
// StrategyGeneric by the parser.
const (
	StrategyTitle       MatchStrategy = "title"
	StrategyPrice       MatchStrategy = "price"
	StrategyDescription MatchStrategy = "description"
	StrategyRating      MatchStrategy = "rating"
	StrategyImages      MatchStrategy = "images"
	StrategyLinks       MatchStrategy = "links"
	StrategyGeneric     MatchStrategy = "generic"
)

// Category identifies a site vertical with a tuned rule set.
type Category string

// Supported site categories.
const (
	CategoryEcommerce  Category = "ecommerce"
	CategoryRealEstate Category = "realestate"
	CategoryTravel     Category = "travel"
	CategoryHealthcare Category = "healthcare"
	CategoryGeneral    Category = "general"
)

// ExtractionRule describes how a single named field is extracted from a
// page. Rules are immutable once defined.
type ExtractionRule struct {
	// Name is the output field name (e.g., "price", "title").
	Name string `json:"name"`

	// Strategy selects the extraction algorithm.
	Strategy MatchStrategy `json:"strategy"`

	// Required marks the field as counting towards the required-field
	// component of the confidence score.
	Required bool `json:"required"`

	// Multiple requests all matches instead of the first.
	Multiple bool `json:"multiple"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *ExtractionRule) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "rule name required")
	}
	return nil
}

// RuleSet is an ordered sequence of extraction rules for one category.
type RuleSet struct {
	Category Category         `json:"category"`
	Rules    []ExtractionRule `json:"rules"`
}

// Validate returns an error if the rule set contains invalid or duplicate
// rules. Rule names must be unique within a set.
func (rs *RuleSet) Validate() error {
	seen := make(map[string]bool, len(rs.Rules))
	for i := range rs.Rules {
		if err := rs.Rules[i].Validate(); err != nil {
			return err
		}
		if seen[rs.Rules[i].Name] {
			return Errorf(EINVALID, "duplicate rule name %q", rs.Rules[i].Name)
		}
		seen[rs.Rules[i].Name] = true
	}
	return nil
}

// RequiredCount returns the number of required rules in the set.
func (rs *RuleSet) RequiredCount() int {
	var n int
	for i := range rs.Rules {
		if rs.Rules[i].Required {
			n++
		}
	}
	return n
}
