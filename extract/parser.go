package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// SuccessThreshold is the confidence above which a parse outcome counts as
// successful.
const SuccessThreshold = 0.3

// priceRE matches a currency amount: $ followed by digits, optional
// thousands separators, optional decimal part.
var priceRE = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?`)

// ratingRE matches "<n> out of <m>", "<n>/<m>", or "<n> star(s)". The
// "out of" form is tried first so "4.5 out of 5 stars" yields "4.5 out of 5".
var ratingRE = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*out of\s*\d+(?:\.\d+)?|\d+(?:\.\d+)?\s*/\s*\d+(?:\.\d+)?|\d+(?:\.\d+)?\s*stars?`)

// strategyFunc extracts one field from a page. A nil value means no match;
// the field is then omitted from the outcome.
type strategyFunc func(rule harvest.ExtractionRule, page *harvest.PageExtract) (any, error)

// strategies maps each match strategy to its extraction function. Rules with
// an unrecognized strategy fall through to extractGeneric.
var strategies = map[harvest.MatchStrategy]strategyFunc{
	harvest.StrategyTitle:       extractTitle,
	harvest.StrategyPrice:       extractPrice,
	harvest.StrategyDescription: extractDescription,
	harvest.StrategyRating:      extractRating,
	harvest.StrategyImages:      extractImages,
	harvest.StrategyLinks:       extractLinks,
	harvest.StrategyGeneric:     extractGeneric,
}

// Parser applies a rule set to a page extract. Each rule is evaluated
// independently; a rule that fails or finds nothing never aborts the others.
type Parser struct {
	// Logger receives per-rule failure records. Nil means slog.Default().
	Logger *slog.Logger
}

// Parse runs every rule in the set against the page and returns the outcome.
// A nil page yields a failed outcome with confidence 0 rather than an error.
func (p *Parser) Parse(rules harvest.RuleSet, page *harvest.PageExtract) *harvest.ParseOutcome {
	begin := time.Now()

	if page == nil {
		return &harvest.ParseOutcome{
			Success:    false,
			Fields:     harvest.FieldMap{},
			Confidence: 0,
			Errors:     []string{"no page extract available"},
			ElapsedMs:  time.Since(begin).Milliseconds(),
		}
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fields := harvest.FieldMap{}
	var ruleErrors []string

	for _, rule := range rules.Rules {
		fn, ok := strategies[rule.Strategy]
		if !ok {
			fn = extractGeneric
		}

		value, err := fn(rule, page)
		if err != nil {
			ruleErrors = append(ruleErrors, fmt.Sprintf("%s: %v", rule.Name, err))
			logger.Warn("rule failed", "field", rule.Name, "strategy", string(rule.Strategy), "error", err)
			continue
		}
		if value == nil {
			continue
		}
		fields[rule.Name] = value
	}

	confidence := Score(fields, rules)

	return &harvest.ParseOutcome{
		Success:         confidence > SuccessThreshold,
		Fields:          fields,
		Confidence:      confidence,
		ContextSnippets: contextSnippets(rules, fields, page.Text),
		Errors:          ruleErrors,
		ElapsedMs:       time.Since(begin).Milliseconds(),
	}
}

// contextSnippets locates, for every string-typed field value, the first
// body line containing the value verbatim. Rules are iterated in evaluation
// order so the snippet order is deterministic.
func contextSnippets(rules harvest.RuleSet, fields harvest.FieldMap, text string) []string {
	lines := strings.Split(text, "\n")

	var snippets []string
	for _, rule := range rules.Rules {
		value, ok := fields[rule.Name].(string)
		if !ok || value == "" {
			continue
		}
		for _, line := range lines {
			if strings.Contains(line, value) {
				snippets = append(snippets, fmt.Sprintf("%s: %s", rule.Name, strings.TrimSpace(line)))
				break
			}
		}
	}
	return snippets
}

// extractTitle returns the first non-empty heading, falling back to the
// first non-blank line of body text.
func extractTitle(_ harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	for _, h := range page.Headings {
		if s := strings.TrimSpace(h); s != "" {
			return s, nil
		}
	}
	for _, line := range strings.Split(page.Text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
	return nil, nil
}

// extractPrice returns currency matches from the body text in document
// order: all of them when the rule requests multiple, otherwise the first.
func extractPrice(rule harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	matches := priceRE.FindAllString(page.Text, -1)
	if len(matches) == 0 {
		return nil, nil
	}
	if rule.Multiple {
		return matches, nil
	}
	return matches[0], nil
}

// extractDescription returns the first body line longer than 50 characters.
func extractDescription(_ harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	for _, line := range strings.Split(page.Text, "\n") {
		if s := strings.TrimSpace(line); len(s) > 50 {
			return s, nil
		}
	}
	return nil, nil
}

// extractRating returns the first rating-shaped substring of the body text.
func extractRating(_ harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	if m := ratingRE.FindString(page.Text); m != "" {
		return strings.TrimSpace(m), nil
	}
	return nil, nil
}

// extractImages passes the page's image list through verbatim.
func extractImages(_ harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	if len(page.Images) == 0 {
		return nil, nil
	}
	return page.Images, nil
}

// extractLinks passes the page's link list through verbatim.
func extractLinks(_ harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	if len(page.Links) == 0 {
		return nil, nil
	}
	return page.Links, nil
}

// extractGeneric returns body lines whose lower-cased content contains the
// rule's field name.
func extractGeneric(rule harvest.ExtractionRule, page *harvest.PageExtract) (any, error) {
	needle := strings.ToLower(rule.Name)

	var matches []string
	for _, line := range strings.Split(page.Text, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if !rule.Multiple {
				return trimmed, nil
			}
			matches = append(matches, trimmed)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches, nil
}
