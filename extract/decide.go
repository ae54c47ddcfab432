package extract

import (
	"strings"

	"github.com/fwojciec/harvest"
)

// llmConfidenceThreshold is the parse confidence below which the LLM pass is
// always warranted.
const llmConfidenceThreshold = 0.5

// referenceFields are the field names looked for in user instructions when
// deciding whether the parser left an instruction-requested field unmet.
var referenceFields = []string{
	"price", "title", "description", "rating", "reviews", "address", "contact",
}

// NeedsLLM decides whether a secondary language-model pass is warranted for
// a parse outcome. LLM augmentation is instruction-driven only: without
// instructions the answer is always false. Low confidence or outright parse
// failure force the LLM; otherwise it is targeted at instruction-requested
// fields the parser missed.
func NeedsLLM(outcome *harvest.ParseOutcome, instructions string) bool {
	if instructions == "" {
		return false
	}
	if outcome.Confidence < llmConfidenceThreshold {
		return true
	}
	if !outcome.Success {
		return true
	}

	// Substring containment against the joined field names, not exact set
	// membership: a "prices" field satisfies a "price" request.
	existing := strings.ToLower(strings.Join(outcome.Fields.Keys(), " "))
	wanted := strings.ToLower(instructions)
	for _, field := range referenceFields {
		if strings.Contains(wanted, field) && !strings.Contains(existing, field) {
			return true
		}
	}
	return false
}
