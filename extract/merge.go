package extract

import (
	"sort"

	"github.com/fwojciec/harvest"
)

// MinKeepLength is the parser-value length below which an LLM value replaces
// an existing string. Short parser hits are assumed to be truncated or
// placeholder values; the threshold is inherited from the original system
// and deliberately not configurable.
const MinKeepLength = 10

// Merge combines parser and LLM field maps with parser precedence. An LLM
// value is taken iff the parser map lacks the key, or the parser value is a
// string shorter than MinKeepLength. The LLM never overwrites a non-string
// or a sufficiently long string. The merged map carries an
// _extraction_sources provenance sub-map recording the original parser keys,
// the original LLM keys, and the final merged key set.
func Merge(parserFields, llmFields harvest.FieldMap) harvest.FieldMap {
	merged := make(harvest.FieldMap, len(parserFields)+len(llmFields)+1)
	for k, v := range parserFields {
		merged[k] = v
	}

	for k, v := range llmFields {
		if v == nil {
			continue
		}
		existing, ok := merged[k]
		if !ok {
			merged[k] = v
			continue
		}
		if s, isString := existing.(string); isString && len(s) < MinKeepLength {
			merged[k] = v
		}
	}

	merged[harvest.SourcesKey] = map[string]any{
		"parser": sortedKeys(parserFields),
		"llm":    sortedKeys(llmFields),
		"hybrid": mergedKeys(merged),
	}
	return merged
}

// sortedKeys returns the map's keys in sorted order for deterministic
// provenance output.
func sortedKeys(m harvest.FieldMap) []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// mergedKeys returns the merged map's keys excluding the provenance entry.
func mergedKeys(m harvest.FieldMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == harvest.SourcesKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
