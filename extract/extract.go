// Package extract implements the hybrid extraction decision engine: the
// category classifier, the rule-based field parser, the confidence scorer,
// the LLM-necessity policy, the LLM-assisted extractor, and the result
// merger. Everything here is deterministic except the LLMExtractor, which
// depends on an injected harvest.CompletionClient.
package extract
