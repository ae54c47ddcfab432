// Package harvest provides hybrid structured-data extraction from web pages.
// Given a URL and an optional natural-language instruction it produces a
// record of named fields (price, title, address, etc.) using a two-tier
// strategy: a deterministic rule-based parser and a fallback language-model
// extractor, merged into one result with a confidence score and per-field
// provenance.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, gemini/,
// extract/, pipeline/).
package harvest
