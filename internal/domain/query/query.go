// Package query turns a raw user query into embedding-ready text while
// keeping double-quoted phrases together as atomic semantic units.
package query

import (
	"regexp"
	"strings"
)

// phrasePattern matches a double-quoted span. Inside the quotes, the
// two-character sequence \" is a literal escaped quote, not a delimiter.
// An unpaired quote never matches and stays ordinary text.
var phrasePattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// wsRun matches one or more whitespace characters.
var wsRun = regexp.MustCompile(`\s+`)

// Parsed is the outcome of phrase extraction over a raw query.
type Parsed struct {
	// Processed is the raw query with every quoted span replaced by the
	// unescaped phrase, whitespace runs collapsed to single underscores.
	// The embedding model sees each phrase as one word-like token.
	Processed string
	// Phrases holds the extracted phrases in order of appearance, with
	// escaped quotes unescaped. May contain empty strings (from "").
	Phrases []string
}

// Parse extracts quoted phrases from raw. It is pure and never fails:
// with no quote pairs present, Processed equals raw and Phrases is empty.
func Parse(raw string) Parsed {
	if !strings.Contains(raw, `"`) {
		return Parsed{Processed: raw}
	}

	var phrases []string
	processed := phrasePattern.ReplaceAllStringFunc(raw, func(span string) string {
		phrase := unescape(span[1 : len(span)-1])
		phrases = append(phrases, phrase)
		return wsRun.ReplaceAllString(phrase, "_")
	})

	return Parsed{Processed: processed, Phrases: phrases}
}

// Enhance builds the text sent to the embedding provider. The processed
// query keeps each phrase glued into a single token; appending the literal
// phrases again increases their relative weight in the resulting vector,
// nudging nearest-neighbor search toward documents carrying that exact
// phrase concept. Without phrases the raw query is returned verbatim.
func Enhance(raw string) string {
	p := Parse(raw)

	emphasis := make([]string, 0, len(p.Phrases))
	for _, phrase := range p.Phrases {
		if phrase != "" {
			emphasis = append(emphasis, phrase)
		}
	}
	if len(emphasis) == 0 {
		return raw
	}

	return p.Processed + " " + strings.Join(emphasis, " ")
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}
