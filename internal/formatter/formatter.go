// Package formatter classifies a question's intent and shapes the final
// reply's verbosity and citation style accordingly.
package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"csvchat/internal/domain"
)

// Intent is the question class controlling how an answer is rendered.
type Intent int

const (
	// IntentAnalytical is the fallback: full answer with evidence.
	IntentAnalytical Intent = iota
	// IntentSimple wants just the bare fact.
	IntentSimple
	// IntentStats wants the number plus a brief source note.
	IntentStats
)

// ErrorText is returned for a malformed answer instead of failing.
const ErrorText = "Error: Invalid answer format"

const (
	statsSourceLimit     = 150
	analyticalChunkLimit = 200
	analyticalChunkCount = 2
)

type rule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// rules is evaluated in order against the normalized question; the
// first match wins. Simple patterns come before stats patterns, and
// anything unmatched is analytical.
var rules = []rule{
	{regexp.MustCompile(`columns?( names| list)?`), IntentSimple},
	{regexp.MustCompile(`how many (rows|columns)`), IntentSimple},
	{regexp.MustCompile(`data types?`), IntentSimple},
	{regexp.MustCompile(`shape( of|$)`), IntentSimple},
	{regexp.MustCompile(`(is|are) there (duplicates|missing)`), IntentSimple},
	{regexp.MustCompile(`what (is|are) the (first|last) \d+ rows`), IntentSimple},
	{regexp.MustCompile(`(mean|median|average|max|min) of`), IntentStats},
	{regexp.MustCompile(`unique values in`), IntentStats},
	{regexp.MustCompile(`most frequent`), IntentStats},
}

var (
	whatsRe  = regexp.MustCompile(`\bwhat'?s\b`)
	fillerRe = regexp.MustCompile(`\b(please|can you|show me)\b`)
)

// Normalize standardizes a question before classification: lowercase,
// surrounding whitespace and question marks stripped, "what's" expanded,
// filler phrases removed.
func Normalize(question string) string {
	q := strings.ToLower(question)
	q = strings.Trim(q, "? ")
	q = whatsRe.ReplaceAllString(q, "what is")
	return fillerRe.ReplaceAllString(q, "")
}

// Classify returns the intent of the question.
func Classify(question string) Intent {
	q := Normalize(question)
	for _, r := range rules {
		if r.pattern.MatchString(q) {
			return r.intent
		}
	}
	return IntentAnalytical
}

// Format renders the final reply for the question's intent. A nil
// result yields a fixed error string rather than failing.
func Format(result *domain.AnswerResult, question string) string {
	if result == nil {
		return ErrorText
	}
	switch Classify(question) {
	case IntentSimple:
		return result.Answer
	case IntentStats:
		reply := result.Answer
		if len(result.Sources) > 0 {
			reply += fmt.Sprintf("\n\n(Source: %s...)", truncate(result.Sources[0], statsSourceLimit))
		}
		return reply
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Analysis: %s\n\n", result.Answer)
		if len(result.Sources) > 0 {
			b.WriteString("Supporting Evidence:\n")
			for i, src := range result.Sources {
				if i == analyticalChunkCount {
					break
				}
				fmt.Fprintf(&b, "%d. %s...\n", i+1, truncate(src, analyticalChunkLimit))
			}
		}
		return b.String()
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
