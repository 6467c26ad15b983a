package discovery

import (
	"math"
	"strings"
	"unicode"

	"github.com/orienthq/orient/pkg/tools"
)

// Scoring weights. Changing these changes result ordering, so they are
// fixed constants rather than configuration.
const (
	weightNameExact     = 100
	weightNameToken     = 50
	weightKeywordFull   = 30
	weightKeywordMutual = 15
	weightUseCase       = 40
	weightDescription   = 15
	weightCategory      = 10
)

// Match-kind labels reported in SearchResult.MatchedOn.
const (
	matchName           = "name"
	matchNameToken      = "name_token"
	matchKeyword        = "keyword"
	matchKeywordPartial = "keyword_partial"
	matchUseCase        = "use_case"
	matchDescription    = "description"
	matchCategory       = "category"
)

// tokenize lowercases, splits on whitespace and punctuation, and drops
// tokens of length one or less.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) > 1 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func scoreTool(desc tools.Descriptor, query string) (int, []string) {
	q := strings.ToLower(strings.TrimSpace(query))
	qTokens := tokenize(q)
	if q == "" {
		return 0, nil
	}

	score := 0
	var matchedOn []string
	name := strings.ToLower(desc.Name)

	// Whole-query match against the tool name.
	if strings.Contains(name, q) {
		score += weightNameExact
		matchedOn = append(matchedOn, matchName)
	}

	// Query tokens in the tool name: flagged once, scored once.
	for _, token := range qTokens {
		if strings.Contains(name, token) {
			score += weightNameToken
			matchedOn = append(matchedOn, matchNameToken)
			break
		}
	}

	// Tool keywords: full weight when the whole query contains the
	// keyword, half weight for mutual-substring token matches.
	for _, keyword := range desc.Keywords {
		kw := strings.ToLower(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(q, kw) {
			score += weightKeywordFull
			matchedOn = appendLabel(matchedOn, matchKeyword)
			continue
		}
		for _, token := range qTokens {
			if strings.Contains(token, kw) || strings.Contains(kw, token) {
				score += weightKeywordMutual
				matchedOn = appendLabel(matchedOn, matchKeywordPartial)
				break
			}
		}
	}

	// Use-case phrase token overlap, scaled by the longer token list.
	for _, useCase := range desc.UseCases {
		ucTokens := tokenize(useCase)
		if len(ucTokens) == 0 || len(qTokens) == 0 {
			continue
		}
		overlap := 0
		for _, token := range qTokens {
			for _, ucToken := range ucTokens {
				if token == ucToken {
					overlap++
					break
				}
			}
		}
		if overlap == 0 {
			continue
		}
		denom := len(qTokens)
		if len(ucTokens) > denom {
			denom = len(ucTokens)
		}
		score += int(math.Round(weightUseCase * float64(overlap) / float64(denom)))
		matchedOn = appendLabel(matchedOn, matchUseCase)
	}

	// Query tokens in the description.
	description := strings.ToLower(desc.Description)
	for _, token := range qTokens {
		if strings.Contains(description, token) {
			score += weightDescription
			matchedOn = appendLabel(matchedOn, matchDescription)
		}
	}

	// Category keyword match, awarded once per tool.
	for _, kw := range tools.CategoryKeywords(desc.Category) {
		if strings.Contains(q, kw) || containsToken(qTokens, kw) {
			score += weightCategory
			matchedOn = append(matchedOn, matchCategory)
			break
		}
	}

	return score, matchedOn
}

func containsToken(tokens []string, s string) bool {
	for _, token := range tokens {
		if token == s {
			return true
		}
	}
	return false
}

func appendLabel(labels []string, label string) []string {
	for _, existing := range labels {
		if existing == label {
			return labels
		}
	}
	return append(labels, label)
}
