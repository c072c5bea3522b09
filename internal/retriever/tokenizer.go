package retriever

import (
	"regexp"
	"strings"
	"unicode"
)

// wordRegex matches alphanumeric runs (underscores kept for the initial split).
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// DefaultStopWords are filtered out during tokenization. The corpus mixes
// prose and source files, so the set covers both English filler and common
// programming keywords.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"in", "into", "is", "it", "of", "on", "or", "that", "the", "to", "with",
	"var", "let", "const", "func", "function", "def", "class",
	"return", "if", "else", "import",
}

// Tokenize splits text with code-aware rules: camelCase, PascalCase and
// snake_case identifiers are split, tokens are lowercased, and tokens
// shorter than minLen are dropped.
func Tokenize(text string, minLen int) []string {
	if minLen <= 0 {
		minLen = 1
	}

	var tokens []string
	for _, word := range wordRegex.FindAllString(text, -1) {
		for _, t := range splitIdentifier(word) {
			lower := strings.ToLower(t)
			if len(lower) >= minLen {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

// splitIdentifier splits snake_case, then camelCase within each part.
func splitIdentifier(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, splitCamel(part)...)
			}
		}
		return result
	}
	return splitCamel(token)
}

// splitCamel splits camelCase and PascalCase, keeping acronyms together:
// "parseHTTPRequest" -> ["parse", "HTTP", "Request"].
func splitCamel(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

// buildStopWordSet lowercases a stop word list into a lookup set.
func buildStopWordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}
