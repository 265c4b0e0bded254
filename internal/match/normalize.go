package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for comparison: CamelCase tokens are
// split, separators (_, -, space) dropped, and the result lowercased, so
// "customer_name", "CustomerName", and "customername" normalize equal.
func NormalizeIdent(s string) string {
	joined := strings.Join(tokenize(s), "")

	return strings.ToLower(joined)
}

// tokenize splits a CamelCase, snake_case, or kebab-case identifier into
// its word tokens. Acronym runs stay together: "XMLParser" -> XML, Parser.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && startsNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

func startsNewToken(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	prev := runes[i-1]
	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		// lower-to-upper boundary: "orderID" splits before 'I'
		return true
	}

	// end of an acronym run: "XMLParser" splits before 'P'
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
