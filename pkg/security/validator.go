package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100
)

// markupPatterns reject search text that is trying to smuggle markup or script
// into the rendered table page.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
	regexp.MustCompile(`[<>]`),
}

// ValidateSearchQuery validates and trims a name search query.
// Names are matched as plain substrings, so only printable name-like
// characters are accepted.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	// Check length
	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", errors.New("search query too long")
	}

	// Trim whitespace
	query = strings.TrimSpace(query)

	for _, pattern := range markupPatterns {
		if pattern.MatchString(query) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character can appear in a person's name search
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) || unicode.IsMark(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '\'' || char == '@' || char == ','
}
