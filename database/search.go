package database

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SearchTermParser turns free text into a LIKE pattern for substring search.
// The pattern is always bound as a parameter, never spliced into SQL.
type SearchTermParser struct {
	maxLength int
}

// NewSearchTermParser creates a parser accepting terms up to 200 characters.
func NewSearchTermParser() *SearchTermParser {
	return &SearchTermParser{
		maxLength: 200,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Parse converts a user's search text into a lower-cased LIKE pattern:
//  1. Trims whitespace and collapses inner runs of spaces
//  2. Validates length (max 200 characters)
//  3. Lower-cases
//  4. Escapes LIKE metacharacters (\ % _)
//  5. Wraps in % sentinels
//
// Examples:
//
//	"React"      → "%react%"
//	"  web  app" → "%web app%"
//	"100%"       → "%100\%%"
//
// An empty or whitespace-only query returns "" with no error: the caller
// treats it as "no search".
func (p *SearchTermParser) Parse(query string) (string, error) {
	query = p.normalize(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > p.maxLength {
		return "", fmt.Errorf("search query too long (max %d characters)", p.maxLength)
	}

	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%", nil
}

func (p *SearchTermParser) normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
