package mapping

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// DefaultTableName returns the plural snake_case table name of an entity.
//
//	Person    -> people
//	OrderLine -> order_lines
func DefaultTableName(entity pieces.EntityType) string {
	return inflection.Plural(snakeCase(string(entity)))
}

// DefaultColumnName returns the snake_case column name of a member.
func DefaultColumnName(member pieces.MemberID) string {
	return snakeCase(string(member))
}

// EntityNameForTable is the inverse of DefaultTableName.
//
//	people      -> Person
//	order_lines -> OrderLine
func EntityNameForTable(table string) pieces.EntityType {
	return pieces.EntityType(camelCase(inflection.Singular(strings.ToLower(table))))
}

// MemberNameForColumn is the inverse of DefaultColumnName.
func MemberNameForColumn(column string) pieces.MemberID {
	return pieces.MemberID(camelCase(column))
}

// snakeCase lowercases s, inserting '_' at word boundaries.
// "HTTPServer" becomes "http_server".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// camelCase joins '_'-separated words, capitalizing each.
func camelCase(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, "_") {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}
