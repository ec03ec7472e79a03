// Package util holds small naming helpers shared by renderers and templates.
package util

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together: "HTTPStore" -> "http_store".
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '-' || r == ' ' || r == '.' {
			r = '_'
		}

		if i > 0 && unicode.IsUpper(r) {
			// Inside an acronym only the last capital before a lowercase
			// letter starts a new word.
			prevUpper := unicode.IsUpper(runes[i-1])
			prevSep := runes[i-1] == '_' || runes[i-1] == '-' || runes[i-1] == ' ' || runes[i-1] == '.'
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if !prevSep && (!prevUpper || nextLower) {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// ToPascalCase converts snake_case or kebab-case to PascalCase
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}

	return result.String()
}

// ToCamelCase converts snake_case or kebab-case to camelCase
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return pascal
	}

	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ShortName strips the import path from a qualified name:
// "example.com/app.Counter" -> "Counter", "example.com/app" -> "app".
func ShortName(qualified string) string {
	base := qualified
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 && i+1 < len(base) {
		return base[i+1:]
	}
	return base
}
