package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseLenientJSON parses JSON that was stored by hand or by older clients and may contain:
// - Pure JSON
// - JSON surrounded by other text
// - Trailing commas, unquoted keys or single-quoted strings
func ParseLenientJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Try to find JSON object/array in text
	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to clean and fix common JSON issues
	if cleaned := cleanAndFixJSON(input); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// ParseStringList decodes a list of tags stored in any of the shapes seen in the data:
// a JSON array, a JSON string holding an encoded array, a loosely quoted array or
// plain comma separated text. Empty input yields an empty list.
func ParseStringList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []string{}, nil
	}

	var list []string
	if err := ParseLenientJSON(s, &list); err == nil {
		return compactStrings(list), nil
	}

	// Double encoded: "[\"Pool\",\"Gym\"]"
	var inner string
	if err := json.Unmarshal([]byte(s), &inner); err == nil {
		return ParseStringList(inner)
	}

	if !strings.ContainsAny(s, `[]{}"`) {
		return compactStrings(strings.Split(s, ",")), nil
	}

	return []string{}, fmt.Errorf("failed to parse string list: %s", truncateString(s, 100))
}

// compactStrings trims every element and drops the empty ones
func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// extractJSONFromText finds JSON array or object in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)

	// Remove BOM if present
	s = strings.TrimPrefix(s, "\ufeff")

	// Single quotes first so the passes below see regular strings
	s = fixSingleQuotes(s)

	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)

	return controlCharRe.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted strings to double-quoted ones.
// A single quote only opens a string after a structural character, so
// apostrophes inside words are left alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDouble, inSingle, escape := false, false, false
	prev := rune(0)

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && inSingle:
			result.WriteString(`\"`)
			continue
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if inSingle {
				inSingle = false
				prev = '"'
				result.WriteRune('"')
				continue
			}
			if prev == 0 || strings.ContainsRune(":,[{", prev) {
				inSingle = true
				result.WriteRune('"')
				continue
			}
		}

		if !inDouble && !inSingle && !unicode.IsSpace(ch) {
			prev = ch
		}
		result.WriteRune(ch)
	}

	return result.String()
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
