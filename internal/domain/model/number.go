package model

import (
	"regexp"
	"strings"
)

var (
	// phonePattern mirrors what users paste: an optional plus and 7-15 digits.
	phonePattern = regexp.MustCompile(`\+?\d{7,15}`)
	digitRun     = regexp.MustCompile(`\+?\d+`)
	fieldSep     = regexp.MustCompile(`[,;|:\t]`)
	entrySep     = regexp.MustCompile(`[,|:\t]`)
)

// NormalizeNumber keeps only the digits of raw and prefixes them with "+".
// It reports false when raw holds no digit at all.
func NormalizeNumber(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw) + 1)
	b.WriteByte('+')
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 {
		return "", false
	}
	return b.String(), true
}

// ExtractPhoneNumbers finds phone-like tokens anywhere in text and returns them
// normalized, de-duplicated, in first-seen order.
func ExtractPhoneNumbers(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range phonePattern.FindAllString(text, -1) {
		n, ok := NormalizeNumber(m)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NumericTokens returns the normalized numeric tokens of a single line.
// Fields are separated by , ; | : or TAB. A field made only of digits and
// formatting characters ("+1 (555) 010-2030") is one token; any other field
// contributes each digit run it contains.
func NumericTokens(line string) []string {
	var out []string
	for _, field := range fieldSep.Split(line, -1) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if compact := compactNumber(field); isNumeric(compact) {
			n, _ := NormalizeNumber(compact)
			out = append(out, n)
			continue
		}
		for _, m := range digitRun.FindAllString(field, -1) {
			if n, ok := NormalizeNumber(m); ok {
				out = append(out, n)
			}
		}
	}
	return out
}

// SplitEntry separates an entry line into a label and the part holding the
// number. "John,+123" and "John +123" both give ("John", "+123"); a line that
// is only a number gives an empty label.
func SplitEntry(value string) (label, number string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}
	if isNumeric(compactNumber(value)) {
		return "", value
	}
	if entrySep.MatchString(value) {
		parts := entrySep.Split(value, 2)
		first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if !hasDigit(second) && isNumeric(compactNumber(first)) {
			return second, first
		}
		return first, second
	}
	fields := strings.Fields(value)
	if len(fields) == 1 {
		return "", value
	}
	// Longest numeric tail wins so "John Smith +1 555 0100" keeps the full name.
	for i := 1; i < len(fields); i++ {
		tail := strings.Join(fields[i:], " ")
		if isNumeric(compactNumber(tail)) {
			return strings.Join(fields[:i], " "), tail
		}
	}
	// Then the longest numeric head, for "5550100 (work)".
	for i := len(fields) - 1; i > 0; i-- {
		head := strings.Join(fields[:i], " ")
		if isNumeric(compactNumber(head)) {
			return strings.Join(fields[i:], " "), head
		}
	}
	if rest := strings.Join(fields[1:], " "); hasDigit(rest) {
		return fields[0], rest
	}
	return "", value
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func compactNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', '(', ')':
			return -1
		}
		return r
	}, s)
}

func isNumeric(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
