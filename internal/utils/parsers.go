package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var amountPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

// ParseAmount extracts the first numeric token from free text. It tolerates
// thousand spaces and both comma and period decimal separators, so "1 500,50"
// and "1500 USD" both parse. Returns (nil, "") when no number is present.
// The returned display text is the trimmed original input.
func ParseAmount(text string) (*float64, string) {
	if text == "" {
		return nil, ""
	}
	compact := strings.ReplaceAll(text, " ", "")
	match := amountPattern.FindString(compact)
	if match == "" {
		return nil, ""
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil, ""
	}
	return &value, strings.TrimSpace(text)
}

// NormalizePhone strips everything but decimal digits. Returns "" when fewer
// than minDigits remain: that is the dedup key contract, so callers must treat
// "" as a validation failure rather than an empty phone.
func NormalizePhone(text string, minDigits int) string {
	var builder strings.Builder
	for _, ch := range text {
		if unicode.IsDigit(ch) {
			builder.WriteRune(ch)
		}
	}
	digits := builder.String()
	if len(digits) < minDigits {
		return ""
	}
	return digits
}

// MaskIdentifier shortens long identifiers for display. Values of 8 runes or
// fewer are shown verbatim.
func MaskIdentifier(value string) string {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "-"
	}
	runes := []rune(clean)
	if len(runes) <= 8 {
		return clean
	}
	return string(runes[:4]) + "…" + string(runes[len(runes)-4:])
}
