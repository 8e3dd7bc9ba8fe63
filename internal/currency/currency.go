// Package currency formats and parses monetary values using the Italian
// locale convention: "." as thousands separator and "," as decimal
// separator. Helpers degrade to "" or 0 on bad input instead of failing,
// since they sit in display and import paths where a single malformed
// value must not break the whole view.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Format renders a value with thousands separators and exactly two decimal
// digits, e.g. 1234567.5 -> "1.234.567,50". NaN and infinities render as "".
func Format(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}

	neg := value < 0
	// Round away from zero at the cent before splitting digits.
	cents := int64(math.Round(math.Abs(value) * 100))
	intPart := cents / 100
	fracPart := cents % 100

	digits := strconv.FormatInt(intPart, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	if fracPart < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(fracPart, 10))
	return b.String()
}

// FormatString formats a numeric string. Empty or unparseable input
// yields "".
func FormatString(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return ""
	}
	return Format(num)
}

// Parse is the inverse of Format: it strips "." thousands separators,
// converts the decimal comma to a decimal point, and parses the result.
// Empty or invalid input yields 0; Parse never returns an error.
func Parse(value string) float64 {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return 0
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.Replace(clean, ",", ".", 1)
	parsed, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// Round2 rounds to two decimal places, the resolution used for all stored
// and exported amounts.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
