// Package normalize converts raw CSV tokens from the freight extracts into
// typed values. Every parser reports "no value" with ok=false instead of an
// error: a bad token nulls one field, it never rejects a row.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// blanks are stripped anywhere inside a numeric token. The extracts use plain
// spaces, NBSP and narrow NBSP as digit group separators.
var blanks = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

// ParseNumber parses a German-locale number ("1.234,5" -> 1234.5).
//
// Tokens carrying an exponent ("1,2E+05") are parsed directly with the comma
// read as the decimal point. All other tokens treat '.' as the thousands
// separator and ',' as the decimal separator.
func ParseNumber(raw string) (float64, bool) {
	s := blanks.Replace(strings.TrimSpace(raw))
	if s == "" || s == "," {
		return 0, false
	}
	if !numericChars(s) {
		return 0, false
	}
	up := strings.ToUpper(s)
	if strings.Contains(up, "E+") || strings.Contains(up, "E-") {
		return parseFloat(strings.ReplaceAll(s, ",", "."))
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return parseFloat(s)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericChars rejects tokens strconv would accept but the source locale never
// produces (hex floats, "Inf", "NaN", underscores).
func numericChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == ',', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// Optional turns a parser result into a nullable column value.
func Optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
