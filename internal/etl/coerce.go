package etl

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// dateLayouts are the timestamp formats accepted in raw extracts, tried in
// order. Anything else coerces to null.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseFloat coerces a raw value to a float with parse-else-null semantics.
// Currency prefixes and thousands separators are tolerated. NaN and Inf are
// treated as unparseable so they can never propagate into aggregates.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// floatOrZero coerces a raw value to a float, defaulting to 0. The second
// return reports whether a non-empty value failed to parse.
func floatOrZero(s string) (float64, bool) {
	v := parseFloat(s)
	if v == nil {
		return 0, strings.TrimSpace(s) != ""
	}
	return *v, false
}

// parseDate coerces a raw value to a calendar date with parse-else-null
// semantics.
func parseDate(s string) *model.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := model.NewDate(t)
			return &d
		}
	}
	return nil
}

// titleCase trims and title-cases a string using Spanish casing rules,
// so "  completado " becomes "Completado" and "EN PROCESO" "En Proceso".
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

// digitsOnly strips everything but ASCII digits from a string.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
