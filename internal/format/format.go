// Package format renders numbers, money and dates the way the pt-BR
// dashboard shows them: "." groups thousands, "," separates decimals.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	currencyPattern = "#.###,##"
	numberPattern   = "#.###,###"
	integerPattern  = "#.###,"
	currencySymbol  = "R$"
)

// Currency formats v as Brazilian reais, e.g. "R$ 2.400.000,00".
func Currency(v float64) string {
	if v < 0 {
		return "-" + currencySymbol + " " + humanize.FormatFloat(currencyPattern, -v)
	}
	return currencySymbol + " " + humanize.FormatFloat(currencyPattern, v)
}

// Number formats v with up to three fraction digits, trailing zeros dropped.
func Number(v float64) string {
	s := humanize.FormatFloat(numberPattern, v)
	if strings.Contains(s, ",") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ",")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// Integer formats n with thousands separators.
func Integer(n int64) string {
	return humanize.FormatInteger(integerPattern, int(n))
}

// Percent formats v (already in percent units) as "87,5%".
func Percent(v float64) string {
	return Number(v) + "%"
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date renders an API timestamp as dd/mm/yyyy. Empty or unparseable input
// renders as "Recente".
func Date(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Recente"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return "Recente"
}

// Quantity renders an amount with its unit, e.g. "1.500 ton".
func Quantity(v float64, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return Number(v)
	}
	return Number(v) + " " + unit
}
