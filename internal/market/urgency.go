package market

import (
	"fmt"
	"strings"
)

// Urgency is how soon a generator needs an offer taken.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// UrgencyLevels in display order.
var UrgencyLevels = []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}

// Label is the pt-BR display label. Unknown values read as low.
func (u Urgency) Label() string {
	switch u {
	case UrgencyHigh:
		return "Alta"
	case UrgencyMedium:
		return "Média"
	default:
		return "Baixa"
	}
}

// Icon is a one-glyph marker used in lists.
func (u Urgency) Icon() string {
	switch u {
	case UrgencyHigh:
		return "▲"
	case UrgencyMedium:
		return "◆"
	default:
		return "●"
	}
}

// ParseUrgency accepts the wire value or the pt-BR label.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "alta":
		return UrgencyHigh, nil
	case "medium", "média", "media":
		return UrgencyMedium, nil
	case "low", "baixa":
		return UrgencyLow, nil
	}
	return "", fmt.Errorf("urgency %q: want high, medium or low", s)
}

// UrgencyLabel labels a raw filter value, including "all".
func UrgencyLabel(raw string) string {
	if raw == "" || raw == All {
		return "Todas"
	}
	return Urgency(raw).Label()
}
