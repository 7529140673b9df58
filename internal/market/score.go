package market

import (
	"math"
	"strings"
)

// Breakdown splits a match score into the three factors shown in the detail view.
type Breakdown struct {
	Chemical   float64
	Geographic float64
	Economic   float64
}

// geographicScore is fixed; the backend does not report distance yet.
const geographicScore = 95

// ScoreBreakdown derives the displayed factor percentages from a 0-100 match score.
func ScoreBreakdown(score float64) Breakdown {
	return Breakdown{
		Chemical:   round1(score * 0.4 / 40 * 100),
		Geographic: geographicScore,
		Economic:   round1(score * 0.3 / 30 * 100),
	}
}

// Tier buckets a match score.
type Tier int

const (
	TierFair Tier = iota
	TierGood
	TierExcellent
)

// ScoreTier returns Excellent for ≥90, Good for ≥80, Fair otherwise.
func ScoreTier(score float64) Tier {
	switch {
	case score >= 90:
		return TierExcellent
	case score >= 80:
		return TierGood
	default:
		return TierFair
	}
}

func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excelente"
	case TierGood:
		return "Bom"
	default:
		return "Regular"
	}
}

// ringRadius is the radius of the circular gauge drawn by the web client.
const ringRadius = 36

// RingDashOffset is the SVG stroke offset for a score ring: 2π·r·(1−score/100).
func RingDashOffset(score float64) float64 {
	return 2 * math.Pi * ringRadius * (1 - clampFraction(score/100))
}

// ESGRing renders score as a fixed-width bar of width cells.
func ESGRing(score float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(clampFraction(score/100) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
