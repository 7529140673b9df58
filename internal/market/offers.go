// Package market holds the small amount of display logic the dashboard
// needs on top of the API: offer filtering, form validation, score
// breakdowns and the ESG ring.
package market

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/reciloop/reciloop/internal/api"
)

// All is the filter value that disables a category or urgency predicate.
const All = "all"

// Categories lists the residue categories offered in forms, in display order.
var Categories = []string{
	"Resíduos Oleosos",
	"Resíduos Químicos",
	"Resíduos Orgânicos",
	"Plásticos",
	"Metais",
	"Papel e Papelão",
	"Vidro",
	"Outros",
}

// Units lists the quantity units offered in the new-offer form.
var Units = []string{"ton", "kg", "m³", "L", "unidade"}

// OfferFilter narrows the marketplace list. Empty Category/Urgency behave as All.
type OfferFilter struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Urgency  string `json:"urgency"`
}

// Match reports whether o passes all three predicates.
func (f OfferFilter) Match(o api.ResidueOffer) bool {
	return f.matchesSearch(o) && f.matchesCategory(o) && f.matchesUrgency(o)
}

func (f OfferFilter) matchesSearch(o api.ResidueOffer) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Name), term) ||
		strings.Contains(strings.ToLower(o.Description), term) ||
		strings.Contains(strings.ToLower(o.Company), term)
}

func (f OfferFilter) matchesCategory(o api.ResidueOffer) bool {
	if f.Category == "" || f.Category == All {
		return true
	}
	return o.Category == f.Category
}

func (f OfferFilter) matchesUrgency(o api.ResidueOffer) bool {
	if f.Urgency == "" || f.Urgency == All {
		return true
	}
	return o.Urgency == f.Urgency
}

// Apply returns the offers that pass the filter, preserving order.
func (f OfferFilter) Apply(offers []api.ResidueOffer) []api.ResidueOffer {
	out := make([]api.ResidueOffer, 0, len(offers))
	for _, o := range offers {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// Active reports whether any predicate narrows the list.
func (f OfferFilter) Active() bool {
	return strings.TrimSpace(f.Search) != "" ||
		(f.Category != "" && f.Category != All) ||
		(f.Urgency != "" && f.Urgency != All)
}

// NextCategory cycles all → each category → all.
func NextCategory(current string) string {
	return cycle(append([]string{All}, Categories...), current)
}

// NextUrgency cycles all → high → medium → low → all.
func NextUrgency(current string) string {
	levels := []string{All}
	for _, u := range UrgencyLevels {
		levels = append(levels, string(u))
	}
	return cycle(levels, current)
}

func cycle(values []string, current string) string {
	if current == "" {
		current = All
	}
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// SuggestCategory returns the known category closest to input and whether
// it is close enough to be a plausible typo.
func SuggestCategory(input string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, c := range Categories {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len([]rune(needle)) / 3
	if limit < 2 {
		limit = 2
	}
	return best, bestDist <= limit
}

// ResolveCategory maps user input onto a known category: exact match
// (case-insensitive) wins, then a close suggestion. "all" passes through.
func ResolveCategory(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.EqualFold(trimmed, All) {
		return All, true
	}
	for _, c := range Categories {
		if strings.EqualFold(c, trimmed) {
			return c, true
		}
	}
	return SuggestCategory(trimmed)
}

// SampleOffers is the listing shown while the backend has no offers yet.
func SampleOffers() []api.ResidueOffer {
	return []api.ResidueOffer{
		{
			ID:          1,
			Name:        "Borra Oleosa",
			Category:    "Resíduos Oleosos",
			Quantity:    150,
			Unit:        "ton",
			Price:       200,
			Company:     "Refinaria Suape",
			Urgency:     string(UrgencyHigh),
			Description: "Borra oleosa proveniente do processo de refino, rica em hidrocarbonetos recuperáveis.",
			CreatedAt:   "2024-01-15",
		},
		{
			ID:          2,
			Name:        "Catalisador FCC",
			Category:    "Resíduos Químicos",
			Quantity:    80,
			Unit:        "ton",
			Price:       350,
			Company:     "Petroquímica",
			Urgency:     string(UrgencyMedium),
			Description: "Catalisador exausto de craqueamento catalítico, contém metais valiosos para recuperação.",
			CreatedAt:   "2024-01-10",
		},
		{
			ID:          3,
			Name:        "Lodo Industrial",
			Category:    "Resíduos Orgânicos",
			Quantity:    200,
			Unit:        "ton",
			Price:       120,
			Company:     "Cimpor",
			Urgency:     string(UrgencyLow),
			Description: "Lodo de estação de tratamento industrial, adequado para compostagem e recuperação energética.",
			CreatedAt:   "2024-01-08",
		},
	}
}

// OffersOrSample returns offers, or the sample listing when offers is empty.
func OffersOrSample(offers []api.ResidueOffer) ([]api.ResidueOffer, bool) {
	if len(offers) > 0 {
		return offers, false
	}
	return SampleOffers(), true
}
