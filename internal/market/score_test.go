package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reciloop/reciloop/internal/api"
)

func TestScoreBreakdown(t *testing.T) {
	b := ScoreBreakdown(92)
	require.InDelta(t, 92.0, b.Chemical, 1e-9)
	require.InDelta(t, 95.0, b.Geographic, 1e-9)
	require.InDelta(t, 92.0, b.Economic, 1e-9)

	b = ScoreBreakdown(87.46)
	require.InDelta(t, 87.5, b.Chemical, 1e-9)
	require.InDelta(t, 87.5, b.Economic, 1e-9)
}

func TestScoreTier(t *testing.T) {
	require.Equal(t, TierExcellent, ScoreTier(90))
	require.Equal(t, TierGood, ScoreTier(89.9))
	require.Equal(t, TierGood, ScoreTier(80))
	require.Equal(t, TierFair, ScoreTier(79.9))
	require.Equal(t, "Excelente", TierExcellent.Label())
}

func TestRingDashOffset(t *testing.T) {
	circumference := 2 * math.Pi * 36
	require.InDelta(t, circumference, RingDashOffset(0), 1e-9)
	require.InDelta(t, 0, RingDashOffset(100), 1e-9)
	require.InDelta(t, circumference/4, RingDashOffset(75), 1e-9)
	require.InDelta(t, 0, RingDashOffset(140), 1e-9)
}

func TestESGRingClampsAndFills(t *testing.T) {
	require.Equal(t, "█████░░░░░", ESGRing(50, 10))
	require.Equal(t, "░░░░", ESGRing(-10, 4))
	require.Equal(t, "████", ESGRing(250, 4))
	require.Equal(t, "░░░░", ESGRing(math.NaN(), 4))
	require.Empty(t, ESGRing(50, 0))
}

func TestInventorySummary(t *testing.T) {
	items := []api.InventoryItem{
		{Status: StatusAvailable, InterestedCompanies: []string{"Cimpor", "Bunge"}},
		{Status: StatusReserved},
		{Status: StatusAvailable},
	}
	s := Summarize(items)
	require.Equal(t, 2, s.Available)
	require.Equal(t, 1, s.Reserved)
	require.Equal(t, 2, s.Interested)
	require.Equal(t, "Disponível", StatusLabel(StatusAvailable))
	require.Equal(t, "-", StatusLabel(""))
}
