package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reciloop/reciloop/internal/market"
)

func TestLoadMissingReturnsZero(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p, err := Load()
	require.NoError(t, err)
	require.Equal(t, Prefs{}, p)
}

func TestUpdatePersists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Update(func(p *Prefs) { p.LastEmail = "cimpor@example.com" }))
	require.NoError(t, Update(func(p *Prefs) {
		p.OfferFilter = market.OfferFilter{Search: "borra", Category: "Resíduos Oleosos", Urgency: market.All}
	}))

	p, err := Load()
	require.NoError(t, err)
	require.Equal(t, "cimpor@example.com", p.LastEmail)
	require.Equal(t, "borra", p.OfferFilter.Search)
	require.Equal(t, "Resíduos Oleosos", p.OfferFilter.Category)
}

func TestLoadCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "reciloop"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reciloop", "prefs.json"), []byte("{"), 0o600))

	_, err := Load()
	require.Error(t, err)
}
