package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("USER", "tester")

	_, err := LoadSession()
	require.ErrorIs(t, err, ErrNoSession)

	want := Session{AccessToken: "tok-123", CompanyID: 1, Email: "refinaria@example.com"}
	require.NoError(t, SaveSession(want))

	raw, err := os.ReadFile(filepath.Join(dir, "reciloop", "session.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok-123")

	info, err := os.Stat(filepath.Join(dir, "reciloop", "session.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadSession()
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, ClearSession())
	require.NoError(t, ClearSession())
	_, err = LoadSession()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSaveSessionRequiresToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.Error(t, SaveSession(Session{Email: "x@example.com"}))
}

func TestLoadSessionWithDifferentUserFails(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("USER", "alice")
	require.NoError(t, SaveSession(Session{AccessToken: "tok"}))

	t.Setenv("USER", "mallory")
	_, err := LoadSession()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSession)
}
