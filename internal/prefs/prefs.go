package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/reciloop/reciloop/internal/market"
)

const prefsFile = "prefs.json"

// Prefs are UI choices remembered between runs.
type Prefs struct {
	LastEmail   string             `json:"last_email,omitempty"`
	OfferFilter market.OfferFilter `json:"offer_filter"`
}

func prefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "reciloop")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

func Save(p Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved prefs, or the zero value when none exist.
func Load() (Prefs, error) {
	path, err := prefsPath()
	if err != nil {
		return Prefs{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// Update loads, applies fn and saves.
func Update(fn func(*Prefs)) error {
	p, err := Load()
	if err != nil {
		return err
	}
	fn(&p)
	return Save(p)
}
