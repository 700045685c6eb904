// Package prefs persists the small set of per-user choices that must
// survive across sessions.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

type Prefs struct {
	BannerDismissed bool   `json:"notification_banner_dismissed"`
	Permission      string `json:"notification_permission,omitempty"`
}

type Store interface {
	Load() (Prefs, error)
	Save(Prefs) error
}

// File stores prefs as JSON, replacing the file atomically on save.
type File struct {
	Path string
}

func (f File) Load() (Prefs, error) {
	var out Prefs
	trimmed := strings.TrimSpace(f.Path)
	if trimmed == "" {
		return out, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Prefs{}, err
	}
	return out, nil
}

func (f File) Save(p Prefs) error {
	path := strings.TrimSpace(f.Path)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Memory keeps prefs in process, for tests and sessions without a prefs path.
type Memory struct {
	Prefs Prefs
	Saves int
}

func (m *Memory) Load() (Prefs, error) {
	return m.Prefs, nil
}

func (m *Memory) Save(p Prefs) error {
	m.Prefs = p
	m.Saves++
	return nil
}
