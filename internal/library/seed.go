// internal/library/seed.go
//
// Built-in record set used when nothing has been persisted yet.
//
// Sources (first match wins):
//   1. A JSON file named by MEDICLE_SEED_FILE (same layout as the stored library).
//   2. The embedded assets/seed.json.
//
// The parsed seed is cached; callers get a fresh slice each time.

package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/medicle/assets"
	"github.com/robalobadob/medicle/internal/game"
)

// Entry is the persisted shape of one record.
type Entry struct {
	Name     string `json:"name"`
	Symptoms string `json:"symptoms"`
}

var (
	embeddedOnce sync.Once
	embedded     []Entry
	embeddedErr  error
)

// DefaultSeed returns the embedded seed set.
func DefaultSeed() ([]Entry, error) {
	embeddedOnce.Do(func() {
		raw, err := assets.SeedJSON()
		if err != nil {
			embeddedErr = err
			return
		}
		embedded, embeddedErr = parseSeed(raw)
	})
	if embeddedErr != nil {
		return nil, embeddedErr
	}
	return append([]Entry{}, embedded...), nil
}

// LoadSeed returns the seed set from path, or the embedded one when path is empty.
func LoadSeed(path string) ([]Entry, error) {
	if path == "" {
		return DefaultSeed()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	entries, err := parseSeed(raw)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return entries, nil
}

// parseSeed decodes and validates a seed document. Every entry needs a name
// and at least one symptom.
func parseSeed(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingName)
		}
		if len(game.ParseSymptoms(e.Symptoms)) == 0 {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingSymptoms)
		}
	}
	if len(entries) == 0 {
		return nil, errors.New("seed set is empty")
	}
	return entries, nil
}
