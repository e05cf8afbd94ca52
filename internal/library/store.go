// Package library owns the illness records and the running score, persisted
// through a key-value store.
//
// Layout:
//
//	diseases      JSON array of {"name", "symptoms"} (symptoms joined by ", ")
//	medicleScore  decimal text
//
// Every mutation writes through before returning.
package library

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/medicle/internal/game"
	"github.com/robalobadob/medicle/internal/store"
)

const (
	LibraryKey = "diseases"
	ScoreKey   = "medicleScore"
)

var (
	ErrMissingName     = errors.New("illness name is required")
	ErrMissingSymptoms = errors.New("at least one symptom is required")
	ErrNoSuchRecord    = errors.New("no record at that position")
)

// Store is the record store. Safe for concurrent use.
type Store struct {
	kv   store.Store
	seed func() ([]Entry, error)
	intn func(n int) int

	mu      sync.RWMutex
	records []*game.Record
	score   int
}

// Option configures a Store.
type Option func(*Store)

// WithSeed replaces the seed set installed when nothing is persisted.
func WithSeed(entries []Entry) Option {
	return func(s *Store) {
		s.seed = func() ([]Entry, error) { return entries, nil }
	}
}

// WithSeedFile installs the seed set from a JSON file instead, or the
// embedded one when path is empty. The file is only read when a seed is
// needed.
func WithSeedFile(path string) Option {
	return func(s *Store) {
		s.seed = func() ([]Entry, error) { return LoadSeed(path) }
	}
}

// WithRand replaces the random source used by Pick. intn must return a
// value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Store) { s.intn = intn }
}

// New loads the library and the score from kv.
func New(ctx context.Context, kv store.Store, opts ...Option) (*Store, error) {
	s := &Store{kv: kv, intn: cryptoIntn, seed: DefaultSeed}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	if _, err := s.LoadScore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory library with the persisted one.
// A missing or malformed value (including JSON null) installs and persists
// the seed set.
func (s *Store) Load(ctx context.Context) ([]*game.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, LibraryKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := s.installSeedLocked(ctx); err != nil {
			return nil, err
		}
		log.Info().Int("records", len(s.records)).Msg("library seeded")
	case err != nil:
		return nil, fmt.Errorf("load library: %w", err)
	default:
		var entries []Entry
		jerr := json.Unmarshal([]byte(raw), &entries)
		if jerr == nil && entries == nil {
			jerr = errors.New("library is null")
		}
		if jerr != nil {
			log.Warn().Err(jerr).Msg("stored library is malformed, reseeding")
			if err := s.installSeedLocked(ctx); err != nil {
				return nil, err
			}
		} else {
			s.records = toRecords(entries)
		}
	}
	return s.snapshot(), nil
}

// installSeedLocked replaces the library with the seed set and persists it.
func (s *Store) installSeedLocked(ctx context.Context) error {
	entries, err := s.seed()
	if err != nil {
		return fmt.Errorf("seed library: %w", err)
	}
	s.records = toRecords(entries)
	return s.saveLocked(ctx)
}

// Save persists the current library.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(toEntries(s.records))
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	if err := s.kv.Set(ctx, LibraryKey, string(raw)); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}

// Records returns the library in order. The slice is a copy; the records
// are shared.
func (s *Store) Records() []*game.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Entries returns the library in its persisted shape.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toEntries(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Add appends a record built from a name and a comma-separated symptom list.
func (s *Store) Add(ctx context.Context, name, symptoms string) (*game.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	parsed := game.ParseSymptoms(symptoms)
	if len(parsed) == 0 {
		return nil, ErrMissingSymptoms
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &game.Record{Name: name, Symptoms: parsed}
	s.records = append(s.records, rec)
	if err := s.saveLocked(ctx); err != nil {
		s.records = s.records[:len(s.records)-1]
		return nil, err
	}
	log.Info().Str("illness", name).Int("symptoms", len(parsed)).Msg("record added")
	return rec, nil
}

// Remove deletes the record at index. Out of range leaves the library alone.
func (s *Store) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrNoSuchRecord
	}
	prev := s.records
	next := make([]*game.Record, 0, len(prev)-1)
	next = append(next, prev[:index]...)
	next = append(next, prev[index+1:]...)
	s.records = next
	if err := s.saveLocked(ctx); err != nil {
		s.records = prev
		return err
	}
	log.Info().Int("index", index).Str("illness", prev[index].Name).Msg("record removed")
	return nil
}

// Clear removes every record. The empty library is persisted, so a later
// Load does not reseed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records
	s.records = []*game.Record{}
	if err := s.saveLocked(ctx); err != nil {
		s.records = prev
		return err
	}
	log.Info().Int("removed", len(prev)).Msg("library cleared")
	return nil
}

// Pick draws a random record, avoiding prev while there is another choice.
func (s *Store) Pick(prev *game.Record) (*game.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return game.Pick(s.records, prev, s.intn)
}

// Score returns the in-memory score.
func (s *Store) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// LoadScore reads the persisted score. Missing reads as 0; malformed text
// reads as 0 with a warning.
func (s *Store) LoadScore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, ScoreKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.score = 0
	case err != nil:
		return 0, fmt.Errorf("load score: %w", err)
	default:
		n, perr := strconv.Atoi(strings.TrimSpace(raw))
		if perr != nil {
			log.Warn().Err(perr).Str("value", raw).Msg("stored score is malformed, using 0")
			n = 0
		}
		s.score = n
	}
	return s.score, nil
}

// SaveScore persists n as the score.
func (s *Store) SaveScore(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveScoreLocked(ctx, n)
}

// AddScore adds points to the score, persists it and returns the new total.
func (s *Store) AddScore(ctx context.Context, points int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.score + points
	if err := s.saveScoreLocked(ctx, total); err != nil {
		return s.score, err
	}
	return total, nil
}

func (s *Store) saveScoreLocked(ctx context.Context, n int) error {
	if err := s.kv.Set(ctx, ScoreKey, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	s.score = n
	return nil
}

// snapshot copies the record slice. Caller holds mu.
func (s *Store) snapshot() []*game.Record {
	return append([]*game.Record{}, s.records...)
}

func toRecords(entries []Entry) []*game.Record {
	out := make([]*game.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, &game.Record{
			Name:     strings.TrimSpace(e.Name),
			Symptoms: game.ParseSymptoms(e.Symptoms),
		})
	}
	return out
}

func toEntries(records []*game.Record) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, EntryOf(r))
	}
	return out
}

// EntryOf converts a record to its persisted shape.
func EntryOf(r *game.Record) Entry {
	return Entry{Name: r.Name, Symptoms: game.JoinSymptoms(r.Symptoms)}
}

// cryptoIntn draws from crypto/rand, falling back to math/rand if the
// system source fails.
func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.Intn(n)
	}
	return int(v.Int64())
}
