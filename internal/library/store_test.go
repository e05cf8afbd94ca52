package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/medicle/internal/game"
	"github.com/robalobadob/medicle/internal/store"
)

var errWriteFailed = errors.New("write failed")

// failingKV rejects writes once armed.
type failingKV struct {
	store.Store
	failSets bool
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failSets {
		return errWriteFailed
	}
	return f.Store.Set(ctx, key, value)
}

func twoEntries() []Entry {
	return []Entry{
		{Name: "Flu", Symptoms: "Fever, Body Aches, Fatigue"},
		{Name: "Migraine", Symptoms: "Severe Headache, Nausea"},
	}
}

func newTestStore(t *testing.T, kv store.Store, opts ...Option) *Store {
	t.Helper()
	s, err := New(context.Background(), kv, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty storage installs and persists the built-in seed", func(t *testing.T) {
		// Given: nothing persisted
		kv := store.NewMemoryStore()

		// When: opening the record store
		s := newTestStore(t, kv)

		// Then: the five built-in records are loaded in order and written back
		names := []string{}
		for _, r := range s.Records() {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"Common Cold", "Flu", "Allergies", "Migraine", "Food Poisoning"}, names)
		assert.Equal(t, []string{"Cough", "Runny Nose", "Fatigue", "Sore Throat", "Sneezing"}, s.Records()[0].Symptoms)

		raw, err := kv.Get(ctx, LibraryKey)
		require.NoError(t, err)
		assert.Contains(t, raw, `{"name":"Common Cold","symptoms":"Cough, Runny Nose, Fatigue, Sore Throat, Sneezing"}`)
		assert.Equal(t, 0, s.Score())
	})

	t.Run("Loads the persisted library and score", func(t *testing.T) {
		kv := store.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, LibraryKey, `[{"name":"Hiccups","symptoms":"Hiccups,  Annoyance"}]`))
		require.NoError(t, kv.Set(ctx, ScoreKey, "42"))

		s := newTestStore(t, kv)

		require.Equal(t, 1, s.Len())
		assert.Equal(t, "Hiccups", s.Records()[0].Name)
		assert.Equal(t, []string{"Hiccups", "Annoyance"}, s.Records()[0].Symptoms)
		assert.Equal(t, 42, s.Score())
	})

	t.Run("Malformed library falls back to the seed and persists it", func(t *testing.T) {
		// Given: garbage under the library key
		kv := store.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, LibraryKey, "{not json"))

		// When: opening with a custom seed
		s := newTestStore(t, kv, WithSeed(twoEntries()))

		// Then: the seed is loaded and replaces the garbage
		assert.Equal(t, twoEntries(), s.Entries())
		raw, err := kv.Get(ctx, LibraryKey)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"Flu","symptoms":"Fever, Body Aches, Fatigue"},{"name":"Migraine","symptoms":"Severe Headache, Nausea"}]`, raw)
	})

	t.Run("Stored null is treated as malformed", func(t *testing.T) {
		kv := store.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, LibraryKey, "null"))

		s := newTestStore(t, kv, WithSeed(twoEntries()))

		assert.Equal(t, twoEntries(), s.Entries())
		raw, err := kv.Get(ctx, LibraryKey)
		require.NoError(t, err)
		assert.NotEqual(t, "null", raw)
	})

	t.Run("Seed file is only read when a seed is needed", func(t *testing.T) {
		// Given: a persisted library and a seed file that does not exist
		kv := store.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, LibraryKey, `[{"name":"Gout","symptoms":"Joint Pain"}]`))
		missing := filepath.Join(t.TempDir(), "missing.json")

		// When: opening the store
		s, err := New(ctx, kv, WithSeedFile(missing))

		// Then: the persisted library loads and the file is never touched
		require.NoError(t, err)
		assert.Equal(t, "Gout", s.Records()[0].Name)
	})

	t.Run("Missing seed file fails when nothing is persisted", func(t *testing.T) {
		_, err := New(ctx, store.NewMemoryStore(), WithSeedFile(filepath.Join(t.TempDir(), "missing.json")))

		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed score reads as zero", func(t *testing.T) {
		kv := store.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, ScoreKey, "lots"))

		s := newTestStore(t, kv)

		assert.Equal(t, 0, s.Score())
	})

	t.Run("Storage that cannot be written fails construction", func(t *testing.T) {
		kv := &failingKV{Store: store.NewMemoryStore(), failSets: true}

		_, err := New(ctx, kv)

		require.ErrorIs(t, err, errWriteFailed)
	})
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Appends a parsed record and persists it", func(t *testing.T) {
		// Given: a two-record library
		kv := store.NewMemoryStore()
		s := newTestStore(t, kv, WithSeed(twoEntries()))

		// When: adding a record with messy symptom input
		rec, err := s.Add(ctx, "  Common Cold ", "Cough,, Runny Nose , ")

		// Then: it is appended trimmed and survives a reload
		require.NoError(t, err)
		assert.Equal(t, &game.Record{Name: "Common Cold", Symptoms: []string{"Cough", "Runny Nose"}}, rec)
		assert.Equal(t, 3, s.Len())
		assert.Same(t, rec, s.Records()[2])

		reloaded := newTestStore(t, kv)
		assert.Equal(t, s.Entries(), reloaded.Entries())
		assert.Equal(t, "Cough, Runny Nose", reloaded.Entries()[2].Symptoms)
	})

	t.Run("Rejects a blank name without changing the library", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()))

		_, err := s.Add(ctx, "   ", "Fever")

		require.ErrorIs(t, err, ErrMissingName)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("Rejects symptoms that are only separators", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()))

		_, err := s.Add(ctx, "Flu", " , ,")

		require.ErrorIs(t, err, ErrMissingSymptoms)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("Allows duplicates", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()))

		_, err := s.Add(ctx, "Flu", "Fever")

		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
	})

	t.Run("Write failure rolls back", func(t *testing.T) {
		kv := &failingKV{Store: store.NewMemoryStore()}
		s := newTestStore(t, kv, WithSeed(twoEntries()))
		kv.failSets = true

		_, err := s.Add(ctx, "Gout", "Joint Pain")

		require.ErrorIs(t, err, errWriteFailed)
		assert.Equal(t, 2, s.Len())
	})
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes by position and persists", func(t *testing.T) {
		kv := store.NewMemoryStore()
		s := newTestStore(t, kv, WithSeed(twoEntries()))

		require.NoError(t, s.Remove(ctx, 0))

		require.Equal(t, 1, s.Len())
		assert.Equal(t, "Migraine", s.Records()[0].Name)
		raw, err := kv.Get(ctx, LibraryKey)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"Migraine","symptoms":"Severe Headache, Nausea"}]`, raw)
	})

	t.Run("Out of range is a no-op", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()))

		for _, i := range []int{-1, 2, 99} {
			err := s.Remove(ctx, i)

			require.ErrorIs(t, err, ErrNoSuchRecord)
			assert.Equal(t, twoEntries(), s.Entries())
		}
	})

	t.Run("Earlier snapshots are not disturbed", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()))
		before := s.Records()

		require.NoError(t, s.Remove(ctx, 0))

		assert.Equal(t, "Flu", before[0].Name)
		assert.Len(t, before, 2)
	})
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()

	// Given: a seeded library
	kv := store.NewMemoryStore()
	s := newTestStore(t, kv, WithSeed(twoEntries()))

	// When: clearing it
	require.NoError(t, s.Clear(ctx))

	// Then: it is empty, stored as [], and stays empty on reload
	assert.Equal(t, 0, s.Len())
	raw, err := kv.Get(ctx, LibraryKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	reloaded := newTestStore(t, kv, WithSeed(twoEntries()))
	assert.Equal(t, 0, reloaded.Len())

	_, err = reloaded.Pick(nil)
	assert.ErrorIs(t, err, game.ErrEmptyLibrary)
}

func TestStore_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("AddScore accumulates and persists", func(t *testing.T) {
		kv := store.NewMemoryStore()
		s := newTestStore(t, kv)

		total, err := s.AddScore(ctx, 5)
		require.NoError(t, err)
		total, err = s.AddScore(ctx, 2)
		require.NoError(t, err)

		assert.Equal(t, 7, total)
		assert.Equal(t, 7, s.Score())
		raw, err := kv.Get(ctx, ScoreKey)
		require.NoError(t, err)
		assert.Equal(t, "7", raw)
	})

	t.Run("SaveScore then LoadScore", func(t *testing.T) {
		kv := store.NewMemoryStore()
		s := newTestStore(t, kv)

		require.NoError(t, s.SaveScore(ctx, 30))
		n, err := newTestStore(t, kv).LoadScore(ctx)

		require.NoError(t, err)
		assert.Equal(t, 30, n)
	})

	t.Run("Failed write keeps the previous score", func(t *testing.T) {
		kv := &failingKV{Store: store.NewMemoryStore()}
		s := newTestStore(t, kv)
		require.NoError(t, s.SaveScore(ctx, 3))
		kv.failSets = true

		total, err := s.AddScore(ctx, 5)

		require.ErrorIs(t, err, errWriteFailed)
		assert.Equal(t, 3, total)
		assert.Equal(t, 3, s.Score())
	})
}

func TestStore_Pick(t *testing.T) {
	t.Run("Avoids the previous record", func(t *testing.T) {
		// Given: a source that yields 0, then 1
		calls := 0
		intn := func(n int) int { i := calls % n; calls++; return i }
		s := newTestStore(t, store.NewMemoryStore(), WithSeed(twoEntries()), WithRand(intn))
		first := s.Records()[0]

		// When: picking with the first record as previous
		got, err := s.Pick(first)

		// Then: the repeat is re-drawn
		require.NoError(t, err)
		assert.Same(t, s.Records()[1], got)
		assert.Equal(t, 2, calls)
	})

	t.Run("Default source never repeats with a choice", func(t *testing.T) {
		s := newTestStore(t, store.NewMemoryStore())
		var prev *game.Record
		for i := 0; i < 200; i++ {
			got, err := s.Pick(prev)
			require.NoError(t, err)
			require.NotSame(t, prev, got)
			prev = got
		}
	})
}

func TestLoadSeed(t *testing.T) {
	t.Run("Empty path uses the embedded set", func(t *testing.T) {
		entries, err := LoadSeed("")

		require.NoError(t, err)
		assert.Len(t, entries, 5)
		assert.Equal(t, Entry{Name: "Flu", Symptoms: "Fever, Body Aches, Fatigue, Headache, Cough"}, entries[1])
	})

	t.Run("Reads a seed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Gout","symptoms":"Joint Pain, Swelling"}]`), 0o644))

		entries, err := LoadSeed(path)

		require.NoError(t, err)
		assert.Equal(t, []Entry{{Name: "Gout", Symptoms: "Joint Pain, Swelling"}}, entries)
	})

	t.Run("Rejects entries without symptoms", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Gout","symptoms":" , "}]`), 0o644))

		_, err := LoadSeed(path)

		require.ErrorIs(t, err, ErrMissingSymptoms)
	})

	t.Run("Rejects an empty set", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

		_, err := LoadSeed(path)

		require.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.json"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Embedded set is returned as a copy", func(t *testing.T) {
		a, err := DefaultSeed()
		require.NoError(t, err)
		a[0].Name = "tampered"

		b, err := DefaultSeed()
		require.NoError(t, err)
		assert.Equal(t, "Common Cold", b[0].Name)
	})
}
