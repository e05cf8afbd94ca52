package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/medicle/internal/library"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI against the SQLite file at db.
func run(t *testing.T, db, stdin string, args ...string) result {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--storage", "sqlite", "--db", db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "medicle.db")
}

// singleFlu leaves exactly one record: Flu with three symptoms.
func singleFlu(t *testing.T, db string) {
	t.Helper()
	require.NoError(t, run(t, db, "", "library", "clear", "--yes").err)
	require.NoError(t, run(t, db, "", "library", "add", "--name", "Flu", "--symptoms", "Fever, Cough, Headache").err)
}

func TestLibraryCommands(t *testing.T) {
	t.Run("List shows the seeded library with positions", func(t *testing.T) {
		db := newDB(t)

		res := run(t, db, "", "library", "list")

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "0. Common Cold: Cough, Runny Nose, Fatigue, Sore Throat, Sneezing\n")
		assert.Contains(t, res.stdout, "4. Food Poisoning: Nausea, Vomiting, Diarrhea, Abdominal Pain, Fever\n")
	})

	t.Run("Add persists across invocations", func(t *testing.T) {
		// Given: a fresh database
		db := newDB(t)

		// When: adding a record in one invocation
		res := run(t, db, "", "library", "add", "-n", "Gout", "-s", "Joint Pain,, Swelling ")
		require.NoError(t, res.err)
		assert.Equal(t, "Added Gout (2 symptoms)\n", res.stdout)

		// Then: a later invocation lists it last
		res = run(t, db, "", "library", "list", "--json")
		require.NoError(t, res.err)
		var entries []library.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		require.Len(t, entries, 6)
		assert.Equal(t, library.Entry{Name: "Gout", Symptoms: "Joint Pain, Swelling"}, entries[5])
	})

	t.Run("Add without symptoms is rejected", func(t *testing.T) {
		db := newDB(t)

		res := run(t, db, "", "library", "add", "--name", "Gout")

		require.ErrorIs(t, res.err, library.ErrMissingSymptoms)
		assert.Contains(t, res.stderr, "Please enter both illness name and symptoms.")
	})

	t.Run("Remove by position", func(t *testing.T) {
		db := newDB(t)

		res := run(t, db, "", "library", "rm", "0")
		require.NoError(t, res.err)
		assert.Equal(t, "Removed Common Cold\n", res.stdout)

		res = run(t, db, "", "library", "list")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, "0. Flu:"))
	})

	t.Run("Remove out of range fails without changes", func(t *testing.T) {
		db := newDB(t)

		res := run(t, db, "", "library", "rm", "9")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "no illness at position 9")

		res = run(t, db, "", "library", "rm", "first")
		require.Error(t, res.err)

		res = run(t, db, "", "library", "list", "--json")
		require.NoError(t, res.err)
		var entries []library.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		assert.Len(t, entries, 5)
	})

	t.Run("Clear asks for confirmation", func(t *testing.T) {
		db := newDB(t)

		res := run(t, db, "n\n", "library", "clear")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Cancelled.")

		res = run(t, db, "y\n", "library", "clear")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Library cleared.")

		res = run(t, db, "", "library", "list")
		require.NoError(t, res.err)
		assert.Equal(t, "The library is empty.\n", res.stdout)
	})
}

func TestPlayCommand(t *testing.T) {
	t.Run("Win after one wrong guess", func(t *testing.T) {
		// Given: a library holding only Flu
		db := newDB(t)
		singleFlu(t, db)

		// When: guessing wrong once, then right, then declining another round
		res := run(t, db, "measles\n  FLU \nn\n", "play")

		// Then: the third symptom was revealed and 2 points were banked
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Symptoms:\n  1. Fever\n  2. Cough\n")
		assert.Contains(t, res.stdout, "Incorrect. Try again!\n")
		assert.Contains(t, res.stdout, "  3. Headache\n")
		assert.Contains(t, res.stdout, "Correct! You've diagnosed the illness! +2 points\n")
		assert.Contains(t, res.stdout, "Final score: 2\n")

		score := run(t, db, "", "score")
		require.NoError(t, score.err)
		assert.Equal(t, "2\n", score.stdout)
	})

	t.Run("Loss reveals the answer and keeps the score", func(t *testing.T) {
		db := newDB(t)
		singleFlu(t, db)

		res := run(t, db, "a\nb\n\n", "play")

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Game Over! The correct illness was Flu.\n")
		assert.Contains(t, res.stdout, "Final score: 0\n")
	})

	t.Run("Play again starts another round", func(t *testing.T) {
		db := newDB(t)
		singleFlu(t, db)

		res := run(t, db, "flu\ny\nflu\nn\n", "play")

		require.NoError(t, res.err)
		assert.Equal(t, 2, strings.Count(res.stdout, "+3 points"))
		assert.Contains(t, res.stdout, "Final score: 6\n")
	})

	t.Run("Quit mid-round", func(t *testing.T) {
		db := newDB(t)
		singleFlu(t, db)

		res := run(t, db, ":q\nflu\n", "play")

		require.NoError(t, res.err)
		assert.NotContains(t, res.stdout, "Correct!")
		assert.Equal(t, "0\n", run(t, db, "", "score").stdout)
	})

	t.Run("End of input stops the game", func(t *testing.T) {
		db := newDB(t)
		singleFlu(t, db)

		res := run(t, db, "measles\n", "play")

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Incorrect. Try again!")
	})

	t.Run("Empty library", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, run(t, db, "", "library", "clear", "--yes").err)

		res := run(t, db, "", "play")

		require.NoError(t, res.err)
		assert.Equal(t, "Please add some illnesses to the library first.\n", res.stdout)
	})
}

func TestRootFlags(t *testing.T) {
	t.Run("Unknown storage backend", func(t *testing.T) {
		res := run(t, newDB(t), "", "--storage", "postgres", "score")

		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "postgres")
	})

	t.Run("Storage flag overrides a bad environment value", func(t *testing.T) {
		t.Setenv("MEDICLE_STORAGE", "bogus")

		res := run(t, newDB(t), "", "--storage", "memory", "score")

		require.NoError(t, res.err)
		assert.Equal(t, "0\n", res.stdout)
	})

	t.Run("Missing seed file does not matter once a library is saved", func(t *testing.T) {
		// Given: a database that already holds the library
		db := newDB(t)
		require.NoError(t, run(t, db, "", "library", "list").err)

		// When: the seed override points nowhere
		t.Setenv("MEDICLE_SEED_FILE", filepath.Join(t.TempDir(), "missing.json"))
		res := run(t, db, "", "score")

		// Then: commands keep working
		require.NoError(t, res.err)
		assert.Equal(t, "0\n", res.stdout)
	})

	t.Run("Memory backend starts from the seed every time", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, run(t, db, "", "--storage", "memory", "library", "clear", "--yes").err)

		res := run(t, db, "", "--storage", "memory", "library", "list", "--json")

		require.NoError(t, res.err)
		var entries []library.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		assert.Len(t, entries, 5)
	})
}
