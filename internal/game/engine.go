// internal/game/engine.go
//
// Guess/reveal state machine for a single round.
// Responsibilities:
//   - Pick a record at random, avoiding the previous one when possible.
//   - Track how many symptoms are revealed (starts at 2, +1 per wrong guess).
//   - Evaluate guesses with Unicode case folding.
//   - Score a win: full symptom count minus the extra reveals, floored at 1.
//
// Round is a value type: Guess returns the next Round instead of mutating,
// so the state machine is a pure function of (round, guess).
package game

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

// initialReveal is the number of symptoms shown when a round starts.
const initialReveal = 2

var (
	ErrEmptyLibrary = errors.New("library is empty")
	ErrRoundOver    = errors.New("round is over")
	ErrNoRound      = errors.New("no round in progress")
	ErrStaleRound   = errors.New("guess is for a previous round")
)

// Pick draws a record uniformly from records using intn, re-drawing while
// the draw is prev (same pointer) and there is more than one record.
// intn must return a value in [0, n).
func Pick(records []*Record, prev *Record, intn func(n int) int) (*Record, error) {
	if len(records) == 0 {
		return nil, ErrEmptyLibrary
	}
	for {
		r := records[intn(len(records))]
		if r != prev || len(records) == 1 {
			return r, nil
		}
	}
}

// Round is the state of one play-through.
type Round struct {
	Record   *Record
	Revealed int
	Status   Status
}

// Begin starts a round against rec with the initial reveal.
func Begin(rec *Record) Round {
	return Round{Record: rec, Revealed: initialReveal, Status: StatusPlaying}
}

// Visible returns the symptoms currently shown, in reveal order.
func (r Round) Visible() []string {
	if r.Record == nil {
		return []string{}
	}
	n := min(r.Revealed, len(r.Record.Symptoms))
	out := make([]string, n)
	copy(out, r.Record.Symptoms[:n])
	return out
}

// Outcome describes what a guess did.
type Outcome struct {
	Correct bool
	Points  int    // set when Correct
	Answer  string // set when the round was lost
}

// Guess evaluates text against the round's record.
// Returns the next round state and the outcome, or ErrRoundOver if the
// round has already ended (the round is returned unchanged).
//
// State transitions:
//   - Correct → StatusWon, Points = Points(total, Revealed).
//   - Wrong   → Revealed+1; if that exceeds the symptom count → StatusLost.
func (r Round) Guess(text string) (Round, Outcome, error) {
	if r.Status != StatusPlaying || r.Record == nil {
		return r, Outcome{}, ErrRoundOver
	}

	total := len(r.Record.Symptoms)
	if Matches(text, r.Record.Name) {
		r.Status = StatusWon
		return r, Outcome{Correct: true, Points: Points(total, r.Revealed)}, nil
	}

	r.Revealed++
	if r.Revealed > total {
		r.Status = StatusLost
		return r, Outcome{Answer: r.Record.Name}, nil
	}
	return r, Outcome{}, nil
}

// Matches reports whether guess names the illness. Surrounding whitespace
// on the guess is ignored; comparison uses locale-insensitive case folding.
func Matches(guess, name string) bool {
	return fold(strings.TrimSpace(guess)) == fold(name)
}

// folder is stateless and safe for concurrent use.
var folder = cases.Fold()

func fold(s string) string { return folder.String(s) }

// Points scores a correct guess made with revealed symptoms on screen out of
// total: max(1, total - (revealed - 2)).
func Points(total, revealed int) int {
	return max(1, total-(revealed-initialReveal))
}
