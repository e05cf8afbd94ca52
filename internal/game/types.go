// internal/game/types.go
//
// Core type definitions for the diagnosis game.
// Defines:
//   - Record: one illness (name + ordered symptoms).
//   - Status: where a round stands (idle/playing/won/lost).
//   - Tone: semantic colour of a status message.
//   - View: render instructions handed to a presentation layer.

package game

import "strings"

// Record is one illness entry. Records are shared by pointer; the pointer
// is the record's identity for repeat avoidance.
type Record struct {
	Name     string   // Canonical answer, compared case-insensitively.
	Symptoms []string // Reveal order; trimmed, non-empty tokens.
}

// ParseSymptoms splits a comma-separated symptom string into trimmed tokens.
// Empty tokens (",," or trailing commas) are dropped.
func ParseSymptoms(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinSymptoms is the inverse of ParseSymptoms, used at the storage boundary.
func JoinSymptoms(symptoms []string) string {
	return strings.Join(symptoms, ", ")
}

// Status represents the state of a round.
//   - "idle":    no round could be started (empty library).
//   - "playing": waiting for a guess.
//   - "won":     guessed correctly; terminal until restart.
//   - "lost":    every symptom shown and still wrong; terminal until restart.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Over reports whether the status is terminal for the round.
func (s Status) Over() bool { return s == StatusWon || s == StatusLost }

// Tone is the semantic colour of a message.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneFailure Tone = "failure"
)

// View is everything a presentation layer needs to draw the game screen.
type View struct {
	RoundID  string   `json:"roundId,omitempty"`
	Symptoms []string `json:"symptoms"`
	Message  string   `json:"message"`
	Tone     Tone     `json:"tone"`
	Score    int      `json:"score"`
	Status   Status   `json:"status"`
	Answer   string   `json:"answer,omitempty"` // only when lost
	Points   int      `json:"points,omitempty"` // only when won
}

// CanGuess reports whether the guess input should be enabled.
func (v View) CanGuess() bool { return v.Status == StatusPlaying }

// CanRestart reports whether the restart control should be shown.
func (v View) CanRestart() bool { return v.Status != StatusPlaying }
