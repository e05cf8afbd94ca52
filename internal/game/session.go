package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Messages shown to the player.
const (
	msgEmptyLibrary = "Please add some illnesses to the library first."
	msgIncorrect    = "Incorrect. Try again!"
	msgCorrect      = "Correct! You've diagnosed the illness! +%d points"
	msgLost         = "Game Over! The correct illness was %s."
)

// ErrRoundInProgress is returned by Start while a round is still being played.
var ErrRoundInProgress = errors.New("round in progress")

// Library is what a Session needs from the record store.
type Library interface {
	// Pick returns a random record, avoiding prev when the library allows it.
	Pick(prev *Record) (*Record, error)
	// Score returns the current persisted score.
	Score() int
	// AddScore adds points, persists the total and returns it.
	AddScore(ctx context.Context, points int) (int, error)
}

// Session drives rounds for one player and produces the View after every action.
// All methods are safe for concurrent use; each action runs under one lock.
type Session struct {
	mu       sync.Mutex
	lib      Library
	round    Round
	roundID  string
	previous *Record
	view     View
}

// NewSession creates an idle session. Call Start to begin the first round.
func NewSession(lib Library) *Session {
	s := &Session{lib: lib}
	s.round.Status = StatusIdle
	s.view = View{Symptoms: []string{}, Tone: ToneNeutral, Status: StatusIdle}
	return s
}

// Start begins a new round. It is rejected while a round is being played.
// With an empty library the session stays idle and the view says so.
func (s *Session) Start(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round.Status == StatusPlaying {
		return s.current(), ErrRoundInProgress
	}

	rec, err := s.lib.Pick(s.previous)
	if err != nil {
		s.round = Round{Status: StatusIdle}
		s.roundID = ""
		s.view = View{
			Symptoms: []string{},
			Message:  msgEmptyLibrary,
			Tone:     ToneNeutral,
			Status:   StatusIdle,
		}
		return s.current(), err
	}

	s.previous = rec
	s.round = Begin(rec)
	s.roundID = ulid.Make().String()
	s.view = View{
		RoundID:  s.roundID,
		Symptoms: s.round.Visible(),
		Tone:     ToneNeutral,
		Status:   StatusPlaying,
	}
	log.Debug().Str("round", s.roundID).Str("illness", rec.Name).Int("symptoms", len(rec.Symptoms)).Msg("round started")
	return s.current(), nil
}

// Guess submits text for the round identified by roundID.
// An empty roundID means the current round.
func (s *Session) Guess(ctx context.Context, roundID, text string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.round.Status == StatusIdle:
		return s.current(), ErrNoRound
	case roundID != "" && roundID != s.roundID:
		return s.current(), ErrStaleRound
	}

	next, out, err := s.round.Guess(text)
	if err != nil {
		return s.current(), err
	}
	s.round = next

	v := View{
		RoundID:  s.roundID,
		Symptoms: next.Visible(),
		Status:   next.Status,
	}
	var saveErr error
	switch next.Status {
	case StatusWon:
		v.Message, v.Tone, v.Points = fmt.Sprintf(msgCorrect, out.Points), ToneSuccess, out.Points
		if _, saveErr = s.lib.AddScore(ctx, out.Points); saveErr != nil {
			saveErr = fmt.Errorf("save score: %w", saveErr)
		}
	case StatusLost:
		v.Message, v.Tone, v.Answer = fmt.Sprintf(msgLost, out.Answer), ToneFailure, out.Answer
	default:
		v.Message, v.Tone = msgIncorrect, ToneFailure
	}
	s.view = v

	log.Debug().Str("round", s.roundID).Str("status", string(next.Status)).Int("revealed", next.Revealed).Msg("guess evaluated")
	return s.current(), saveErr
}

// View returns the latest render instructions.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// current copies the stored view and refreshes the score. Caller holds mu.
func (s *Session) current() View {
	v := s.view
	v.Symptoms = append([]string{}, s.view.Symptoms...)
	v.Score = s.lib.Score()
	return v
}
