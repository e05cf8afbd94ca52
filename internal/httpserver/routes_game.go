// internal/httpserver/routes_game.go
//
// Game screen and game API.
//   - GET  /             → render the current View
//   - POST /guess        → submit form fields "guess" and "round", redirect to /
//   - POST /restart      → start a new round, redirect to /
//   - GET  /api/state    → current View as JSON
//   - POST /api/guess    → {"roundId","guess"} → View
//   - POST /api/restart  → View

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/medicle/internal/game"
)

type gamePage struct {
	View game.View
}

func (s *Server) mountGame(r chi.Router) {
	r.Get("/", s.handleGamePage)
	r.Post("/guess", s.handleGuessForm)
	r.Post("/restart", s.handleRestartForm)
}

func (s *Server) mountGameAPI(r chi.Router) {
	r.Get("/state", s.handleState)
	r.Post("/guess", s.handleGuess)
	r.Post("/restart", s.handleRestart)
}

func (s *Server) handleGamePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "game.html", gamePage{View: s.session.View()})
}

// handleGuessForm applies a guess and redirects. Guesses the session refuses
// (stale round, round already over) are dropped; the page shows the real state.
func (s *Server) handleGuessForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	_, err := s.session.Guess(r.Context(), r.PostForm.Get("round"), r.PostForm.Get("guess"))
	if err != nil && !isRefusedGuess(err) {
		serverError(w, r, err, "guess")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("guess ignored")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRestartForm(w http.ResponseWriter, r *http.Request) {
	_, err := s.session.Start(r.Context())
	if err != nil && !isRefusedStart(err) {
		serverError(w, r, err, "restart")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.View())
}

type guessReq struct {
	RoundID string `json:"roundId"`
	Guess   string `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	v, err := s.session.Guess(r.Context(), req.RoundID, req.Guess)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, game.ErrStaleRound):
		writeError(w, http.StatusConflict, "stale_round")
	case errors.Is(err, game.ErrRoundOver), errors.Is(err, game.ErrNoRound):
		writeError(w, http.StatusConflict, "round_over")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("guess")
		writeError(w, http.StatusInternalServerError, "save_failed")
	}
}

// handleRestart starts a round. An empty library is not a request error:
// the idle View carries the message.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	v, err := s.session.Start(r.Context())
	switch {
	case err == nil, errors.Is(err, game.ErrEmptyLibrary):
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, game.ErrRoundInProgress):
		writeError(w, http.StatusConflict, "round_in_progress")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("restart")
		writeError(w, http.StatusInternalServerError, "restart_failed")
	}
}

func isRefusedGuess(err error) bool {
	return errors.Is(err, game.ErrStaleRound) || errors.Is(err, game.ErrRoundOver) || errors.Is(err, game.ErrNoRound)
}

func isRefusedStart(err error) bool {
	return errors.Is(err, game.ErrEmptyLibrary) || errors.Is(err, game.ErrRoundInProgress)
}
