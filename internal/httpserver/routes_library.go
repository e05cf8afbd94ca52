// internal/httpserver/routes_library.go
//
// Illness library screen and library API.
//   - GET  /library                → add form + record list
//   - POST /library                → add (form fields "name", "symptoms")
//   - POST /library/{index}/remove → remove by position
//   - GET  /library/clear          → confirmation page
//   - POST /library/clear          → clear when confirm=yes
//   - GET    /api/library          → records
//   - POST   /api/library          → {"name","symptoms"} → 201
//   - DELETE /api/library/{index}  → 204
//   - DELETE /api/library?confirm=yes → 204
//
// Positions are zero-based and refer to the list as last rendered.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/medicle/internal/library"
)

const msgInvalidAdd = "Please enter both illness name and symptoms."

type libraryPage struct {
	Entries  []library.Entry
	Error    string
	Name     string
	Symptoms string
}

type confirmPage struct {
	Count int
}

func (s *Server) mountLibrary(r chi.Router) {
	r.Route("/library", func(r chi.Router) {
		r.Get("/", s.handleLibraryPage)
		r.Post("/", s.handleAddForm)
		r.Post("/{index}/remove", s.handleRemoveForm)
		r.Get("/clear", s.handleClearConfirm)
		r.Post("/clear", s.handleClearForm)
	})
}

func (s *Server) mountLibraryAPI(r chi.Router) {
	r.Get("/library", s.handleListLibrary)
	r.Post("/library", s.handleAdd)
	r.Delete("/library/{index}", s.handleRemove)
	r.Delete("/library", s.handleClear)
}

func (s *Server) handleLibraryPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "library.html", libraryPage{Entries: s.lib.Entries()})
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name, symptoms := r.PostForm.Get("name"), r.PostForm.Get("symptoms")
	_, err := s.lib.Add(r.Context(), name, symptoms)
	switch {
	case err == nil:
		http.Redirect(w, r, "/library", http.StatusSeeOther)
	case isInvalidAdd(err):
		s.render(w, http.StatusBadRequest, "library.html", libraryPage{
			Entries:  s.lib.Entries(),
			Error:    msgInvalidAdd,
			Name:     name,
			Symptoms: symptoms,
		})
	default:
		serverError(w, r, err, "add record")
	}
}

// handleRemoveForm treats an unknown position as a no-op.
func (s *Server) handleRemoveForm(w http.ResponseWriter, r *http.Request) {
	if i, ok := indexParam(r); ok {
		if err := s.lib.Remove(r.Context(), i); err != nil && !errors.Is(err, library.ErrNoSuchRecord) {
			serverError(w, r, err, "remove record")
			return
		}
	}
	http.Redirect(w, r, "/library", http.StatusSeeOther)
}

func (s *Server) handleClearConfirm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "confirm.html", confirmPage{Count: s.lib.Len()})
}

func (s *Server) handleClearForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") == "yes" {
		if err := s.lib.Clear(r.Context()); err != nil {
			serverError(w, r, err, "clear library")
			return
		}
	}
	http.Redirect(w, r, "/library", http.StatusSeeOther)
}

type libraryRes struct {
	Records []library.Entry `json:"records"`
}

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, libraryRes{Records: s.lib.Entries()})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req library.Entry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	rec, err := s.lib.Add(r.Context(), req.Name, req.Symptoms)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, library.EntryOf(rec))
	case isInvalidAdd(err):
		writeError(w, http.StatusBadRequest, msgInvalidAdd)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("add record")
		writeError(w, http.StatusInternalServerError, "save_failed")
	}
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no_such_record")
		return
	}
	err := s.lib.Remove(r.Context(), i)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, library.ErrNoSuchRecord):
		writeError(w, http.StatusNotFound, "no_such_record")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("remove record")
		writeError(w, http.StatusInternalServerError, "save_failed")
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "yes" {
		writeError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	if err := s.lib.Clear(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("clear library")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func indexParam(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil
}

func isInvalidAdd(err error) bool {
	return errors.Is(err, library.ErrMissingName) || errors.Is(err, library.ErrMissingSymptoms)
}
