package http

import (
	"context"
	"net/http"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// SessionResponse is the public view of a wizard session.
type SessionResponse struct {
	SessionID    string         `json:"session_id"`
	Flow         string         `json:"flow"`
	Status       domain.Status  `json:"status"`
	CurrentIndex int            `json:"current_index"`
	History      []int          `json:"history"`
	Payload      map[string]any `json:"payload"`
	LastError    string         `json:"last_error,omitempty"`
	View         domain.View    `json:"view"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Flow   string         `json:"flow"`
		Fields map[string]any `json:"fields"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Flow == "" {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "flow is required")
		return
	}

	state, err := s.Sessions.Start(r.Context(), body.Flow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(body.Fields) > 0 {
		fields, err := s.sanitizeFields(body.Fields)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		if state, err = s.Sessions.SubmitFields(r.Context(), state.SessionID, fields); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeState(w, r, http.StatusCreated, state)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitFields handles POST /sessions/{id}/fields.
func (s *Server) SubmitFields(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	fields, err := s.sanitizeFields(body.Fields)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	s.apply(w, r, func(ctx context.Context, id string) (*domain.State, error) {
		return s.Sessions.SubmitFields(ctx, id, fields)
	})
}

// Advance handles POST /sessions/{id}/advance. Async steps are awaited:
// the response carries the settled state.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Sessions.Advance)
}

// Retreat handles POST /sessions/{id}/retreat.
func (s *Server) Retreat(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Sessions.Retreat)
}

// JumpTo handles POST /sessions/{id}/jump.
func (s *Server) JumpTo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index *int `json:"index"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Index == nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "index is required")
		return
	}
	s.apply(w, r, func(ctx context.Context, id string) (*domain.State, error) {
		return s.Sessions.JumpTo(ctx, id, *body.Index)
	})
}

// Reset handles POST /sessions/{id}/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Sessions.Reset)
}

// Cancel handles POST /sessions/{id}/cancel.
func (s *Server) Cancel(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.Sessions.Cancel)
}

type operation func(ctx context.Context, sessionID string) (*domain.State, error)

// apply runs op on the session named in the URL and answers with the
// resulting state.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, op operation) {
	id := chi.URLParam(r, "id")
	state, err := op(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

func (s *Server) response(state *domain.State) (SessionResponse, error) {
	resp := SessionResponse{
		SessionID:    state.SessionID,
		Flow:         state.Flow,
		Status:       state.Status,
		CurrentIndex: state.CurrentIndex,
		History:      state.History,
		Payload:      s.redactor.Map(state.Payload),
		LastError:    state.LastError,
	}
	ctrl, err := s.Sessions.Controller(state.Flow)
	if err != nil {
		return resp, err
	}
	view, err := ctrl.Render(state)
	if err != nil {
		return resp, err
	}
	resp.View = view
	return resp, nil
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, status int, state *domain.State) {
	resp, err := s.response(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, resp)
}
