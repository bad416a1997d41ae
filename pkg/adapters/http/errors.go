package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/novapay/pkg/domain"
)

// Problem is the JSON error body.
type Problem struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	StepID    string `json:"step_id,omitempty"`
	Retryable bool   `json:"retryable"`
}

// StatusFor maps controller and store errors to HTTP status codes.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrFlowNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrResultDiscarded):
		return http.StatusConflict, "cancelled"
	case errors.Is(err, domain.ErrAsyncStep):
		return http.StatusBadGateway, "async_step_failed"
	case errors.Is(err, domain.ErrBoundary):
		return http.StatusBadRequest, "boundary"
	case errors.Is(err, domain.ErrNavigation):
		return http.StatusBadRequest, "navigation"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	p := Problem{Code: code, Message: err.Error(), Retryable: domain.IsRetryable(err)}

	var verr *domain.ValidationError
	var aerr *domain.AsyncStepError
	var berr *domain.BusyError
	switch {
	case errors.As(err, &verr):
		p.StepID = verr.StepID
	case errors.As(err, &aerr):
		p.StepID = aerr.StepID
	case errors.As(err, &berr):
		p.StepID = berr.StepID
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		p.Message = http.StatusText(status)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, p)
}

func writeProblem(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, Problem{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
