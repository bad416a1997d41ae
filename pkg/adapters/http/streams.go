package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/redact"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/preferences"
	"github.com/go-chi/chi/v5"
)

// Event is one SSE message.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{} // SessionID -> set of channels

	logger   *slog.Logger
	redactor *redact.Redactor
}

// NewStreamManager creates a StreamManager. Payload deltas are masked by
// redactor before broadcast.
func NewStreamManager(logger *slog.Logger, redactor *redact.Redactor) *StreamManager {
	if redactor == nil {
		redactor = redact.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Event]struct{}),
		logger:      logger,
		redactor:    redactor,
	}
}

// Subscribe registers a listener for sessionID. The returned func unregisters it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast sends ev to every listener of sessionID, dropping it for slow clients.
func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Observe is a session.StateObserver broadcasting the redacted diff of
// every persisted transition.
func (sm *StreamManager) Observe(ctx context.Context, prev, next *domain.State) {
	if next == nil {
		if prev != nil {
			sm.Broadcast(prev.SessionID, Event{Name: "deleted", Data: fmt.Sprintf(`{"session_id":%q}`, prev.SessionID)})
		}
		return
	}
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}
	diff.Payload = sm.redactor.Map(diff.Payload)

	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: failed to encode diff", "session_id", next.SessionID, "err", err)
		return
	}
	sm.Broadcast(next.SessionID, Event{Name: "diff", Data: string(data)})
}

// SubscribeEvents handles GET /sessions/{id}/events. The optional ?watch=
// filter (payload,history,status,index) drops diffs that touch none of
// the listed parts.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "internal", "Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: client subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Name == "diff" && !matchesWatch(ev.Data, watch) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

// SubscribePreferences handles GET /preferences/events. The current value is
// sent first, then every change pushed by the store.
func (s *Server) SubscribePreferences(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "internal", "Streaming not supported")
		return
	}
	store, ok := prefsFrom(w, r)
	if !ok {
		return
	}

	changes := store.Subscribe(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(p preferences.Preferences) {
		data, err := json.Marshal(p)
		if err != nil {
			s.logger.Error("SSE: failed to encode preferences", "err", err)
			return
		}
		fmt.Fprintf(w, "event: preferences\ndata: %s\n\n", data)
		flusher.Flush()
	}
	send(store.Get())

	for p := range changes {
		send(p)
	}
	s.logger.Debug("SSE: preferences subscriber gone")
}

func matchesWatch(data string, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(data), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "payload":
			if len(diff.Payload) > 0 {
				return true
			}
		case "history":
			if diff.History != nil {
				return true
			}
		case "status":
			if diff.Status != nil || diff.LastError != nil {
				return true
			}
		case "index":
			if diff.CurrentIndex != nil {
				return true
			}
		}
	}
	return false
}
