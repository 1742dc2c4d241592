package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/review"
	"github.com/sells-group/contact-enrich/internal/store"
	"github.com/sells-group/contact-enrich/internal/stream"
)

type createStreamRequest struct {
	SpreadsheetIDs []string `json:"spreadsheet_ids"`
}

type createStreamResponse struct {
	StreamID       string   `json:"stream_id"`
	SpreadsheetIDs []string `json:"spreadsheet_ids"`
}

func (s *Server) handleListSpreadsheets(w http.ResponseWriter, r *http.Request) {
	if s.deps.Spreadsheets == nil {
		writeError(w, http.StatusServiceUnavailable, "spreadsheet listing not configured")
		return
	}
	list, err := s.deps.Spreadsheets.List(r.Context())
	if err != nil {
		zap.L().Error("server: list spreadsheets", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to list spreadsheets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spreadsheets": list})
}

func (s *Server) handleCreateStream(w http.ResponseWriter, r *http.Request) {
	var req createStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SpreadsheetIDs) == 0 {
		writeError(w, http.StatusBadRequest, "spreadsheet_ids is required")
		return
	}
	st := s.deps.Streams.Create(req.SpreadsheetIDs)
	writeJSON(w, http.StatusCreated, createStreamResponse{StreamID: st.ID, SpreadsheetIDs: st.SpreadsheetIDs})
}

// handleEvents runs the stream for the lifetime of the request, writing
// each event as a server-sent event. Headers are committed on the first
// event so lookup failures can still be reported with a status code.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	emit := func(e stream.Event) error {
		if !started {
			h := w.Header()
			h.Set("Content-Type", "text/event-stream")
			h.Set("Cache-Control", "no-cache")
			h.Set("Connection", "keep-alive")
			h.Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := s.deps.Streams.Run(r.Context(), id, emit)
	switch {
	case err == nil, errors.Is(err, stream.ErrStopped):
		if !started {
			w.WriteHeader(http.StatusNoContent)
		}
	case errors.Is(err, stream.ErrUnknownStream):
		if !started {
			writeError(w, http.StatusNotFound, "unknown stream")
		}
	case errors.Is(err, stream.ErrStreamRunning):
		if !started {
			writeError(w, http.StatusConflict, "stream already consumed")
		}
	case r.Context().Err() != nil:
		zap.L().Info("server: stream client disconnected", zap.String("stream_id", id))
	default:
		zap.L().Error("server: stream failed", zap.String("stream_id", id), zap.Error(err))
		if !started {
			writeError(w, http.StatusInternalServerError, "stream failed")
		}
	}
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Streams.Continue(id); err != nil {
		writeStreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "continued", "stream_id": id})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Streams.Stop(id); err != nil {
		writeStreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped", "stream_id": id})
}

func writeStreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, stream.ErrUnknownStream) {
		writeError(w, http.StatusNotFound, "unknown stream")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.deps.Review.Save(r.Context(), req)
	if err != nil {
		if errors.Is(err, review.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("server: save row", zap.String("spreadsheet_id", req.SpreadsheetID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to save row")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	rec, err := s.deps.Contacts.GetContact(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		zap.L().Error("server: get contact", zap.String("linkedin_username", username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read contact")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
