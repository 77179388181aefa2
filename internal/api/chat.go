package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidyasangam/assist/internal/chat"
)

type sendRequest struct {
	Text string `json:"text"`
}

type suggestionRequest struct {
	Question string `json:"question"`
}

type sendResponse struct {
	Message chat.Message `json:"message"`
}

type newChatResponse struct {
	Snapshot chat.Snapshot         `json:"snapshot"`
	Archived *chat.ArchivedSession `json:"archived,omitempty"`
}

type tipsBody struct {
	Seen bool `json:"seen"`
}

const keepAliveInterval = 15 * time.Second

func (s *Server) session(r *http.Request) *chat.Session {
	return s.hub.Session(r.Context(), chi.URLParam(r, "owner"))
}

// getSnapshot handles GET /api/v1/chat/{owner}
func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).Snapshot())
}

// postMessage handles POST /api/v1/chat/{owner}/messages
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := s.session(r).SendUserMessage(r.Context(), req.Text)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sendResponse{Message: msg})
}

// postSuggestion handles POST /api/v1/chat/{owner}/suggestions
func (s *Server) postSuggestion(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := s.session(r).SendSuggested(r.Context(), req.Question)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sendResponse{Message: msg})
}

// postNewChat handles POST /api/v1/chat/{owner}/new
func (s *Server) postNewChat(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	archived, err := sess.StartNewChat(r.Context())
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newChatResponse{Snapshot: sess.Snapshot(), Archived: archived})
}

// postClear handles POST /api/v1/chat/{owner}/clear
func (s *Server) postClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if err := sess.ClearCurrentChat(r.Context()); err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// getArchive handles GET /api/v1/chat/{owner}/archive
func (s *Server) getArchive(w http.ResponseWriter, r *http.Request) {
	list, err := s.session(r).Archive(r.Context())
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}

// postRestore handles POST /api/v1/chat/{owner}/archive/{id}/restore
func (s *Server) postRestore(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if err := sess.RestoreSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// getTips handles GET /api/v1/chat/{owner}/tips
func (s *Server) getTips(w http.ResponseWriter, r *http.Request) {
	seen, err := s.session(r).TipsSeen(r.Context())
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tipsBody{Seen: seen})
}

// putTips handles PUT /api/v1/chat/{owner}/tips. The flag only ever moves
// from unseen to seen.
func (s *Server) putTips(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).MarkTipsSeen(r.Context()); err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tipsBody{Seen: true})
}

// streamEvents handles GET /api/v1/chat/{owner}/events as server-sent events.
// The stream opens with a snapshot so the widget can render immediately.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sess := s.session(r)
	events, stop := sess.Subscribe()
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, "snapshot", sess.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, string(e.Type), e); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "text is required")
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, "assistant is still replying")
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "archived session not found")
	default:
		s.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
