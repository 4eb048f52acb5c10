package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glosslab/gloss/internal/annotate"
	"github.com/glosslab/gloss/internal/completion"
	"github.com/glosslab/gloss/internal/prompts"
	"github.com/glosslab/gloss/internal/store"
)

type wordRequest struct {
	Word     string `json:"word"`
	Context  string `json:"context"`
	Previous string `json:"previous"`
	Origin   string `json:"origin"`
}

type textRequest struct {
	Text     string `json:"text"`
	Previous string `json:"previous"`
	Origin   string `json:"origin"`
}

type resultRequest struct {
	ID     *int64 `json:"id"`
	Result *bool  `json:"result"`
}

func (s *Server) translateWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Word == "" {
		writeBadRequest(w, "word is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	out, err := s.svc.AnnotateWord(ctx, annotate.WordRequest{
		Word:     req.Word,
		Context:  req.Context,
		Previous: req.Previous,
		Origin:   callerOrigin(req.Origin, r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) translateText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	out, err := s.svc.AnnotateText(ctx, annotate.TextRequest{
		Text:     req.Text,
		Previous: req.Previous,
		Origin:   callerOrigin(req.Origin, r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) successRecord(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ID == nil || req.Result == nil {
		writeBadRequest(w, "id and result are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.feedback.SubmitResult(ctx, *req.ID, *req.Result); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

// callerOrigin prefers the declared body field and falls back to the Origin
// header the browser sent.
func callerOrigin(declared string, r *http.Request) string {
	if declared != "" {
		return declared
	}
	return r.Header.Get("Origin")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps pipeline failures onto transport statuses. Every failure is
// visible to the caller; nothing below this layer swallows one.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, completion.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, completion.ErrUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, prompts.ErrTemplateMissing):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
