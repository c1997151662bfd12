package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gopi-techy/SkillSlate/internal/ai"
	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/document"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// GenerateHandler serves AI generation under /api/ai/portfolio. Responses
// use the {"success": ...} envelope.
type GenerateHandler struct {
	generation *service.GenerationService
	logger     *slog.Logger
}

func NewGenerateHandler(generation *service.GenerationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{generation: generation, logger: logger}
}

// HandleGenerate creates a draft portfolio from a prompt or an uploaded
// resume.
//
// POST /api/ai/portfolio/generate — multipart form with generationType
// ("prompt" or "resume"), and either a "prompt" field or a "resume" file.
// A plain JSON body {"prompt": ...} also works for prompt generation.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	in, err := readGenerateInput(r)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}

	res, err := h.generation.Generate(r.Context(), userID, in)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"message":       "Portfolio generated successfully",
		"estimatedTime": res.EstimatedSeconds,
		"portfolio":     res.Portfolio,
	})
}

// HandleGenerateStream is HandleGenerate over server-sent events, emitting
// one progress event per pipeline step and a terminal complete or error
// event.
//
// POST /api/ai/portfolio/generate-stream
func (h *GenerateHandler) HandleGenerateStream(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	in, err := readGenerateInput(r)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false, "message": "Streaming is not supported",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(e service.ProgressEvent) {
		payload, err := json.Marshal(e)
		if err != nil {
			h.logger.Error("failed to encode progress event", slog.String("error", err.Error()))
			return
		}
		io.WriteString(w, "data: ")
		w.Write(payload)
		io.WriteString(w, "\n\n")
		flusher.Flush()
	}

	// The terminal error event has already been emitted; the stream just
	// ends here.
	if err := h.generation.GenerateWithProgress(r.Context(), userID, in, emit); err != nil {
		h.logger.Warn("streamed generation failed", slog.String("error", err.Error()))
	}
}

// HandleRefine applies a change request to an existing portfolio.
//
// POST /api/ai/portfolio/refine/{id} {"request", "conversationHistory"}
func (h *GenerateHandler) HandleRefine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Request             string              `json:"request"`
		ConversationHistory []model.ChatMessage `json:"conversationHistory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid JSON body"})
		return
	}

	p, err := h.generation.Refine(r.Context(), userID, chi.URLParam(r, "id"), req.Request, req.ConversationHistory)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Portfolio refined successfully",
		"portfolio": p,
	})
}

// HandleEstimateTime quotes the expected generation duration.
//
// POST /api/ai/portfolio/estimate-time {"generationType", "hasResume"}
func (h *GenerateHandler) HandleEstimateTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GenerationType string `json:"generationType"`
		HasResume      bool   `json:"hasResume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid JSON body"})
		return
	}
	if req.GenerationType == "" {
		req.GenerationType = "prompt"
	}

	seconds := ai.EstimateSeconds(req.GenerationType, req.HasResume)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"estimatedTime":    seconds,
		"estimatedMinutes": float64(seconds) / 60,
	})
}

// HandlePreview serves the stored portfolio HTML directly, for embedding in
// an iframe.
//
// GET /api/ai/portfolio/preview/{id}
func (h *GenerateHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	html, err := h.generation.Preview(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// readGenerateInput pulls a generation request out of either a multipart
// form (the resume path) or a JSON body (the prompt path).
func readGenerateInput(r *http.Request) (service.GenerateInput, error) {
	in := service.GenerateInput{Type: "prompt"}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(document.MaxUploadBytes); err != nil {
			return in, apperror.ValidationFailed("body", "Invalid multipart form")
		}
		in.Type = r.FormValue("generationType")
		if in.Type == "" {
			in.Type = "prompt"
		}
		in.Prompt = r.FormValue("prompt")
		in.Template = r.FormValue("template")

		file, header, err := r.FormFile("resume")
		if err == nil {
			defer file.Close()
			if err := document.ValidateSize(header.Size); err != nil {
				return in, err
			}
			content, err := io.ReadAll(io.LimitReader(file, document.MaxUploadBytes+1))
			if err != nil {
				return in, apperror.ValidationFailed("resume", "Failed to read uploaded file")
			}
			in.Filename = header.Filename
			in.Content = content
		}
		return in, nil
	}

	var body struct {
		Prompt         string `json:"prompt"`
		Template       string `json:"template"`
		GenerationType string `json:"generationType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return in, apperror.ValidationFailed("body", "Invalid JSON body")
	}
	in.Prompt = body.Prompt
	in.Template = body.Template
	if body.GenerationType != "" {
		in.Type = body.GenerationType
	}
	return in, nil
}
