package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// PortfolioHandler serves portfolio CRUD, stats and deployment under
// /api/portfolio. Responses use the {"success": ...} envelope.
type PortfolioHandler struct {
	portfolios *service.PortfolioService
	logger     *slog.Logger
}

func NewPortfolioHandler(portfolios *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios, logger: logger}
}

// HandleList returns all of the user's portfolios.
//
// GET /api/portfolio/
func (h *PortfolioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	list, err := h.portfolios.List(r.Context(), userID)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"portfolios": list,
		"count":      len(list),
	})
}

// HandleCreate adds a portfolio.
//
// POST /api/portfolio/ {"name", "template", ...}
func (h *PortfolioHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid JSON body"})
		return
	}

	p, err := h.portfolios.Create(r.Context(), userID, req)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Portfolio created successfully",
		"portfolio": p,
	})
}

// HandleGet returns one portfolio.
//
// GET /api/portfolio/{id}
func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.portfolios.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"portfolio": p,
	})
}

// HandleUpdate applies a partial update.
//
// PUT /api/portfolio/{id}
func (h *PortfolioHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid JSON body"})
		return
	}

	p, err := h.portfolios.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Portfolio updated successfully",
		"portfolio": p,
	})
}

// HandleDelete removes a portfolio.
//
// DELETE /api/portfolio/{id}
func (h *PortfolioHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.portfolios.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Portfolio deleted successfully",
	})
}

// HandleDeploy publishes the portfolio to GitHub Pages.
//
// POST /api/portfolio/{id}/deploy
func (h *PortfolioHandler) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	result, err := h.portfolios.Deploy(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Portfolio deployed successfully",
		"url":     result.URL,
		"deploy":  result,
	})
}

// HandleStats summarizes the user's portfolios.
//
// GET /api/portfolio/stats
func (h *PortfolioHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	stats, err := h.portfolios.Stats(r.Context(), userID)
	if err != nil {
		writeEnvelopeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}
