package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/logger"
	"github.com/hyperjump/predictimed/internal/models"
	"github.com/hyperjump/predictimed/internal/simplify"
)

const msgEmptyText = "Please enter some text"

type simplifyRequest struct {
	Text string `json:"text"`
}

type simplifyResponse struct {
	Answer         string               `json:"answer"`
	SimplifiedText string               `json:"simplified_text"`
	Explanations   []models.Explanation `json:"explanations"`
}

type simplifyHandlers struct {
	annotator Annotator
	logger    *zap.Logger
}

func (h *simplifyHandlers) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Request must be JSON")
		return
	}
	res, err := h.annotator.Annotate(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, simplify.ErrEmptyText) {
			respondError(w, http.StatusBadRequest, msgEmptyText)
			return
		}
		logger.FromContext(r.Context(), h.logger).Error("annotate failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	explanations := res.Explanations
	if explanations == nil {
		explanations = []models.Explanation{}
	}
	respondJSON(w, http.StatusOK, simplifyResponse{
		Answer:         res.Text,
		SimplifiedText: res.Text,
		Explanations:   explanations,
	})
}

// handlePreflight answers OPTIONS whether or not the client sent the
// Access-Control-Request-* headers the CORS middleware keys on.
func (h *simplifyHandlers) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *simplifyHandlers) handleTest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "medical_text_simplifier"})
}

func (h *simplifyHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
