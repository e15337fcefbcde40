package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/logger"
	"github.com/hyperjump/predictimed/internal/rag"
)

const (
	msgNotJSON          = "Error: Request must be JSON"
	msgQuestionRequired = "Error: 'question' field is required"
	msgMessageRequired  = "Error: 'message' field is required"
)

type answerRequest struct {
	Question *string `json:"question" validate:"required"`
}

type askRequest struct {
	Message *string `json:"message" validate:"required"`
}

type answerResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type answerHandlers struct {
	answerer Answerer
	logger   *zap.Logger
}

func (h *answerHandlers) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if !h.answerer.Ready() {
		h.respondAnswer(w, r, http.StatusInternalServerError, rag.MsgUnavailable)
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errNotJSON) {
			h.respondAnswer(w, r, http.StatusBadRequest, msgNotJSON)
			return
		}
		h.respondAnswer(w, r, http.StatusBadRequest, msgQuestionRequired)
		return
	}
	h.answer(w, r, *req.Question)
}

// handleAsk serves the older chat widget, which posts {"message": ...}.
func (h *answerHandlers) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !h.answerer.Ready() {
		h.respondAnswer(w, r, http.StatusInternalServerError, rag.MsgUnavailable)
		return
	}
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errNotJSON) {
			h.respondAnswer(w, r, http.StatusBadRequest, msgNotJSON)
			return
		}
		h.respondAnswer(w, r, http.StatusBadRequest, msgMessageRequired)
		return
	}
	h.answer(w, r, *req.Message)
}

func (h *answerHandlers) answer(w http.ResponseWriter, r *http.Request, question string) {
	ans := h.answerer.Answer(r.Context(), question)
	status := http.StatusOK
	switch ans.Status {
	case rag.StatusUnavailable, rag.StatusFailed:
		status = http.StatusInternalServerError
		logger.FromContext(r.Context(), h.logger).Error("answer failed",
			zap.String("status", string(ans.Status)), zap.Error(ans.Err))
	}
	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	respondJSON(w, status, answerResponse{Answer: ans.Text, Sources: sources})
}

func (h *answerHandlers) respondAnswer(w http.ResponseWriter, r *http.Request, status int, text string) {
	logger.FromContext(r.Context(), h.logger).Debug("answer request rejected",
		zap.Int("status", status), zap.String("reason", text))
	respondJSON(w, status, answerResponse{Answer: text, Sources: []string{}})
}

func (h *answerHandlers) handleTest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "medical_chatbot"})
}

func (h *answerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.answerer.Ready() {
		resp := map[string]string{"status": "degraded"}
		if err := h.answerer.Cause(); err != nil {
			resp["error"] = err.Error()
		}
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
