package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/ragstore/internal/core/llm"
	"github.com/markdave123-py/ragstore/internal/models"
	"github.com/markdave123-py/ragstore/internal/services"
)

type NLPHandler struct {
	nlp *services.NLPService
}

func NewNLPHandler(nlp *services.NLPService) *NLPHandler {
	return &NLPHandler{nlp: nlp}
}

// PushIndex embeds the project's stored chunks and persists the vectors.
func (h *NLPHandler) PushIndex(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	if projectID == "" {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	pushed, err := h.nlp.PushProjectEmbeddings(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrNothingToIndex) {
			writeSignal(w, http.StatusBadRequest, models.SignalNoFilesFound, nil)
			return
		}
		writeSignal(w, http.StatusInternalServerError, models.SignalProcessingFailed, map[string]any{
			"pushed": pushed,
			"error":  err.Error(),
		})
		return
	}

	writeSignal(w, http.StatusOK, models.SignalProcessingSuccess, map[string]any{"pushed": pushed})
}

type generateRequest struct {
	Prompt          string        `json:"prompt"`
	ChatHistory     []llm.Message `json:"chat_history"`
	MaxOutputTokens int           `json:"max_output_tokens"`
	Temperature     float64       `json:"temperature"`
}

// Generate runs the prompt (plus chat history) through the active provider.
func (h *NLPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	answer, err := h.nlp.Generate(r.Context(), req.Prompt, req.ChatHistory, req.MaxOutputTokens, req.Temperature)
	if err != nil {
		http.Error(w, fmt.Sprintf("generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}
