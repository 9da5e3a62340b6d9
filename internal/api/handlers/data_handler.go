package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/ragstore/internal/models"
	"github.com/markdave123-py/ragstore/internal/services"
)

type DataHandler struct {
	data    *services.DataService
	process *services.ProcessService
}

func NewDataHandler(data *services.DataService, process *services.ProcessService) *DataHandler {
	return &DataHandler{data: data, process: process}
}

type processRequest struct {
	FileID      string `json:"file_id"`
	ChunkSize   int    `json:"chunk_size"`
	OverlapSize int    `json:"overlap_size"`
	DoReset     bool   `json:"do_reset"`
}

// UploadData validates and stores one uploaded file for a project. The file
// part is handed to the service as a live stream, so the body is never
// materialized in the handler and a client disconnect cancels the transfer
// mid-flight.
func (h *DataHandler) UploadData(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	if projectID == "" {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeSignal(w, http.StatusBadRequest, models.SignalFileUploadFailed, nil)
		return
	}

	var part *multipart.Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeSignal(w, http.StatusBadRequest, models.SignalFileUploadFailed, nil)
			return
		}
		if p.FormName() == "file" {
			part = p
			break
		}
	}
	if part == nil {
		writeSignal(w, http.StatusBadRequest, models.SignalFileUploadFailed, nil)
		return
	}
	defer part.Close()

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Multipart parts rarely declare their own length; -1 defers the size
	// check to the capped stream inside the service.
	size := int64(-1)
	if cl := part.Header.Get("Content-Length"); cl != "" {
		if v, parseErr := strconv.ParseInt(cl, 10, 64); parseErr == nil {
			size = v
		}
	}

	uploadCtx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	asset, signal, err := h.data.Upload(uploadCtx, projectID, part.FileName(), contentType, size, part)
	if err != nil {
		writeSignal(w, http.StatusBadRequest, signal, nil)
		return
	}
	if asset == nil {
		// Validation rejection: signal already names the failed constraint.
		writeSignal(w, http.StatusBadRequest, signal, nil)
		return
	}

	writeSignal(w, http.StatusOK, signal, map[string]any{"file_id": asset.Name})
}

// ProcessData chunks a project's uploaded files into stored DataChunks.
func (h *DataHandler) ProcessData(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	if projectID == "" {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := h.process.Process(r.Context(), projectID, services.ProcessParams{
		FileID:      req.FileID,
		ChunkSize:   req.ChunkSize,
		OverlapSize: req.OverlapSize,
		DoReset:     req.DoReset,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFiles):
			writeSignal(w, http.StatusBadRequest, models.SignalNoFilesFound, nil)
		case errors.Is(err, services.ErrNoChunks):
			writeSignal(w, http.StatusBadRequest, models.SignalProcessingFailed, map[string]any{"files": result.Files})
		default:
			writeSignal(w, http.StatusBadRequest, models.SignalProcessingFailed, map[string]any{"error": err.Error()})
		}
		return
	}

	writeSignal(w, http.StatusOK, models.SignalProcessingSuccess, map[string]any{
		"inserted_chunks": result.InsertedChunks,
		"processed_files": result.ProcessedFiles,
		"files":           result.Files,
	})
}

// writeSignal emits the standard {signal, ...} JSON envelope.
func writeSignal(w http.ResponseWriter, status int, signal models.ResponseSignal, extra map[string]any) {
	payload := map[string]any{"signal": signal}
	for k, v := range extra {
		payload[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
