package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/markdave123-py/ragstore/internal/config"
)

type BaseHandler struct {
	cfg *config.Config
}

func NewBaseHandler(cfg *config.Config) *BaseHandler {
	return &BaseHandler{cfg: cfg}
}

// Welcome reports the app name and version.
func (h *BaseHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"app_name":    h.cfg.AppName,
		"app_version": h.cfg.AppVersion,
	})
}
