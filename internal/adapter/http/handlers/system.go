package handlers

import (
	"net/http"
	"time"
)

// HandleHealth checks server health.
func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
