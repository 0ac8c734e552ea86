package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/core/services"
)

type wordListResponse struct {
	Count int           `json:"count"`
	Items []models.Word `json:"items"`
}

// HandleRandomWords serves a random sample from the shared word pool.
func (api *API) HandleRandomWords(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	words, err := api.Words.RandomWords(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to fetch random words: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch words.")
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	writeJSON(w, http.StatusOK, wordListResponse{Count: len(words), Items: words})
}

// HandlePracticeWords serves a random sample from the caller's own words.
func (api *API) HandlePracticeWords(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	words, err := api.Words.PracticeWords(r.Context(), userFromContext(r.Context()), limit)
	if err != nil {
		log.Printf("Failed to fetch practice words: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch words.")
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	writeJSON(w, http.StatusOK, wordListResponse{Count: len(words), Items: words})
}

// HandleExportWords returns every word the caller has saved.
func (api *API) HandleExportWords(w http.ResponseWriter, r *http.Request) {
	words, err := api.Words.ExportWords(r.Context(), userFromContext(r.Context()))
	if err != nil {
		log.Printf("Failed to export words: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to export words.")
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	writeJSON(w, http.StatusOK, wordListResponse{Count: len(words), Items: words})
}

type putWordRequest struct {
	Spanish   string `json:"spanish"`
	Bulgarian string `json:"bulgarian"`
}

// HandlePutWord saves or updates one translation pair.
func (api *API) HandlePutWord(w http.ResponseWriter, r *http.Request) {
	var req putWordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	word, err := api.Words.PutWord(r.Context(), userFromContext(r.Context()), req.Spanish, req.Bulgarian)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to save word: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to save word.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Word saved successfully.",
		"item":    word,
	})
}

type bulkPutRequest struct {
	Items []services.BulkEntry `json:"items"`
}

// HandleBulkPutWords imports a batch of translation pairs. Row-level
// validation failures are reported alongside the saved count; only a batch
// with no usable rows at all is rejected.
func (api *API) HandleBulkPutWords(w http.ResponseWriter, r *http.Request) {
	var req bulkPutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	report, err := api.Words.BulkPutWords(r.Context(), userFromContext(r.Context()), req.Items)
	if report.Errors == nil {
		report.Errors = []services.RowError{}
	}
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":       err.Error(),
				"savedCount":    report.SavedCount,
				"rejectedCount": report.RejectedCount,
				"errors":        report.Errors,
			})
			return
		}
		log.Printf("Failed to process bulk word upload: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to process bulk upload.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "Bulk upload processed.",
		"savedCount":    report.SavedCount,
		"rejectedCount": report.RejectedCount,
		"errors":        report.Errors,
	})
}
