package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/wordbridge/wordbridge/internal/core/services"
)

// HandleNextSentence serves one random approved sentence exercise, optionally
// narrowed by domain and difficulty. No match is a 200 with a null item.
func (api *API) HandleNextSentence(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	domain := parseDomain(query.Get("domain"))
	difficulty := parseDifficulty(query.Get("difficulty"))

	sentence, err := api.Sentences.NextSentence(r.Context(), domain, difficulty)
	if err != nil {
		log.Printf("Failed to fetch next sentence exercise: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch sentence exercise.")
		return
	}
	if sentence == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"item":    nil,
			"message": "No sentence exercises are available for this filter.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": sentence})
}

type checkAnswerRequest struct {
	SentenceID string `json:"sentenceId"`
	Answer     string `json:"answer"`
}

// HandleCheckAnswer grades a submitted answer for one sentence exercise.
func (api *API) HandleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req checkAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	result, err := api.Sentences.CheckAnswer(r.Context(), req.SentenceID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrSentenceNotFound):
			writeMessage(w, http.StatusNotFound, "Sentence exercise was not found.")
		default:
			log.Printf("Failed to check sentence answer: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to check sentence answer.")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
