package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/wordbridge/wordbridge/internal/core/services"
)

// API bundles the services the HTTP handlers depend on.
type API struct {
	Words     *services.WordService
	Sentences *services.SentenceService
}

func NewAPI(words *services.WordService, sentences *services.SentenceService) *API {
	return &API{Words: words, Sentences: sentences}
}

// userFromContext reads the user id injected by the auth middleware.
func userFromContext(ctx context.Context) string {
	if v := ctx.Value("userID"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseLimit reads a sample-size query parameter. Anything unusable falls
// back to the default; out-of-range values are clamped, never rejected.
func parseLimit(raw string) int {
	if raw == "" {
		return services.DefaultSampleLimit
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return services.DefaultSampleLimit
	}
	if parsed < 1 {
		return 1
	}
	if parsed > services.MaxSampleLimit {
		return services.MaxSampleLimit
	}
	return parsed
}

// parseDifficulty reads the optional difficulty filter; 0 means no filter.
// A present but out-of-range value is clamped into [1, 5], not rejected.
func parseDifficulty(raw string) int {
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	if parsed < services.MinDifficulty {
		return services.MinDifficulty
	}
	if parsed > services.MaxDifficulty {
		return services.MaxDifficulty
	}
	return parsed
}

func parseDomain(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
