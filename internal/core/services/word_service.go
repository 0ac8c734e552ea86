package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/core/ports"
	"github.com/wordbridge/wordbridge/internal/metrics"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

// ErrInvalidInput marks request-payload problems the transport layer should
// report as a client error.
var ErrInvalidInput = errors.New("invalid input")

const (
	// MaxSampleLimit caps how many words one sampling request may return.
	MaxSampleLimit = 50
	// DefaultSampleLimit applies when the caller sends no usable limit.
	DefaultSampleLimit = 50

	scanPageSize = 100

	// MaxBulkItems caps one bulk upload request.
	MaxBulkItems  = 1000
	maxBulkErrors = 20
)

// WordService owns the vocabulary use cases: sampling the global and
// per-user pools, exporting, and single/bulk upserts.
type WordService struct {
	store ports.WordStore
	rnd   sampler.Rand

	global *sampler.Engine[models.Word]
}

// NewWordService wires the service with its store and randomness source.
func NewWordService(store ports.WordStore, rnd sampler.Rand) *WordService {
	s := &WordService{store: store, rnd: rnd}
	s.global = sampler.New(store.GlobalPool(), s.engineConfig("global_words"))
	return s
}

func (s *WordService) engineConfig(pool string) sampler.Config {
	return sampler.Config{
		MaxLimit:         MaxSampleLimit,
		PageSize:         scanPageSize,
		Rand:             s.rnd,
		IndexUnavailable: s.store.IsIndexUnavailable,
		OnFallback: func(err error) {
			log.Printf("%s index unavailable, using scan fallback: %v", pool, err)
			metrics.IndexFallbacks.WithLabelValues(pool).Inc()
		},
	}
}

// RandomWords samples up to limit words from the shared pool.
func (s *WordService) RandomWords(ctx context.Context, limit int) ([]models.Word, error) {
	return s.sample(ctx, "global_words", s.global, limit)
}

// PracticeWords samples up to limit words from one user's own pool.
func (s *WordService) PracticeWords(ctx context.Context, userID string, limit int) ([]models.Word, error) {
	engine := sampler.New(s.store.UserPool(userID), s.engineConfig("user_words"))
	return s.sample(ctx, "user_words", engine, limit)
}

func (s *WordService) sample(ctx context.Context, pool string, engine *sampler.Engine[models.Word], limit int) ([]models.Word, error) {
	words, err := engine.Sample(ctx, limit, nil)
	if err != nil {
		metrics.StoreFaults.WithLabelValues(pool).Inc()
		return nil, err
	}
	metrics.SamplesServed.WithLabelValues(pool).Add(float64(len(words)))
	return words, nil
}

// ExportWords returns every word the user has saved, in storage order.
func (s *WordService) ExportWords(ctx context.Context, userID string) ([]models.Word, error) {
	return s.store.UserWords(ctx, userID)
}

// PutWord validates and upserts one translation pair. A word that already
// exists keeps its random pool attributes; a new one gets a fresh random key.
func (s *WordService) PutWord(ctx context.Context, userID, spanish, bulgarian string) (models.Word, error) {
	word, err := models.NewWord(userID, spanish, bulgarian)
	if err != nil {
		return models.Word{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	word.RandomPool = models.GlobalPool
	word.RandKey = sampler.NewRandKey(s.rnd)

	if err := s.store.PutWord(ctx, word); err != nil {
		return models.Word{}, fmt.Errorf("put word %q: %w", word.WordID, err)
	}
	return word, nil
}

// BulkEntry is one row of a bulk upload.
type BulkEntry struct {
	Spanish   string `json:"spanish"`
	Bulgarian string `json:"bulgarian"`
}

// RowError reports why one upload row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkReport summarizes a bulk upload. Errors is truncated; RejectedCount is
// the true total.
type BulkReport struct {
	SavedCount    int        `json:"savedCount"`
	RejectedCount int        `json:"rejectedCount"`
	Errors        []RowError `json:"errors"`
}

// BulkPutWords validates every row, dedupes by word id (last row wins) and
// upserts the survivors in one batch. Invalid rows are reported, not fatal;
// a batch with no valid rows at all is an input error.
func (s *WordService) BulkPutWords(ctx context.Context, userID string, entries []BulkEntry) (BulkReport, error) {
	if len(entries) == 0 {
		return BulkReport{}, fmt.Errorf("%w: 'items' cannot be empty", ErrInvalidInput)
	}
	if len(entries) > MaxBulkItems {
		return BulkReport{}, fmt.Errorf("%w: 'items' cannot contain more than %d rows", ErrInvalidInput, MaxBulkItems)
	}

	report := BulkReport{Errors: []RowError{}}
	byID := make(map[string]models.Word, len(entries))
	order := make([]string, 0, len(entries))

	for i, entry := range entries {
		word, err := models.NewWord(userID, entry.Spanish, entry.Bulgarian)
		if err != nil {
			report.RejectedCount++
			if len(report.Errors) < maxBulkErrors {
				report.Errors = append(report.Errors, RowError{Row: i + 1, Message: err.Error()})
			}
			continue
		}
		word.RandomPool = models.GlobalPool
		word.RandKey = sampler.NewRandKey(s.rnd)

		if _, exists := byID[word.WordID]; !exists {
			order = append(order, word.WordID)
		}
		byID[word.WordID] = word
	}

	if len(byID) == 0 {
		return report, fmt.Errorf("%w: no valid rows found in bulk upload", ErrInvalidInput)
	}

	words := make([]models.Word, 0, len(byID))
	for _, id := range order {
		words = append(words, byID[id])
	}
	if err := s.store.BulkPutWords(ctx, words); err != nil {
		return BulkReport{}, fmt.Errorf("bulk put words: %w", err)
	}

	report.SavedCount = len(words)
	return report, nil
}
