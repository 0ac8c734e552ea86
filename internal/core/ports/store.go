package ports

import (
	"context"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

// WordStore is the persistence contract for vocabulary entries. Pool methods
// return the sampling view of a partition; IsIndexUnavailable is the store's
// error-classification hook for the ring index (true means the random-key
// index is missing or still backfilling, so the caller should fall back to a
// full scan; anything else is a fatal store fault).
type WordStore interface {
	// GlobalPool is the shared pool of all saved words.
	GlobalPool() sampler.Source[models.Word]

	// UserPool is one user's words, sampled by random key.
	UserPool(userID string) sampler.Source[models.Word]

	// UserWords exports the full word partition of one user.
	UserWords(ctx context.Context, userID string) ([]models.Word, error)

	// PutWord upserts a word. The word's RandomPool and RandKey are candidate
	// values used only when the item does not exist yet; an existing item
	// keeps its random attributes.
	PutWord(ctx context.Context, word models.Word) error

	// BulkPutWords upserts a pre-validated batch with the same random-key
	// preservation rule as PutWord.
	BulkPutWords(ctx context.Context, words []models.Word) error

	IsIndexUnavailable(err error) bool
}

// SentenceStore is the persistence contract for sentence exercises.
type SentenceStore interface {
	// ApprovedPool is the pool of approved sentences, sampled by random key.
	ApprovedPool() sampler.Source[models.Sentence]

	// GetSentence returns the sentence with the given id, or nil when absent.
	GetSentence(ctx context.Context, sentenceID string) (*models.Sentence, error)

	IsIndexUnavailable(err error) bool
}
