package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/core/ports"
	"github.com/wordbridge/wordbridge/internal/core/textnorm"
	"github.com/wordbridge/wordbridge/internal/metrics"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

// ErrSentenceNotFound covers both a missing id and a sentence that is not
// (or no longer) approved; callers cannot tell the two apart.
var ErrSentenceNotFound = errors.New("sentence exercise was not found")

const (
	// sentenceCandidateLimit bounds the candidate window gathered before the
	// domain/difficulty filter runs. A narrow filter may therefore return
	// nothing even when matching sentences exist outside the window.
	sentenceCandidateLimit = 30

	// MinDifficulty and MaxDifficulty bound the difficulty filter.
	MinDifficulty = 1
	MaxDifficulty = 5
)

// SentenceService owns the sentence-practice use cases.
type SentenceService struct {
	store ports.SentenceStore
	pool  *sampler.Engine[models.Sentence]
	group singleflight.Group
}

// NewSentenceService wires the service with its store and randomness source.
func NewSentenceService(store ports.SentenceStore, rnd sampler.Rand) *SentenceService {
	pool := sampler.New(store.ApprovedPool(), sampler.Config{
		MaxLimit:         1,
		CandidateLimit:   sentenceCandidateLimit,
		PageSize:         scanPageSize,
		Rand:             rnd,
		IndexUnavailable: store.IsIndexUnavailable,
		OnFallback: func(err error) {
			log.Printf("sentence index unavailable, using scan fallback: %v", err)
			metrics.IndexFallbacks.WithLabelValues("sentences").Inc()
		},
	})
	return &SentenceService{store: store, pool: pool}
}

// NextSentence picks one approved sentence at random. domain (case
// insensitive) and difficulty (0 = any) narrow the candidate window after it
// is gathered. A nil sentence with a nil error means nothing matched.
func (s *SentenceService) NextSentence(ctx context.Context, domain string, difficulty int) (*models.Sentence, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	difficulty = ClampDifficulty(difficulty)

	var keep func(models.Sentence) bool
	if domain != "" || difficulty != 0 {
		keep = func(item models.Sentence) bool {
			if domain != "" && strings.ToLower(item.Domain) != domain {
				return false
			}
			if difficulty != 0 && item.Difficulty != difficulty {
				return false
			}
			return true
		}
	}

	items, err := s.pool.Sample(ctx, 1, keep)
	if err != nil {
		metrics.StoreFaults.WithLabelValues("sentences").Inc()
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	metrics.SamplesServed.WithLabelValues("sentences").Inc()
	return &items[0], nil
}

// ClampDifficulty normalizes a requested difficulty into [MinDifficulty,
// MaxDifficulty]; zero stays zero (no filter).
func ClampDifficulty(value int) int {
	if value == 0 {
		return 0
	}
	if value < MinDifficulty {
		return MinDifficulty
	}
	if value > MaxDifficulty {
		return MaxDifficulty
	}
	return value
}

// CheckAnswer grades a submitted answer against the sentence's accepted
// answers: exact under strict normalization, warning when only the relaxed
// form matches, wrong otherwise.
func (s *SentenceService) CheckAnswer(ctx context.Context, sentenceID, answer string) (*models.AnswerResult, error) {
	sentenceID = strings.TrimSpace(sentenceID)
	answer = strings.TrimSpace(answer)
	if sentenceID == "" || answer == "" {
		return nil, fmt.Errorf("%w: 'sentenceId' and 'answer' are required", ErrInvalidInput)
	}

	sentence, err := s.getSentence(ctx, sentenceID)
	if err != nil {
		return nil, err
	}
	if sentence == nil || sentence.Status != models.StatusApproved {
		return nil, ErrSentenceNotFound
	}

	canonical, accepted := sentence.ExpectedAnswers()
	if len(accepted) == 0 {
		return nil, fmt.Errorf("sentence %s has no accepted answers", sentenceID)
	}
	if canonical == "" {
		canonical = accepted[0]
	}

	result := &models.AnswerResult{CanonicalAnswer: canonical}
	switch textnorm.Evaluate(answer, accepted) {
	case textnorm.VerdictExact:
		result.Status = models.AnswerExact
		result.IsCorrect = true
		result.Message = "Correct."
	case textnorm.VerdictWarning:
		result.Status = models.AnswerWarning
		result.IsCorrect = true
		result.Message = "Correct, but be careful with accent or case."
	default:
		result.Status = models.AnswerWrong
		result.Message = "Incorrect. Review the expected answer and continue."
	}
	return result, nil
}

// getSentence coalesces concurrent reads of the same sentence into one store
// call; answer checks for a popular exercise tend to arrive in bursts.
func (s *SentenceService) getSentence(ctx context.Context, sentenceID string) (*models.Sentence, error) {
	ch := s.group.DoChan(sentenceID, func() (interface{}, error) {
		return s.store.GetSentence(ctx, sentenceID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		sentence, _ := res.Val.(*models.Sentence)
		return sentence, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
