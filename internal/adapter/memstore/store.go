// Package memstore is the in-memory implementation of the store ports, used
// in local mode and as the test fixture. It mimics the paginated, ring-range
// read model of the DynamoDB adapter, including an "index not ready" failure
// mode that can be toggled to exercise the scan fallback.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

// ErrIndexNotReady is returned by ring reads while the simulated random-key
// index is unavailable.
var ErrIndexNotReady = errors.New("random-key index is still backfilling")

const defaultReadPage = 25

// Store holds words and sentences in memory behind one RWMutex. Reads copy;
// the maps never escape.
type Store struct {
	mu         sync.RWMutex
	words      map[string]map[string]models.Word // userID -> wordID -> word
	sentences  map[string]models.Sentence
	readPage   int
	indexReady bool
}

// New creates an empty store with the ring index available.
func New() *Store {
	return &Store{
		words:      make(map[string]map[string]models.Word),
		sentences:  make(map[string]models.Sentence),
		readPage:   defaultReadPage,
		indexReady: true,
	}
}

// SetIndexReady toggles the simulated random-key index. While false, every
// ring read fails with ErrIndexNotReady and only the scan path works.
func (s *Store) SetIndexReady(ready bool) {
	s.mu.Lock()
	s.indexReady = ready
	s.mu.Unlock()
}

// SetReadPage caps how many items a single paginated read returns. Small
// values force pagination in tests.
func (s *Store) SetReadPage(n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	s.readPage = n
	s.mu.Unlock()
}

// IsIndexUnavailable classifies ErrIndexNotReady as the recoverable
// index-unavailable condition; everything else is fatal.
func (s *Store) IsIndexUnavailable(err error) bool {
	return errors.Is(err, ErrIndexNotReady)
}

// ringKey orders pool entries by (random key, id); ids break ties so random
// key collisions never drop items.
type ringKey struct {
	rand int64
	id   string
}

func (k ringKey) less(other ringKey) bool {
	if k.rand != other.rand {
		return k.rand < other.rand
	}
	return k.id < other.id
}

func (k ringKey) token() string {
	return strconv.FormatInt(k.rand, 10) + "|" + k.id
}

func parseRingToken(token string) (ringKey, error) {
	randPart, id, ok := strings.Cut(token, "|")
	if !ok {
		return ringKey{}, fmt.Errorf("malformed ring token %q", token)
	}
	rand, err := strconv.ParseInt(randPart, 10, 64)
	if err != nil {
		return ringKey{}, fmt.Errorf("malformed ring token %q: %v", token, err)
	}
	return ringKey{rand: rand, id: id}, nil
}

// ringPage pages through items on one side of the pivot, ascending by ring
// key, resuming strictly after the token's position.
func ringPage[T any](items []T, key func(T) ringKey, op sampler.Op, pivot int64, limit int, token string, pageCap int) ([]T, string, error) {
	eligible := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if op == sampler.OpGE && k.rand < pivot {
			continue
		}
		if op == sampler.OpLT && k.rand >= pivot {
			continue
		}
		eligible = append(eligible, item)
	}
	sort.Slice(eligible, func(i, j int) bool { return key(eligible[i]).less(key(eligible[j])) })

	start := 0
	if token != "" {
		after, err := parseRingToken(token)
		if err != nil {
			return nil, "", err
		}
		start = sort.Search(len(eligible), func(i int) bool { return after.less(key(eligible[i])) })
	}

	n := limit
	if n > pageCap {
		n = pageCap
	}
	if n > len(eligible)-start {
		n = len(eligible) - start
	}
	if n <= 0 {
		return nil, "", nil
	}

	page := append([]T(nil), eligible[start:start+n]...)
	next := ""
	if start+n < len(eligible) {
		next = key(page[n-1]).token()
	}
	return page, next, nil
}

// scanPage pages through items in storage order (by id), resuming strictly
// after the token.
func scanPage[T any](items []T, id func(T) string, size int, token string, pageCap int) ([]T, string, error) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })

	start := 0
	if token != "" {
		start = sort.Search(len(items), func(i int) bool { return id(items[i]) > token })
	}

	n := size
	if n > pageCap {
		n = pageCap
	}
	if n > len(items)-start {
		n = len(items) - start
	}
	if n <= 0 {
		return nil, "", nil
	}

	page := append([]T(nil), items[start:start+n]...)
	next := ""
	if start+n < len(items) {
		next = id(page[n-1])
	}
	return page, next, nil
}

// poolWords snapshots one pool under the read lock: the shared pool when
// userID is empty, otherwise the user's partition.
func (s *Store) poolWords(userID string) ([]models.Word, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Word
	if userID == "" {
		for _, partition := range s.words {
			for _, w := range partition {
				if w.RandomPool == models.GlobalPool {
					out = append(out, w)
				}
			}
		}
	} else {
		for _, w := range s.words[userID] {
			out = append(out, w)
		}
	}
	return out, s.readPage, s.indexReady
}

func (s *Store) approvedSentences() ([]models.Sentence, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Sentence
	for _, sentence := range s.sentences {
		if sentence.Status == models.StatusApproved {
			out = append(out, sentence)
		}
	}
	return out, s.readPage, s.indexReady
}

type wordPool struct {
	store  *Store
	userID string // empty means the shared pool
}

// GlobalPool returns the sampling view of the shared word pool.
func (s *Store) GlobalPool() sampler.Source[models.Word] {
	return wordPool{store: s}
}

// UserPool returns the sampling view of one user's words.
func (s *Store) UserPool(userID string) sampler.Source[models.Word] {
	return wordPool{store: s, userID: userID}
}

func (p wordPool) RingRange(_ context.Context, op sampler.Op, pivot int64, limit int, token string) ([]models.Word, string, error) {
	items, pageCap, ready := p.store.poolWords(p.userID)
	if !ready {
		return nil, "", fmt.Errorf("query word ring index: %w", ErrIndexNotReady)
	}
	return ringPage(items, func(w models.Word) ringKey {
		return ringKey{rand: w.RandKey, id: w.UserID + "/" + w.WordID}
	}, op, pivot, limit, token, pageCap)
}

func (p wordPool) Page(_ context.Context, size int, token string) ([]models.Word, string, error) {
	items, pageCap, _ := p.store.poolWords(p.userID)
	return scanPage(items, func(w models.Word) string {
		return w.UserID + "/" + w.WordID
	}, size, token, pageCap)
}

type sentencePool struct {
	store *Store
}

// ApprovedPool returns the sampling view of approved sentences.
func (s *Store) ApprovedPool() sampler.Source[models.Sentence] {
	return sentencePool{store: s}
}

func (p sentencePool) RingRange(_ context.Context, op sampler.Op, pivot int64, limit int, token string) ([]models.Sentence, string, error) {
	items, pageCap, ready := p.store.approvedSentences()
	if !ready {
		return nil, "", fmt.Errorf("query sentence ring index: %w", ErrIndexNotReady)
	}
	return ringPage(items, func(s models.Sentence) ringKey {
		return ringKey{rand: s.StatusRandKey, id: s.SentenceID}
	}, op, pivot, limit, token, pageCap)
}

func (p sentencePool) Page(_ context.Context, size int, token string) ([]models.Sentence, string, error) {
	items, pageCap, _ := p.store.approvedSentences()
	return scanPage(items, func(s models.Sentence) string {
		return s.SentenceID
	}, size, token, pageCap)
}

// PutWord upserts one word; an existing item keeps its random attributes.
func (s *Store) PutWord(_ context.Context, word models.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putWordLocked(word)
	return nil
}

// BulkPutWords upserts a batch with the same preservation rule as PutWord.
func (s *Store) BulkPutWords(_ context.Context, words []models.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, word := range words {
		s.putWordLocked(word)
	}
	return nil
}

func (s *Store) putWordLocked(word models.Word) {
	partition := s.words[word.UserID]
	if partition == nil {
		partition = make(map[string]models.Word)
		s.words[word.UserID] = partition
	}
	if existing, ok := partition[word.WordID]; ok {
		word.RandomPool = existing.RandomPool
		word.RandKey = existing.RandKey
	}
	partition[word.WordID] = word
}

// UserWords exports one user's full partition, ordered by word id.
func (s *Store) UserWords(_ context.Context, userID string) ([]models.Word, error) {
	s.mu.RLock()
	out := make([]models.Word, 0, len(s.words[userID]))
	for _, w := range s.words[userID] {
		out = append(out, w)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].WordID < out[j].WordID })
	return out, nil
}

// PutSentence stores one sentence exercise (pool imports and tests).
func (s *Store) PutSentence(_ context.Context, sentence models.Sentence) error {
	if sentence.SentenceID == "" {
		return errors.New("sentence id is required")
	}
	s.mu.Lock()
	s.sentences[sentence.SentenceID] = sentence
	s.mu.Unlock()
	return nil
}

// GetSentence returns the sentence with the given id, or nil when absent.
func (s *Store) GetSentence(_ context.Context, sentenceID string) (*models.Sentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sentence, ok := s.sentences[sentenceID]; ok {
		return &sentence, nil
	}
	return nil, nil
}
