package memstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang/snappy"

	"github.com/wordbridge/wordbridge/internal/core/models"
)

// The snapshot has its own record types: the domain types' JSON tags shape
// API responses and hide internal fields like partition keys and random
// attributes, which the snapshot must keep.

type wordRecord struct {
	UserID     string    `json:"userId"`
	WordID     string    `json:"wordId"`
	Spanish    string    `json:"spanish"`
	Bulgarian  string    `json:"bulgarian"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
	RandomPool string    `json:"randomPool,omitempty"`
	RandKey    int64     `json:"randKey"`
}

type sentenceRecord struct {
	SentenceID       string   `json:"sentenceId"`
	PromptBulgarian  string   `json:"promptBg"`
	CanonicalSpanish string   `json:"canonicalEs"`
	AcceptedSpanish  []string `json:"acceptedEs,omitempty"`
	PersonKey        string   `json:"personKey,omitempty"`
	Domain           string   `json:"domain,omitempty"`
	Difficulty       int      `json:"difficulty,omitempty"`
	Tense            string   `json:"tense,omitempty"`
	Status           string   `json:"status"`
	StatusRandKey    int64    `json:"statusRandKey"`
}

// snapshot is the on-disk form of the store: snappy-compressed JSON.
type snapshot struct {
	Words     []wordRecord     `json:"words"`
	Sentences []sentenceRecord `json:"sentences"`
}

func toWordRecord(w models.Word) wordRecord {
	return wordRecord{
		UserID: w.UserID, WordID: w.WordID,
		Spanish: w.Spanish, Bulgarian: w.Bulgarian,
		CreatedBy: w.CreatedBy, UpdatedAt: w.UpdatedAt,
		RandomPool: w.RandomPool, RandKey: w.RandKey,
	}
}

func (r wordRecord) word() models.Word {
	return models.Word{
		UserID: r.UserID, WordID: r.WordID,
		Spanish: r.Spanish, Bulgarian: r.Bulgarian,
		CreatedBy: r.CreatedBy, UpdatedAt: r.UpdatedAt,
		RandomPool: r.RandomPool, RandKey: r.RandKey,
	}
}

func toSentenceRecord(s models.Sentence) sentenceRecord {
	return sentenceRecord{
		SentenceID: s.SentenceID, PromptBulgarian: s.PromptBulgarian,
		CanonicalSpanish: s.CanonicalSpanish, AcceptedSpanish: s.AcceptedSpanish,
		PersonKey: s.PersonKey, Domain: s.Domain, Difficulty: s.Difficulty,
		Tense: s.Tense, Status: s.Status, StatusRandKey: s.StatusRandKey,
	}
}

func (r sentenceRecord) sentence() models.Sentence {
	return models.Sentence{
		SentenceID: r.SentenceID, PromptBulgarian: r.PromptBulgarian,
		CanonicalSpanish: r.CanonicalSpanish, AcceptedSpanish: r.AcceptedSpanish,
		PersonKey: r.PersonKey, Domain: r.Domain, Difficulty: r.Difficulty,
		Tense: r.Tense, Status: r.Status, StatusRandKey: r.StatusRandKey,
	}
}

// Save writes the whole store to path atomically (temp file + rename).
func (s *Store) Save(path string) error {
	s.mu.RLock()
	snap := snapshot{}
	for _, partition := range s.words {
		for _, w := range partition {
			snap.Words = append(snap.Words, toWordRecord(w))
		}
	}
	for _, sentence := range s.sentences {
		snap.Sentences = append(snap.Sentences, toSentenceRecord(sentence))
	}
	s.mu.RUnlock()

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, snappy.Encode(nil, raw), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Restore loads a snapshot if one exists; a missing file is not an error.
func (s *Store) Restore(path string) error {
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range snap.Words {
		w := record.word()
		partition := s.words[w.UserID]
		if partition == nil {
			partition = make(map[string]models.Word)
			s.words[w.UserID] = partition
		}
		partition[w.WordID] = w
	}
	for _, record := range snap.Sentences {
		s.sentences[record.SentenceID] = record.sentence()
	}
	return nil
}

// PeriodicSnapshot snapshots the store every interval until ctx is done,
// with one final snapshot on shutdown. It returns immediately.
func (s *Store) PeriodicSnapshot(ctx context.Context, path string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = s.Save(path)
				return
			case <-ticker.C:
				_ = s.Save(path)
			}
		}
	}()
}
