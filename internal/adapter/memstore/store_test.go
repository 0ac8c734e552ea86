package memstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

func seedWords(t *testing.T, s *Store, userID string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		word := models.Word{
			UserID:     userID,
			WordID:     string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Spanish:    "es",
			Bulgarian:  "bg",
			RandomPool: models.GlobalPool,
			RandKey:    int64(i*1000 + 1),
		}
		if err := s.PutWord(ctx, word); err != nil {
			t.Fatalf("seed word: %v", err)
		}
	}
}

func drainRing(t *testing.T, src sampler.Source[models.Word], op sampler.Op, pivot int64, limit int) []models.Word {
	t.Helper()
	var out []models.Word
	token := ""
	for len(out) < limit {
		page, next, err := src.RingRange(context.Background(), op, pivot, limit-len(out), token)
		if err != nil {
			t.Fatalf("ring range: %v", err)
		}
		out = append(out, page...)
		token = next
		if token == "" {
			break
		}
	}
	return out
}

func TestRingRangePaginates(t *testing.T) {
	s := New()
	s.SetReadPage(2)
	seedWords(t, s, "ana", 7)

	words := drainRing(t, s.GlobalPool(), sampler.OpGE, 1, 50)
	if len(words) != 7 {
		t.Fatalf("expected 7 words across pages, got %d", len(words))
	}
	for i := 1; i < len(words); i++ {
		if words[i-1].RandKey > words[i].RandKey {
			t.Fatalf("ring pages must come back ascending by rand key")
		}
	}
}

func TestRingRangeRespectsPivotSides(t *testing.T) {
	s := New()
	seedWords(t, s, "ana", 10)
	const pivot = 5001

	upper := drainRing(t, s.GlobalPool(), sampler.OpGE, pivot, 50)
	lower := drainRing(t, s.GlobalPool(), sampler.OpLT, pivot, 50)

	if len(upper)+len(lower) != 10 {
		t.Fatalf("legs must partition the pool, got %d + %d", len(upper), len(lower))
	}
	for _, w := range upper {
		if w.RandKey < pivot {
			t.Fatalf("OpGE returned key %d below pivot", w.RandKey)
		}
	}
	for _, w := range lower {
		if w.RandKey >= pivot {
			t.Fatalf("OpLT returned key %d at or above pivot", w.RandKey)
		}
	}
}

func TestIndexNotReady(t *testing.T) {
	s := New()
	seedWords(t, s, "ana", 3)
	s.SetIndexReady(false)

	_, _, err := s.GlobalPool().RingRange(context.Background(), sampler.OpGE, 1, 10, "")
	if err == nil {
		t.Fatalf("expected ring read to fail while the index is down")
	}
	if !s.IsIndexUnavailable(err) {
		t.Fatalf("error must classify as index-unavailable: %v", err)
	}
	if s.IsIndexUnavailable(context.DeadlineExceeded) {
		t.Fatalf("unrelated errors must not classify as index-unavailable")
	}

	// The scan path keeps working.
	page, _, err := s.GlobalPool().Page(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("scan must not depend on the index: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 words from scan, got %d", len(page))
	}
}

func TestPutWordPreservesRandomAttributes(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := models.Word{UserID: "ana", WordID: "hola", Spanish: "hola", Bulgarian: "здравей", RandomPool: models.GlobalPool, RandKey: 123}
	if err := s.PutWord(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	update := first
	update.Bulgarian = "здрасти"
	update.RandKey = 999 // candidate value, must be ignored for existing items
	if err := s.PutWord(ctx, update); err != nil {
		t.Fatalf("update: %v", err)
	}

	words, err := s.UserWords(ctx, "ana")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	if words[0].RandKey != 123 {
		t.Fatalf("rand key must never be rewritten, got %d", words[0].RandKey)
	}
	if words[0].Bulgarian != "здрасти" {
		t.Fatalf("translation must be updated, got %q", words[0].Bulgarian)
	}
}

func TestUserPoolIsolation(t *testing.T) {
	s := New()
	seedWords(t, s, "ana", 4)
	seedWords(t, s, "boris", 2)

	words := drainRing(t, s.UserPool("boris"), sampler.OpGE, 1, 50)
	if len(words) != 2 {
		t.Fatalf("expected 2 words for boris, got %d", len(words))
	}
	for _, w := range words {
		if w.UserID != "boris" {
			t.Fatalf("user pool leaked %q", w.UserID)
		}
	}
}

func TestApprovedPoolFiltersStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, status := range []string{models.StatusApproved, "DRAFT", models.StatusApproved} {
		err := s.PutSentence(ctx, models.Sentence{
			SentenceID:    string(rune('a' + i)),
			Status:        status,
			StatusRandKey: int64(i + 1),
		})
		if err != nil {
			t.Fatalf("put sentence: %v", err)
		}
	}

	page, _, err := s.ApprovedPool().Page(ctx, 10, "")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 approved sentences, got %d", len(page))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.snap")
	ctx := context.Background()

	s := New()
	seedWords(t, s, "ana", 5)
	if err := s.PutSentence(ctx, models.Sentence{SentenceID: "s1", Status: models.StatusApproved, StatusRandKey: 7}); err != nil {
		t.Fatalf("put sentence: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := New()
	if err := restored.Restore(path); err != nil {
		t.Fatalf("restore: %v", err)
	}

	words, err := restored.UserWords(ctx, "ana")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(words) != 5 {
		t.Fatalf("expected 5 restored words, got %d", len(words))
	}
	sentence, err := restored.GetSentence(ctx, "s1")
	if err != nil || sentence == nil {
		t.Fatalf("expected restored sentence, got %v, %v", sentence, err)
	}
	if sentence.StatusRandKey != 7 {
		t.Fatalf("rand key lost in snapshot, got %d", sentence.StatusRandKey)
	}
}

func TestRestoreMissingFileIsNoop(t *testing.T) {
	s := New()
	if err := s.Restore(filepath.Join(t.TempDir(), "absent.snap")); err != nil {
		t.Fatalf("missing snapshot must not error: %v", err)
	}
}
