// Package memory implements VectorMemory: a recency-decayed, cosine-scored
// long-term memory store with a typed binary vector file plus a JSON
// metadata sidecar, persisted via atomic write-then-rename.
package memory

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"picoagent/pkg/models"
)

// Config controls VectorMemory's capacity and recall behavior.
type Config struct {
	// MaxRecords bounds how many records are retained; once exceeded, the
	// stalest record by decayed score is evicted.
	MaxRecords int

	// HalfLife is the default exponential time-decay half-life applied to
	// a record's age when no explicit half-life is given to Recall.
	HalfLife time.Duration
}

// DefaultConfig returns sane defaults: 5000 records, a 7-day half-life.
func DefaultConfig() Config {
	return Config{
		MaxRecords: 5000,
		HalfLife:   7 * 24 * time.Hour,
	}
}

// Store is VectorMemory. All access is guarded by a single mutex: store,
// recall, and prune never race against save/load.
type Store struct {
	mu      sync.RWMutex
	cfg     Config
	logger  *slog.Logger
	records map[string]*models.MemoryRecord
	dim     int
}

// NewStore constructs an empty VectorMemory.
func NewStore(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:     cfg,
		logger:  logger,
		records: make(map[string]*models.MemoryRecord),
	}
}

// Store adds a new memory record, rejecting it with a *DimensionMismatchError
// if embedding's length doesn't match the dimension of every other record
// already held (spec §4.1: store(...) fails with DimensionMismatch rather
// than persisting a vector Recall could never compare against the rest).
// The first call to Store (or a prior Load) fixes the store's dimension.
// If the store is at capacity, the record with the lowest current decay
// score is evicted first.
func (s *Store) Store(sessionID, text string, embedding []float32) (*models.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(embedding)
	} else if len(embedding) != s.dim {
		return nil, &DimensionMismatchError{Expected: s.dim, Got: len(embedding)}
	}

	now := time.Now()
	rec := &models.MemoryRecord{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Text:      text,
		Embedding: embedding,
		CreatedAt: now,
		LastUsed:  now,
	}
	s.records[rec.ID] = rec

	if s.cfg.MaxRecords > 0 && len(s.records) > s.cfg.MaxRecords {
		s.evictStalestLocked(now)
	}
	return rec, nil
}

// evictStalestLocked removes the record with the lowest decay(now) value.
// Callers must hold s.mu.
func (s *Store) evictStalestLocked(now time.Time) {
	var stalestID string
	stalestDecay := math.Inf(1)
	halfLife := s.cfg.HalfLife
	for id, rec := range s.records {
		d := decay(rec.LastUsed, now, halfLife)
		if d < stalestDecay {
			stalestDecay = d
			stalestID = id
		}
	}
	if stalestID != "" {
		delete(s.records, stalestID)
	}
}

// Recall returns the top-K matches by score = cosine_similarity * decay.
func (s *Store) Recall(q models.MemoryQuery) []models.MemoryMatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	halfLife := q.HalfLife
	if halfLife <= 0 {
		halfLife = s.cfg.HalfLife
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	matches := make([]models.MemoryMatch, 0, len(s.records))
	for _, rec := range s.records {
		sim := cosineSimilarity(q.Embedding, rec.Embedding)
		if sim <= 0 {
			continue
		}
		d := decay(rec.LastUsed, now, halfLife)
		matches = append(matches, models.MemoryMatch{
			Record:     rec,
			Similarity: sim,
			Decay:      d,
			Score:      sim * d,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	for _, m := range matches {
		m.Record.LastUsed = now
		m.Record.UseCount++
	}
	return matches
}

// Prune removes records whose decay score has fallen below minScore.
// Returns the number of records removed.
func (s *Store) Prune(minScore float64, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now()
	}
	removed := 0
	for id, rec := range s.records {
		if decay(rec.LastUsed, now, s.cfg.HalfLife) < minScore {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// PruneOlderThan removes every record last used before cutoff, independent
// of its decay score. It backs prune-memory's --older-than flag, which asks
// for an absolute age bound rather than a decay threshold.
func (s *Store) PruneOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		if rec.LastUsed.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len returns the current record count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func decay(last, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	age := now.Sub(last)
	if age <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * age.Seconds() / halfLife.Seconds())
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// DimensionMismatchError is returned by Load when a persisted vector file's
// dimension does not match the embedding provider currently configured.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("memory: embedding dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
