package cat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/quizmith/adapt-api/internal/domain"
)

// ErrPoolExhausted is returned when the question pool for a band is empty.
// Unlike an in-session rotation reset, an empty band pool is a
// configuration error: it is fatal, surfaced to the caller and never
// retried.
var ErrPoolExhausted = errors.New("question pool for band is empty")

// Selector picks the next question for a session: unseen questions in the
// target band, preferring items that cover the learner's weak topics, with
// any remaining tie broken by a deterministically seeded draw.
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a question selector.
// If logger is nil, a default logger will be used.
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		logger: logger.With(slog.String("component", "question_selector")),
	}
}

// NextQuestion picks the next question for the session from the given band
// pool. weakTopics is an optional hint derived from the learner's pattern;
// candidates covering a weak topic are preferred when more than one remains.
//
// Selection is deterministic: the tie-break draw is seeded from the session
// ID and current index, so resuming a crashed session recomputes exactly
// the question it would have produced before the crash.
//
// Returns ErrPoolExhausted if the band pool itself is empty.
func (s *Selector) NextQuestion(
	session *domain.AssessmentSession,
	band domain.Tier,
	pool []domain.Question,
	weakTopics []string,
) (*domain.Question, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: band %q, subject %q", ErrPoolExhausted, band, session.Subject)
	}

	rotation := NewRotation(session, s.logger)
	candidates := rotation.Available(band, pool)

	if len(candidates) > 1 {
		if matches := topicMatches(candidates, weakTopics); len(matches) > 0 {
			candidates = matches
		}
	}

	// Sort by ID so the draw is independent of pool ordering, then pick
	// with the session-derived seed.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	rng := rand.New(rand.NewSource(selectionSeed(session.ID, session.CurrentIndex)))
	chosen := candidates[rng.Intn(len(candidates))]
	rotation.MarkAsked(band, chosen.ID)

	return &chosen, nil
}

// topicMatches filters candidates down to those covering a weak topic.
func topicMatches(candidates []domain.Question, weakTopics []string) []domain.Question {
	if len(weakTopics) == 0 {
		return nil
	}

	weak := make(map[string]bool, len(weakTopics))
	for _, topic := range weakTopics {
		weak[topic] = true
	}

	var matches []domain.Question
	for _, q := range candidates {
		if weak[q.Topic] {
			matches = append(matches, q)
		}
	}
	return matches
}

// selectionSeed derives the tie-break seed from the session ID and the
// current trace index. Wall-clock and process state are deliberately kept
// out so selection is reproducible from persisted state alone.
func selectionSeed(sessionID uuid.UUID, currentIndex int) int64 {
	h := fnv.New64a()
	h.Write(sessionID[:])

	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(currentIndex))
	h.Write(idx[:])

	return int64(h.Sum64())
}
