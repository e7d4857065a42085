package cat

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quizmith/adapt-api/internal/domain"
)

// Rotation tracks which questions a session has already been shown and
// filters band pools down to unseen candidates. The seen-set is rebuilt
// from the session's persisted trace and pool-reset audit log, so a tracker
// constructed after a crash is identical to the one before it.
type Rotation struct {
	session *domain.AssessmentSession
	asked   map[domain.Tier]map[uuid.UUID]bool
	logger  *slog.Logger
}

// NewRotation builds a rotation tracker for the given session.
// If logger is nil, a default logger will be used.
func NewRotation(session *domain.AssessmentSession, logger *slog.Logger) *Rotation {
	if session == nil {
		panic("session cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Rotation{
		session: session,
		asked:   make(map[domain.Tier]map[uuid.UUID]bool),
		logger:  logger.With(slog.String("component", "rotation_tracker")),
	}
	r.rebuild()
	return r
}

// rebuild derives the per-band seen-sets from the trace, ignoring answers
// recorded before the band's most recent pool reset.
func (r *Rotation) rebuild() {
	for _, band := range domain.Tiers() {
		r.asked[band] = make(map[uuid.UUID]bool)
	}

	for _, rec := range r.session.AnswerTrace {
		if rec.SequenceIndex < r.session.LastPoolResetIndex(rec.Tier) {
			continue
		}
		r.MarkAsked(rec.Tier, rec.QuestionID)
	}
}

// MarkAsked records that a question was shown to the session.
func (r *Rotation) MarkAsked(band domain.Tier, questionID uuid.UUID) {
	if r.asked[band] == nil {
		r.asked[band] = make(map[uuid.UUID]bool)
	}
	r.asked[band][questionID] = true
}

// Available filters the band pool down to questions not yet shown in this
// session. If the whole band has been shown and the pool itself is
// non-empty, the band's seen-set is cleared, a pool-reset event is appended
// to the session's audit log, and the full band pool is returned. Available
// therefore never returns an empty slice for a non-empty pool.
func (r *Rotation) Available(band domain.Tier, pool []domain.Question) []domain.Question {
	if len(pool) == 0 {
		return nil
	}

	unseen := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if !r.asked[band][q.ID] {
			unseen = append(unseen, q)
		}
	}

	if len(unseen) > 0 {
		return unseen
	}

	// Pool exhausted for this band: self-heal by clearing the seen-set.
	// The reset is audited, never silent; a repeated question ID in the
	// trace is legal only behind one of these events.
	r.session.RecordPoolReset(band, time.Now().UTC())
	r.asked[band] = make(map[uuid.UUID]bool)

	r.logger.Info("question pool exhausted for band, resetting rotation",
		slog.String("session_id", r.session.ID.String()),
		slog.String("band", string(band)),
		slog.Int("at_index", r.session.CurrentIndex),
		slog.Int("pool_size", len(pool)))

	return append([]domain.Question(nil), pool...)
}
