package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glosslab/gloss/internal/events"
)

// Feedback closes the loop on a record: the client reports whether the
// annotation helped, keyed by the id returned at creation.
type Feedback struct {
	store  RecordStore
	bus    Bus
	logger *slog.Logger
}

func NewFeedback(st RecordStore, bus Bus, logger *slog.Logger) *Feedback {
	return &Feedback{store: st, bus: bus, logger: logger}
}

// SubmitResult records a correctness judgment. The write is last-write-wins:
// a record can be re-judged, and the store enforces no transition guard.
func (f *Feedback) SubmitResult(ctx context.Context, id int64, result bool) error {
	if err := f.store.UpdateResult(ctx, id, result); err != nil {
		return fmt.Errorf("submit result: %w", err)
	}

	f.logger.Info("record judged", "record_id", id, "result", result)

	if f.bus != nil {
		evt := events.Judged{
			EventID:  uuid.NewString(),
			RecordID: id,
			Result:   result,
			JudgedAt: events.Timestamp(time.Now()),
		}
		if err := f.bus.Publish(events.SubjectJudged, evt); err != nil {
			f.logger.Warn("failed to publish judged event", "record_id", id, "error", err)
		}
	}

	return nil
}
