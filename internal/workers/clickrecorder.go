package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/queue"
)

// ClickStore is the subset of storage the recorder needs.
type ClickStore interface {
	Insert(ctx context.Context, click *models.LinkClick) error
}

// ClickRecorder consumes click events and persists them as click records.
// The redirect path increments the link counter synchronously; this worker
// only fills in the per-click history.
type ClickRecorder struct {
	clickRepo ClickStore
	logger    *zap.Logger
}

// NewClickRecorder creates a new click recorder
func NewClickRecorder(clickRepo ClickStore, logger *zap.Logger) *ClickRecorder {
	return &ClickRecorder{
		clickRepo: clickRepo,
		logger:    logger,
	}
}

// ProcessEvent persists one click event
func (r *ClickRecorder) ProcessEvent(ctx context.Context, event *queue.ClickEvent) error {
	click := &models.LinkClick{
		ID:        event.ID,
		LinkID:    event.LinkID,
		ClickedAt: event.ClickedAt,
		Referrer:  event.Referrer,
		UserAgent: event.UserAgent,
	}

	if err := r.clickRepo.Insert(ctx, click); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	r.logger.Debug("click_recorded",
		zap.String("link_id", event.LinkID.String()),
		zap.Time("clicked_at", event.ClickedAt),
	)

	return nil
}

// requeueOnFailure reports whether a failed event goes back on the
// queue. A first failure retries; a redelivered message dead-letters so
// a down store cannot spin events between queue and consumer forever.
func requeueOnFailure(msg *queue.Message) bool {
	return !msg.Redelivered
}

// Run consumes the click event stream until ctx is cancelled. Events that
// fail to persist are requeued; a second failure dead-letters them.
func (r *ClickRecorder) Run(ctx context.Context, q queue.EventQueue, prefetch int) error {
	msgs, errs, err := q.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			r.logger.Warn("click_stream_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := r.ProcessEvent(ctx, msg.GetEvent()); err != nil {
				r.logger.Error("click_record_failed",
					zap.Error(err),
					zap.Bool("redelivered", msg.Redelivered),
				)
				_ = msg.Nack(requeueOnFailure(msg))
				continue
			}
			if err := msg.Ack(); err != nil {
				r.logger.Warn("click_ack_failed", zap.Error(err))
			}
		}
	}
}
