package email

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	pkgemail "github.com/teomanager/teomanager-backend/pkg/email"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/metrics"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

const (
	defaultBatchSize   = 50
	defaultPollEvery   = 5 * time.Second
	defaultMaxAttempts = 8
	baseRetryDelay     = 30 * time.Second
	maxRetryDelay      = time.Hour
	maxLoopBackoff     = time.Minute
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WorkerParams groups dependencies for the outbox drain worker.
type WorkerParams struct {
	DB       txRunner
	Outbox   *outbox.Repository
	DLQ      *outbox.DLQRepository
	Sender   pkgemail.Sender
	Renderer *Renderer
	Config   config.OutboxConfig
	Metrics  *metrics.OutboxMetrics
	Logger   *logger.Logger
}

// Worker drains the email outbox: renders due rows, hands them to the
// sender and reschedules or parks the failures.
type Worker struct {
	db           txRunner
	outbox       *outbox.Repository
	dlq          *outbox.DLQRepository
	sender       pkgemail.Sender
	renderer     *Renderer
	metrics      *metrics.OutboxMetrics
	logg         *logger.Logger
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewWorker(params WorkerParams) (*Worker, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox repository required")
	}
	if params.DLQ == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dlq repository required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email sender required")
	}
	if params.Renderer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "renderer required")
	}

	batch := params.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxAttempts := params.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	poll := params.Config.PollInterval
	if poll <= 0 {
		poll = defaultPollEvery
	}

	return &Worker{
		db:           params.DB,
		outbox:       params.Outbox,
		dlq:          params.DLQ,
		sender:       params.Sender,
		renderer:     params.Renderer,
		metrics:      params.Metrics,
		logg:         params.Logger,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: poll,
	}, nil
}

// Run drains the outbox until the context is canceled. Batch errors back
// off exponentially instead of crashing the worker.
func (w *Worker) Run(ctx context.Context) error {
	backoff := w.pollInterval
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		processed, err := w.DrainOnce(ctx)
		if err != nil {
			if w.logg != nil {
				w.logg.Error(ctx, "outbox batch failed", err)
			}
			backoff = nextBackoff(backoff, w.pollInterval)
			if err := sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = w.pollInterval
		if processed > 0 {
			continue
		}
		if err := sleep(ctx, withJitter(w.pollInterval)); err != nil {
			return err
		}
	}
}

// DrainOnce processes a single batch of due rows and reports how many it
// handled.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	now := time.Now()
	rows, err := w.outbox.FetchDue(ctx, now, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch due emails: %w", err)
	}
	for _, row := range rows {
		if err := w.deliver(ctx, row, now); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// deliver handles one row. Send failures reschedule or park the row; only
// bookkeeping errors propagate and abort the batch.
func (w *Worker) deliver(ctx context.Context, row models.EmailOutbox, now time.Time) error {
	msg, err := w.renderer.Render(row)
	if err != nil {
		return w.park(ctx, row, enums.DLQReasonInvalidPayload, err)
	}

	if sendErr := w.sender.Send(ctx, msg); sendErr != nil {
		attempt := row.AttemptCount + 1
		if attempt >= w.maxAttempts {
			return w.park(ctx, row, enums.DLQReasonMaxAttemptsExceeded,
				fmt.Errorf("max delivery attempts reached: %w", sendErr))
		}
		if err := w.outbox.MarkRetry(ctx, row.ID, now.Add(retryDelay(attempt)), sendErr); err != nil {
			return fmt.Errorf("mark retry %s: %w", row.ID, err)
		}
		w.metrics.IncRetried(row.Kind.String())
		if w.logg != nil {
			fields := map[string]any{
				"outbox_id":  row.ID.String(),
				"email_kind": row.Kind.String(),
				"attempt":    attempt,
				"error":      sendErr.Error(),
			}
			w.logg.Warn(w.logg.WithFields(ctx, fields), "email delivery failed, rescheduled")
		}
		return nil
	}

	if err := w.outbox.MarkSent(ctx, row.ID, time.Now()); err != nil {
		return fmt.Errorf("mark sent %s: %w", row.ID, err)
	}
	w.metrics.IncSent(row.Kind.String())
	return nil
}

// park flips the row to failed and records the DLQ entry in one
// transaction.
func (w *Worker) park(ctx context.Context, row models.EmailOutbox, reason enums.DLQErrorReason, cause error) error {
	err := w.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := w.outbox.MarkFailed(tx, row.ID, cause); err != nil {
			return fmt.Errorf("mark failed %s: %w", row.ID, err)
		}
		message := cause.Error()
		return w.dlq.InsertTx(tx, models.EmailOutboxDLQ{
			OutboxID:     row.ID,
			Kind:         row.Kind,
			Recipient:    row.Recipient,
			Payload:      row.Payload,
			ErrorReason:  reason,
			ErrorMessage: &message,
			AttemptCount: row.AttemptCount + 1,
		})
	})
	if err != nil {
		return err
	}
	w.metrics.IncParked()
	if w.logg != nil {
		fields := map[string]any{
			"outbox_id":  row.ID.String(),
			"email_kind": row.Kind.String(),
			"reason":     string(reason),
			"error":      cause.Error(),
		}
		w.logg.Warn(w.logg.WithFields(ctx, fields), "email parked in dead letter queue")
	}
	return nil
}

// retryDelay doubles per attempt starting at baseRetryDelay, capped at
// maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	delay := baseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func nextBackoff(current, base time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > maxLoopBackoff {
		return maxLoopBackoff
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
