// Package worker delivers queued registration notifications.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/adapters/queue"
	"eventhub/internal/domain"
)

// JobSource is the queue side the worker consumes.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// NotificationProcessor turns registration jobs into emails.
type NotificationProcessor struct {
	source       JobSource
	emailService domain.EmailService
	logger       *slog.Logger
	backoff      time.Duration
}

// NewNotificationProcessor creates a notification processor.
func NewNotificationProcessor(source JobSource, emailService domain.EmailService, logger *slog.Logger) *NotificationProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationProcessor{
		source:       source,
		emailService: emailService,
		logger:       logger,
		backoff:      queue.RetryBackoff,
	}
}

// Process executes one job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRegistrationReceived {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.RegistrationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("registration %s: missing recipient", payload.RegistrationID)
	}
	if err := p.emailService.SendRegistrationReceived(ctx, payload.EmailData()); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "registration notification delivered", "job_id", job.ID, "registration_id", payload.RegistrationID)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns
// when ctx is cancelled.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.source.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", "err", err)
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", "job_id", job.ID, "type", string(job.Type), "attempt", job.Attempt)
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", "job_id", job.ID, "err", err)
			// A job failing because of shutdown must still be re-queued.
			if reErr := p.source.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", "job_id", job.ID, "err", reErr)
			}
			p.sleep(ctx)
		}
	}
}

func (p *NotificationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
