// Package queue carries registration notifications to the worker over a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"eventhub/internal/domain"
)

const (
	// QueueRegistrations is the Redis list key for registration notification jobs.
	QueueRegistrations = "worker:registrations"
	// QueueDLQ is the dead-letter queue for jobs that exhausted their retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of attempts before a job moves to the DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay the worker waits after a failed job.
	RetryBackoff = 10 * time.Second
	// pollTimeout bounds each BLPOP so the worker notices shutdown.
	pollTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const JobTypeRegistrationReceived JobType = "registration_received"

// RegistrationPayload is the payload of a registration_received job.
type RegistrationPayload struct {
	RegistrationID string    `json:"registration_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	EventTitle     string    `json:"event_title"`
	EventDateTime  time.Time `json:"event_date_time"`
	VenueType      string    `json:"venue_type"`
	Location       string    `json:"location"`
	Price          float64   `json:"price"`
}

// EmailData converts the payload back into template data.
func (p RegistrationPayload) EmailData() *domain.RegistrationReceivedEmailData {
	return &domain.RegistrationReceivedEmailData{
		Email:          p.Email,
		Name:           p.Name,
		EventTitle:     p.EventTitle,
		EventDateTime:  p.EventDateTime,
		VenueType:      domain.VenueType(p.VenueType),
		Location:       p.Location,
		Price:          p.Price,
		RegistrationID: p.RegistrationID,
	}
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Client is the subset of *redis.Client the queue needs.
type Client interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client Client
	logger *slog.Logger
}

var _ domain.RegistrationNotifier = (*Queue)(nil)

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client Client, logger *slog.Logger) *Queue {
	return &Queue{client: client, logger: logger}
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NotifyRegistration enqueues a registration_received job.
func (q *Queue) NotifyRegistration(ctx context.Context, data *domain.RegistrationReceivedEmailData) error {
	if data == nil {
		return errors.New("registration data is nil")
	}
	body, err := json.Marshal(RegistrationPayload{
		RegistrationID: data.RegistrationID,
		Email:          data.Email,
		Name:           data.Name,
		EventTitle:     data.EventTitle,
		EventDateTime:  data.EventDateTime,
		VenueType:      string(data.VenueType),
		Location:       data.Location,
		Price:          data.Price,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.NewString(),
		Type:      JobTypeRegistrationReceived,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.push(ctx, QueueRegistrations, &job); err != nil {
		return err
	}
	q.logger.DebugContext(ctx, "enqueued registration job", "job_id", job.ID, "registration_id", data.RegistrationID)
	return nil
}

// Dequeue waits up to the poll timeout for a job. It returns (nil, nil) when
// nothing arrived or the entry could not be decoded.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, pollTimeout, QueueRegistrations).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.WarnContext(ctx, "invalid job payload", "raw", result[1], "err", err)
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with an incremented attempt, or moves it to the DLQ
// once MaxRetries is reached.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		if err := q.push(ctx, QueueDLQ, job); err != nil {
			q.logger.ErrorContext(ctx, "dlq push failed", "job_id", job.ID, "err", err)
			return err
		}
		q.logger.WarnContext(ctx, "job moved to DLQ", "job_id", job.ID, "attempt", job.Attempt)
		return nil
	}
	if err := q.push(ctx, QueueRegistrations, job); err != nil {
		return err
	}
	q.logger.InfoContext(ctx, "job retried", "job_id", job.ID, "attempt", job.Attempt)
	return nil
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}
