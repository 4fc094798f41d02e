package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskUserRegistered is emitted once per successful registration.
	TaskUserRegistered = "user:registered"
)

// UserRegisteredPayload describes a newly registered account. The hashed
// credential is never part of the payload.
type UserRegisteredPayload struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewUserRegisteredTask constructs an Asynq task.
func NewUserRegisteredTask(payload UserRegisteredPayload) (*asynq.Task, error) {
	if payload.UserID == "" {
		return nil, errors.New("jobs: user registered task requires a user id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserRegistered, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// Notifier delivers the welcome notification for a new account.
type Notifier interface {
	Welcome(ctx context.Context, payload UserRegisteredPayload) error
}

// JobRecorder counts processed tasks.
type JobRecorder interface {
	JobProcessed(task string, err error)
}

// LogNotifier writes welcome notifications to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

// Welcome logs the notification.
func (n LogNotifier) Welcome(_ context.Context, payload UserRegisteredPayload) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("welcome notification",
		slog.String("user_id", payload.UserID),
		slog.String("email", payload.Email),
	)
	return nil
}

// UserRegisteredJob handles TaskUserRegistered tasks.
type UserRegisteredJob struct {
	notifier Notifier
	logger   *slog.Logger
	recorder JobRecorder
}

// NewUserRegisteredJob initialises the handler.
func NewUserRegisteredJob(notifier Notifier, logger *slog.Logger, recorder JobRecorder) *UserRegisteredJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRegisteredJob{notifier: notifier, logger: logger, recorder: recorder}
}

// Handle processes a single task. Undecodable payloads are not retried.
func (j *UserRegisteredJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.notifier == nil {
		return errors.New("user registered: handler not configured")
	}
	defer func() {
		if j.recorder != nil {
			j.recorder.JobProcessed(TaskUserRegistered, err)
		}
	}()

	var payload UserRegisteredPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Warn("user registered: decode payload", slog.Any("error", err))
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}
	if payload.UserID == "" {
		return fmt.Errorf("missing user id: %w", asynq.SkipRetry)
	}
	if err := j.notifier.Welcome(ctx, payload); err != nil {
		return fmt.Errorf("user registered: notify %s: %w", payload.UserID, err)
	}
	return nil
}
