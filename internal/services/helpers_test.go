package services

import (
	"context"
	"errors"
	"sync"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/notify"
)

// recordingQueue captures enqueued jobs instead of delivering them.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []notify.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job notify.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) kinds() []notify.Kind {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notify.Kind, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Kind)
	}
	return out
}

var _ notify.Queue = (*recordingQueue)(nil)

func ptr[T any](v T) *T { return &v }

func detailsOf(err error) []apperrors.FieldError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
