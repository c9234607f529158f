package session

import (
	"context"
	"sync"
)

// Job is the handle of one running pipeline. The registry uses it to cancel;
// the pipeline closes it when it returns.
type Job struct {
	ID string

	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

// NewJob derives the job context from parent.
func NewJob(parent context.Context, id string) (*Job, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Job{
		ID:     id,
		cancel: cancel,
		done:   make(chan struct{}),
	}, ctx
}

// Cancel requests the job to stop. Safe to call repeatedly.
func (j *Job) Cancel() {
	j.cancel()
}

// Finish marks the job as returned and releases its context.
func (j *Job) Finish() {
	j.doneOnce.Do(func() {
		j.cancel()
		close(j.done)
	})
}

// Done is closed once the job has returned.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}
