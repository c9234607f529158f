package transcriber

import "context"

// Pool bounds how many ffmpeg processes run at once across all jobs.
type Pool struct {
	ch chan struct{}
}

// NewPool creates a pool with the given capacity (at least 1).
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pool{
		ch: make(chan struct{}, capacity),
	}
}

// acquire acquires a slot, blocking until one frees up or ctx ends.
func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release releases a slot
func (p *Pool) release() {
	<-p.ch
}
