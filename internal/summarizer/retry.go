package summarizer

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits attempt × step after the attempt-th failure.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
