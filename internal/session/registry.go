package session

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/logger"
	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

// ErrSessionExists is returned when a client id is already connected.
var ErrSessionExists = errors.New("session already connected")

// ErrSessionNotFound is returned when registering a job on a closed session.
var ErrSessionNotFound = errors.New("session not found")

// ErrJobActive is returned when a session already owns a running job.
var ErrJobActive = errors.New("job already running for session")

type entry struct {
	channel Channel
	job     *Job
}

// Registry maps connected sessions to their channel and owned job. It is the
// only place that decides when a job is cancelled.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	logger   logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		logger:   log,
	}
}

// Connect registers an accepted channel under id.
func (r *Registry) Connect(id string, ch Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return ErrSessionExists
	}
	r.sessions[id] = &entry{channel: ch}
	r.logger.Info(context.Background(), "Client %s connected", id)
	return nil
}

// Disconnect cancels the owned job, forgets the session and closes its
// channel. Calling it for an unknown id is a no-op.
func (r *Registry) Disconnect(id string) {
	r.remove(id, func(*entry) bool { return true })
}

// DisconnectChannel is Disconnect for the transport: it only acts while ch is
// still the channel registered under id.
func (r *Registry) DisconnectChannel(id string, ch Channel) {
	r.remove(id, func(e *entry) bool { return e.channel == ch })
}

// Release tears the session down on behalf of job. It does nothing when the
// session is gone or now belongs to another job, so a job that outlives a
// reconnect never closes the new connection.
func (r *Registry) Release(id string, job *Job) {
	r.remove(id, func(e *entry) bool { return e.job == job })
}

func (r *Registry) remove(id string, owns func(*entry) bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && !owns(e) {
		ok = false
	}
	if ok {
		// Cancel before the entry disappears so a late publish sees ctx.Err.
		if e.job != nil {
			e.job.Cancel()
		}
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := e.channel.Close(); err != nil {
		r.logger.Debug(context.Background(), "Closing channel for %s: %v", id, err)
	}
	r.logger.Info(context.Background(), "Client %s disconnected", id)
}

// RegisterJob attaches job to the session. A session owns at most one live job.
func (r *Registry) RegisterJob(id string, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if e.job != nil && !e.job.finished() {
		return ErrJobActive
	}
	e.job = job
	return nil
}

// ActiveJob returns the live job of the session, or nil.
func (r *Registry) ActiveJob(id string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || e.job == nil || e.job.finished() {
		return nil
	}
	return e.job
}

// Publish forwards event to the session channel. Events for sessions that are
// gone are dropped, and so are send failures.
func (r *Registry) Publish(ctx context.Context, id string, event models.StatusEvent) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := e.channel.Send(ctx, event); err != nil {
		r.logger.Debug(ctx, "Dropping %s event for %s: %v", event.Type, id, err)
	}
}

// Len reports the number of connected sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
