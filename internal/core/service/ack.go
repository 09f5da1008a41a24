package service

import (
	"context"
	"errors"
	"sync/atomic"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultAckTimeout bounds a single deferred acknowledgment request. The platform invalidates interactions that
// are not acknowledged within about three seconds, so waiting longer is pointless.
const DefaultAckTimeout = 3 * time.Second

// Acker races a deferred acknowledgment against slow handlers.
type Acker struct {
	acker   port.InteractionAcker
	timeout time.Duration
}

func NewAcker(acker port.InteractionAcker, timeout time.Duration) *Acker {
	if timeout <= 0 {
		timeout = DefaultAckTimeout
	}

	return &Acker{acker: acker, timeout: timeout}
}

// Defer starts the acknowledgment of it in an unsupervised goroutine and returns at once. Its result is only
// logged and recorded on the returned handle; the delivery path must never wait for it unless a handler
// explicitly calls Wait.
func (a *Acker) Defer(it *domain.Interaction) *PendingAck {
	p := NewPendingAck()
	if !p.transition(domain.AckUnacked, domain.AckInFlight) {
		return p
	}

	go a.run(p, it.ID, it.Token)

	return p
}

func (a *Acker) run(p *PendingAck, id, token string) {
	l := log.With().Str("interactionId", id).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	start := time.Now()
	err := a.acker.Ack(ctx, id, token)

	switch {
	case err == nil:
		l.Debug().Dur("took", time.Since(start)).Msg("deferred acknowledgment landed")
		p.finish(domain.AckAcked, nil)
	case errors.Is(err, domain.ErrAlreadyAcknowledged):
		l.Debug().Msg("interaction answered before deferred acknowledgment, ignoring")
		p.finish(domain.AckAcked, nil)
	default:
		l.Warn().Err(err).Dur("took", time.Since(start)).Msg("deferred acknowledgment failed")
		p.finish(domain.AckFailed, err)
	}
}

// PendingAck tracks one interaction's acknowledgment through Unacked, InFlight and then Acked or Failed.
// Exactly one terminal transition happens.
type PendingAck struct {
	state atomic.Int32
	done  chan struct{}
	err   error
}

func NewPendingAck() *PendingAck {
	return &PendingAck{done: make(chan struct{})}
}

func (p *PendingAck) State() domain.AckState {
	return domain.AckState(p.state.Load())
}

// Err returns why the acknowledgment failed. It is only meaningful once State is terminal.
func (p *PendingAck) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the acknowledgment is terminal and returns its failure, if any. It returns immediately when
// no acknowledgment was ever started.
func (p *PendingAck) Wait(ctx context.Context) error {
	if p.State() == domain.AckUnacked {
		return nil
	}

	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PendingAck) transition(from, to domain.AckState) bool {
	return p.state.CompareAndSwap(int32(from), int32(to))
}

func (p *PendingAck) finish(to domain.AckState, err error) {
	if !to.Terminal() || !p.transition(domain.AckInFlight, to) {
		return
	}

	p.err = err
	close(p.done)
}
