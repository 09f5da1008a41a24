package handler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHandlerTimeout = 5 * time.Minute
	reportTimeout         = 15 * time.Second
)

// Dispatcher routes inbound events to their handlers. Every event is handled on its own goroutine, so a slow
// handler never holds up the event loop or other interactions.
type Dispatcher struct {
	registry    port.CommandRegistry
	dynamic     port.DynamicResolver
	components  []port.ComponentHandler
	mentions    port.MentionResponder
	acker       *service.Acker
	reporter    *service.Reporter
	maintenance *service.Maintenance
	cooldown    *service.Cooldown
	exempt      string
	timeout     time.Duration

	wg sync.WaitGroup
}

type DispatcherParams struct {
	Registry port.CommandRegistry
	// Dynamic resolves commands missing from the registry. Optional.
	Dynamic    port.DynamicResolver
	Components []port.ComponentHandler
	// Mentions answers messages addressing the bot. Optional.
	Mentions    port.MentionResponder
	Acker       *service.Acker
	Reporter    *service.Reporter
	Maintenance *service.Maintenance
	// Cooldown limits per-user command rate. Optional.
	Cooldown *service.Cooldown
	// MaintenanceExempt names the command that keeps working while maintenance is on.
	MaintenanceExempt string
	Timeout           time.Duration
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}

	maintenance := p.Maintenance
	if maintenance == nil {
		maintenance = &service.Maintenance{}
	}

	return &Dispatcher{
		registry:    p.Registry,
		dynamic:     p.Dynamic,
		components:  p.Components,
		mentions:    p.Mentions,
		acker:       p.Acker,
		reporter:    p.Reporter,
		maintenance: maintenance,
		cooldown:    p.Cooldown,
		exempt:      p.MaintenanceExempt,
		timeout:     timeout,
	}
}

// Run consumes the stream until it fails or ctx is cancelled. Handlers already running are not cancelled when
// Run returns; use Wait to drain them.
func (d *Dispatcher) Run(ctx context.Context, stream port.EventStream) error {
	base := context.WithoutCancel(ctx)

	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("event stream closed: %w", err)
		}

		d.Handle(base, event)
	}
}

// Wait blocks until all spawned handlers have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Handle starts processing one event and returns immediately.
func (d *Dispatcher) Handle(ctx context.Context, event domain.Event) {
	switch {
	case event.Interaction != nil:
		switch event.Interaction.Kind {
		case domain.KindCommand:
			d.spawn(func() { d.Dispatch(ctx, event.Shard, event.Interaction) })
		case domain.KindComponent:
			d.spawn(func() { d.dispatchComponent(ctx, event.Shard, event.Interaction) })
		default:
			log.Warn().Int("shard", event.Shard).Str("interactionId", event.Interaction.ID).
				Msg("ignoring unsupported interaction kind")
		}
	case event.Mention != nil:
		if d.mentions != nil {
			d.spawn(func() { d.dispatchMention(ctx, event.Shard, event.Mention) })
		}
	}
}

func (d *Dispatcher) spawn(f func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		f()
	}()
}

// Dispatch runs a command interaction to completion: gatekeeping, lookup, deferred acknowledgment, the handler
// itself and finally reporting its outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, shard int, it *domain.Interaction) {
	req := &domain.Request{Shard: shard, Interaction: it}
	l := log.With().
		Int("shard", shard).
		Str("interactionId", it.ID).
		Str("command", it.CommandName).
		Str("userId", it.AuthorID).
		Logger()

	l.Debug().Msg("received command")

	if it.CommandName != d.exempt && d.maintenance.Enabled() {
		l.Debug().Msg("maintenance enabled, ignoring command")
		d.report(ctx, req, domain.Fail(domain.MaintenanceNotice))
		return
	}

	if !d.cooldown.Allow(it.AuthorID) {
		l.Debug().Msg("user is rate limited")
		d.report(ctx, req, domain.Fail(domain.RateLimitedNotice))
		return
	}

	cmd, ok := d.resolve(ctx, it.CommandName, l)
	if !ok {
		l.Warn().Msg("no handler for command")
		d.report(ctx, req, domain.Fail(domain.UnhandledCommandNotice))
		return
	}

	req.Ack = d.acker.Defer(it)

	start := time.Now()
	outcome := d.run(ctx, req, l, func(ctx context.Context) domain.Outcome {
		return cmd.Respond(ctx, req)
	})

	l.Debug().Dur("took", time.Since(start)).Stringer("outcome", outcome.Kind).Msg("command finished")

	d.report(ctx, req, outcome)
}

func (d *Dispatcher) resolve(ctx context.Context, name string, l zerolog.Logger) (port.Command, bool) {
	if cmd, ok := d.registry.Get(name); ok {
		return cmd, true
	}

	if d.dynamic == nil {
		return nil, false
	}

	cmd, ok, err := d.dynamic.Resolve(ctx, name)
	if err != nil {
		l.Error().Err(err).Msg("dynamic command lookup failed, treating command as unknown")
		return nil, false
	}

	return cmd, ok
}

// run executes a handler under the handler timeout and turns a panic into a SystemFailure.
func (d *Dispatcher) run(ctx context.Context, req *domain.Request, l zerolog.Logger,
	f func(ctx context.Context) domain.Outcome) (outcome domain.Outcome) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("recovered from handler panic")
			outcome = domain.Fault(fmt.Errorf("%w: %v\n%s", domain.ErrHandlerPanic, r, debug.Stack()))
		}
	}()

	outcome = f(ctx)
	if outcome.Kind == domain.SystemFailure && errors.Is(outcome.Err, context.DeadlineExceeded) {
		l.Warn().Dur("timeout", d.timeout).Msg("command timed out")
	}

	return outcome
}

// report delivers the outcome with a fresh deadline, as the handler may have used up its own.
func (d *Dispatcher) report(ctx context.Context, req *domain.Request, outcome domain.Outcome) {
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	d.reporter.Report(ctx, req, outcome)
}

func (d *Dispatcher) dispatchComponent(ctx context.Context, shard int, it *domain.Interaction) {
	req := &domain.Request{Shard: shard, Interaction: it}
	l := log.With().
		Int("shard", shard).
		Str("interactionId", it.ID).
		Str("customId", it.CustomID).
		Logger()

	for _, h := range d.components {
		if !strings.HasPrefix(it.CustomID, h.Prefix()) {
			continue
		}

		outcome := d.run(ctx, req, l, func(ctx context.Context) domain.Outcome {
			return h.HandleComponent(ctx, req)
		})
		d.report(ctx, req, outcome)

		return
	}

	l.Debug().Msg("no handler for component, ignoring")
}

func (d *Dispatcher) dispatchMention(ctx context.Context, shard int, mention *domain.Mention) {
	l := log.With().
		Int("shard", shard).
		Str("messageId", mention.MessageID).
		Str("channelId", mention.ChannelID).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("recovered from mention panic")
		}
	}()

	err := d.mentions.RespondToMention(ctx, mention)
	if err != nil {
		l.Error().Err(err).Msg("failed to respond to mention")
	}
}
