package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"takabot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Next once the multiplexer has been closed.
var ErrClosed = errors.New("multiplexer closed")

const eventBuffer = 256

// DefaultIntents covers interactions plus the guild and direct messages needed for mention replies.
const DefaultIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Shard is one gateway connection. *discordgo.Session satisfies it.
type Shard interface {
	AddHandler(handler any) func()
	Open() error
	Close() error
}

// Multiplexer merges the events of all shards into a single stream.
type Multiplexer struct {
	shards []Shard
	events chan domain.Event
	fatal  chan error
	done   chan struct{}
	botID  atomic.Pointer[string]

	// reconnectTimeout is how long a disconnected shard gets to come back before it is fatal. Zero waits forever.
	reconnectTimeout time.Duration
	running          atomic.Bool
	timerMutex       sync.Mutex
	timers           map[int]*time.Timer

	closeOnce sync.Once
	removers  []func()
}

// NewMultiplexer merges the given shards. discordgo reconnects dropped shards by itself, but it keeps retrying
// on close codes that can never succeed (for example 4004, authentication failed), so a shard that has not sent
// Ready or Resumed within reconnectTimeout of a disconnect is reported as fatal by Next.
func NewMultiplexer(shards []Shard, reconnectTimeout time.Duration) *Multiplexer {
	return &Multiplexer{
		shards:           shards,
		events:           make(chan domain.Event, eventBuffer),
		fatal:            make(chan error, len(shards)),
		done:             make(chan struct{}),
		reconnectTimeout: reconnectTimeout,
		timers:           make(map[int]*time.Timer),
	}
}

// OpenShards asks the gateway for the recommended shard count and prepares one session per shard. The returned
// REST session is not connected to the gateway.
func OpenShards(token string, intents discordgo.Intent) (*discordgo.Session, []Shard, error) {
	rest, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	info, err := rest.GatewayBot()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gateway info: %w", err)
	}

	count := max(info.Shards, 1)
	log.Info().Int("shards", count).Msg("got number of shards required")

	shards := make([]Shard, count)
	for i := range count {
		s, err := discordgo.New("Bot " + token)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create shard %d: %w", i, err)
		}

		s.ShardID = i
		s.ShardCount = count
		s.Identify.Intents = intents
		shards[i] = s
	}

	return rest, shards, nil
}

// Open registers the event handlers and connects every shard. Failing to connect any shard is fatal and closes
// the shards already connected.
func (m *Multiplexer) Open(ctx context.Context) error {
	for i, shard := range m.shards {
		m.register(i, shard)
	}

	for i, shard := range m.shards {
		if err := ctx.Err(); err != nil {
			m.closeShards(i)
			return err
		}

		if err := shard.Open(); err != nil {
			m.closeShards(i)
			err = fmt.Errorf("%w: shard %d: %w", domain.ErrShardFatal, i, err)
			m.fail(err)
			return err
		}

		log.Info().Int("shard", i).Msg("shard connected")
	}

	m.running.Store(true)

	return nil
}

// Next blocks until an event from any shard arrives.
func (m *Multiplexer) Next(ctx context.Context) (domain.Event, error) {
	select {
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	case err := <-m.fatal:
		return domain.Event{}, err
	case event := <-m.events:
		return event, nil
	case <-m.done:
		return domain.Event{}, ErrClosed
	}
}

// Close disconnects all shards. Events still buffered are dropped.
func (m *Multiplexer) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.running.Store(false)
		close(m.done)
		m.stopTimers()
		for _, remove := range m.removers {
			remove()
		}
		err = m.closeShards(len(m.shards))
	})

	return err
}

func (m *Multiplexer) closeShards(n int) error {
	var errs []error
	for i := range n {
		if err := m.shards[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("shard %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (m *Multiplexer) register(shard int, s Shard) {
	l := log.With().Int("shard", shard).Logger()

	m.removers = append(m.removers,
		s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			if r.User != nil {
				id := r.User.ID
				m.botID.Store(&id)
			}
			m.reconnected(shard)
			l.Info().Str("sessionId", r.SessionID).Msg("shard ready")
		}),
		s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
			l.Warn().Msg("shard disconnected")
			m.disconnected(shard)
		}),
		s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
			m.reconnected(shard)
			l.Info().Msg("shard resumed")
		}),
		s.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
			m.onInteraction(shard, i, l)
		}),
		s.AddHandler(func(_ *discordgo.Session, msg *discordgo.MessageCreate) {
			m.onMessage(shard, msg)
		}),
	)
}

func (m *Multiplexer) onInteraction(shard int, i *discordgo.InteractionCreate, l zerolog.Logger) {
	if i == nil {
		return
	}

	it, err := toInteraction(i.Interaction)
	if err != nil {
		l.Debug().Err(err).Msg("skipping interaction")
		return
	}

	m.emit(domain.Event{Shard: shard, Interaction: it})
}

func (m *Multiplexer) onMessage(shard int, msg *discordgo.MessageCreate) {
	if msg == nil {
		return
	}

	botID := m.botID.Load()
	if botID == nil {
		return
	}

	mention, ok := toMention(msg.Message, *botID)
	if !ok {
		return
	}

	m.emit(domain.Event{Shard: shard, Mention: mention})
}

// emit forwards a converted event exactly once, or drops it when the multiplexer is closed.
func (m *Multiplexer) emit(event domain.Event) {
	select {
	case m.events <- event:
	case <-m.done:
	}
}

// disconnected starts the reconnect deadline of a shard. Disconnects during Open and Close are expected.
func (m *Multiplexer) disconnected(shard int) {
	if m.reconnectTimeout <= 0 || !m.running.Load() {
		return
	}

	m.timerMutex.Lock()
	defer m.timerMutex.Unlock()

	if _, ok := m.timers[shard]; ok {
		return
	}

	m.timers[shard] = time.AfterFunc(m.reconnectTimeout, func() {
		if !m.running.Load() {
			return
		}

		log.Error().Int("shard", shard).Dur("timeout", m.reconnectTimeout).Msg("shard did not reconnect")
		m.fail(fmt.Errorf("%w: shard %d did not reconnect within %s", domain.ErrShardFatal, shard,
			m.reconnectTimeout))
	})
}

func (m *Multiplexer) reconnected(shard int) {
	m.timerMutex.Lock()
	defer m.timerMutex.Unlock()

	if timer, ok := m.timers[shard]; ok {
		timer.Stop()
		delete(m.timers, shard)
	}
}

func (m *Multiplexer) stopTimers() {
	m.timerMutex.Lock()
	defer m.timerMutex.Unlock()

	for shard, timer := range m.timers {
		timer.Stop()
		delete(m.timers, shard)
	}
}

func (m *Multiplexer) fail(err error) {
	select {
	case m.fatal <- err:
	default:
	}
}
