package command

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultConversationTTL = 30 * time.Minute
	maxConversationLength  = 20
	mentionPromptTemplate  = "You are currently talking to %s. Answer this message: %s"
)

// Mention answers messages that address the bot with a generated reply. Each channel keeps a short
// conversation history that expires after a period of silence.
type Mention struct {
	generator port.TextGenerator
	replier   Replier
	channels  []string
	ttl       time.Duration

	mutex         sync.Mutex
	conversations map[string]*conversation
	l             *zerolog.Logger
}

// Replier posts a message as a reply to another one.
type Replier interface {
	Reply(ctx context.Context, channelID, messageID, text string) error
}

type conversation struct {
	updated  time.Time
	messages []domain.Prompt
}

type MentionParams struct {
	Generator port.TextGenerator
	Replier   Replier
	// Channels restricts replies to these channel IDs. Empty means everywhere.
	Channels        []string
	ConversationTTL time.Duration
}

func NewMention(p MentionParams) *Mention {
	logger := log.With().Str("handler", "mention").Logger()

	ttl := p.ConversationTTL
	if ttl <= 0 {
		ttl = defaultConversationTTL
	}

	return &Mention{
		generator:     p.Generator,
		replier:       p.Replier,
		channels:      p.Channels,
		ttl:           ttl,
		conversations: make(map[string]*conversation),
		l:             &logger,
	}
}

func (m *Mention) RespondToMention(ctx context.Context, mention *domain.Mention) error {
	l := m.l.With().
		Str("messageId", mention.MessageID).
		Str("channelId", mention.ChannelID).
		Str("userId", mention.AuthorID).
		Logger()

	if len(m.channels) > 0 && !slices.Contains(m.channels, mention.ChannelID) {
		l.Debug().Msg("mention outside of configured channels, ignoring")
		return nil
	}

	if mention.Text == "" {
		l.Debug().Msg("empty mention, ignoring")
		return nil
	}

	prompt := domain.Prompt{
		Author: domain.User,
		Prompt: fmt.Sprintf(mentionPromptTemplate, mention.AuthorName, mention.Text),
	}

	history := m.append(mention.ChannelID, prompt)

	l.Debug().Int("history", len(history)).Msg("generating reply")

	response, err := m.generator.GenerateFromPrompt(ctx, history)
	if err != nil {
		return fmt.Errorf("failed to generate response: %w", err)
	}

	m.append(mention.ChannelID, domain.Prompt{Author: domain.System, Prompt: response.Response})

	l.Debug().
		Str("model", response.Metadata.Model).
		Int("totalTokens", response.Metadata.TotalTokens).
		Msg("generated reply")

	err = m.replier.Reply(ctx, mention.ChannelID, mention.MessageID, truncate(response.Response, maxMessageLength))
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// append adds a prompt to the channel's conversation and returns a copy of the history.
func (m *Mention) append(channelID string, prompt domain.Prompt) []domain.Prompt {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	m.evict(now)

	conv, ok := m.conversations[channelID]
	if !ok {
		conv = &conversation{}
		m.conversations[channelID] = conv
	}

	conv.updated = now
	conv.messages = append(conv.messages, prompt)
	if len(conv.messages) > maxConversationLength {
		conv.messages = conv.messages[len(conv.messages)-maxConversationLength:]
	}

	return slices.Clone(conv.messages)
}

func (m *Mention) evict(now time.Time) {
	for id, conv := range m.conversations {
		if now.Sub(conv.updated) > m.ttl {
			m.l.Trace().Str("channelId", id).Msg("clearing conversation")
			delete(m.conversations, id)
		}
	}
}
