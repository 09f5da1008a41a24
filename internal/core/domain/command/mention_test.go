package command

import (
	"errors"
	"strings"
	"takabot/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMention(channels ...string) (*Mention, *MockGenerator, *MockPlatform) {
	gen := new(MockGenerator)
	mp := new(MockPlatform)

	return NewMention(MentionParams{Generator: gen, Replier: mp, Channels: channels}), gen, mp
}

func TestMention_RespondToMention(t *testing.T) {
	m, gen, mp := newMention()

	gen.On("GenerateFromPrompt", mock.Anything, []domain.Prompt{
		{Author: domain.User, Prompt: "You are currently talking to alice. Answer this message: hi bot"},
	}).Return(domain.ModelResponse{Response: "hello alice"}, nil).Once()
	mp.On("Reply", mock.Anything, "20", "30", "hello alice").Return(nil).Once()

	err := m.RespondToMention(t.Context(), &domain.Mention{
		MessageID:  "30",
		ChannelID:  "20",
		AuthorID:   "1",
		AuthorName: "alice",
		Text:       "hi bot",
	})
	require.NoError(t, err)

	gen.AssertExpectations(t)
	mp.AssertExpectations(t)
}

func TestMention_KeepsConversationPerChannel(t *testing.T) {
	m, gen, mp := newMention()

	gen.On("GenerateFromPrompt", mock.Anything, mock.Anything).
		Return(domain.ModelResponse{Response: "sure"}, nil).Twice()
	mp.On("Reply", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mention := &domain.Mention{MessageID: "30", ChannelID: "20", AuthorName: "alice", Text: "first"}
	require.NoError(t, m.RespondToMention(t.Context(), mention))

	mention.Text = "second"
	require.NoError(t, m.RespondToMention(t.Context(), mention))

	history := gen.Calls[1].Arguments.Get(1).([]domain.Prompt)
	require.Len(t, history, 3)
	assert.Equal(t, domain.System, history[1].Author)
	assert.Equal(t, "sure", history[1].Prompt)
	assert.Contains(t, history[2].Prompt, "second")
}

func TestMention_ConversationExpires(t *testing.T) {
	m, _, _ := newMention()
	m.ttl = time.Millisecond

	m.append("20", domain.Prompt{Author: domain.User, Prompt: "old"})
	time.Sleep(5 * time.Millisecond)

	history := m.append("20", domain.Prompt{Author: domain.User, Prompt: "new"})
	require.Len(t, history, 1)
	assert.Equal(t, "new", history[0].Prompt)
}

func TestMention_ConversationIsCapped(t *testing.T) {
	m, _, _ := newMention()

	var history []domain.Prompt
	for range maxConversationLength + 5 {
		history = m.append("20", domain.Prompt{Author: domain.User, Prompt: "x"})
	}

	assert.Len(t, history, maxConversationLength)
}

func TestMention_IgnoresOtherChannels(t *testing.T) {
	m, gen, mp := newMention("50")

	err := m.RespondToMention(t.Context(), &domain.Mention{ChannelID: "20", Text: "hi"})
	require.NoError(t, err)

	gen.AssertNotCalled(t, "GenerateFromPrompt", mock.Anything, mock.Anything)
	mp.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMention_TruncatesLongReplies(t *testing.T) {
	m, gen, mp := newMention()

	gen.On("GenerateFromPrompt", mock.Anything, mock.Anything).
		Return(domain.ModelResponse{Response: strings.Repeat("a", 3000)}, nil).Once()
	mp.On("Reply", mock.Anything, "20", "30", mock.MatchedBy(func(text string) bool {
		return len([]rune(text)) == maxMessageLength
	})).Return(nil).Once()

	require.NoError(t, m.RespondToMention(t.Context(), &domain.Mention{MessageID: "30", ChannelID: "20",
		Text: "talk a lot"}))
	mp.AssertExpectations(t)
}

func TestMention_GeneratorFailure(t *testing.T) {
	m, gen, mp := newMention()

	gen.On("GenerateFromPrompt", mock.Anything, mock.Anything).
		Return(domain.ModelResponse{}, errors.New("quota exceeded")).Once()

	err := m.RespondToMention(t.Context(), &domain.Mention{MessageID: "30", ChannelID: "20", Text: "hi"})
	require.ErrorContains(t, err, "quota exceeded")
	mp.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
