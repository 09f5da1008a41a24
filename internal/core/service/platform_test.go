package service

import (
	"context"
	"sync"
	"takabot/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Ack(ctx context.Context, interactionID, token string) error {
	args := m.Called(ctx, interactionID, token)
	return args.Error(0)
}

func (m *MockPlatform) CreateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	args := m.Called(ctx, it, content)
	return args.Error(0)
}

func (m *MockPlatform) UpdateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	args := m.Called(ctx, it, content)
	return args.Error(0)
}

func (m *MockPlatform) CreateFollowup(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	args := m.Called(ctx, it, content)
	return args.Error(0)
}

func (m *MockPlatform) CreateChannelMessage(ctx context.Context, channelID string, content domain.Content) error {
	args := m.Called(ctx, channelID, content)
	return args.Error(0)
}

func (m *MockPlatform) GetResponse(ctx context.Context, it *domain.Interaction) (domain.Response, error) {
	args := m.Called(ctx, it)
	resp, _ := args.Get(0).(domain.Response)
	return resp, args.Error(1)
}

func (m *MockPlatform) UpdateComponentMessage(ctx context.Context, it *domain.Interaction,
	content domain.Content) error {
	args := m.Called(ctx, it, content)
	return args.Error(0)
}

func (m *MockPlatform) SetCommands(ctx context.Context, schemas []domain.Schema) error {
	args := m.Called(ctx, schemas)
	return args.Error(0)
}

func (m *MockPlatform) GatewayLatency(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(time.Duration)
	return d, args.Error(1)
}

func (m *MockPlatform) Reply(ctx context.Context, channelID, messageID, text string) error {
	args := m.Called(ctx, channelID, messageID, text)
	return args.Error(0)
}

// fakePlatform keeps the state of a single interaction the way the platform does: only the first
// acknowledgment counts, and an edit needs an existing response.
type fakePlatform struct {
	MockPlatform

	mutex     sync.Mutex
	acked     bool
	response  *domain.Content
	ackGate   chan struct{}
	ackCalled chan struct{}
	posts     []domain.Content
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{ackCalled: make(chan struct{}, 1)}
}

func (f *fakePlatform) Ack(ctx context.Context, _, _ string) error {
	if f.ackGate != nil {
		select {
		case <-f.ackGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	defer func() { f.ackCalled <- struct{}{} }()

	if f.acked {
		return domain.ErrAlreadyAcknowledged
	}
	f.acked = true
	f.response = &domain.Content{Text: "thinking..."}

	return nil
}

func (f *fakePlatform) CreateResponse(_ context.Context, _ *domain.Interaction, content domain.Content) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.acked {
		return domain.ErrAlreadyAcknowledged
	}
	f.acked = true
	f.response = &content

	return nil
}

func (f *fakePlatform) GetResponse(_ context.Context, _ *domain.Interaction) (domain.Response, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.response == nil {
		return domain.Response{Status: 404}, domain.ErrResponseMissing
	}

	return domain.Response{MessageID: "1", Status: 200}, nil
}

func (f *fakePlatform) UpdateResponse(_ context.Context, _ *domain.Interaction, content domain.Content) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.response == nil {
		return domain.ErrResponseMissing
	}
	f.response = &content

	return nil
}

func (f *fakePlatform) CreateChannelMessage(_ context.Context, _ string, content domain.Content) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.posts = append(f.posts, content)

	return nil
}

func (f *fakePlatform) current() string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.response == nil {
		return ""
	}

	return f.response.Text
}
