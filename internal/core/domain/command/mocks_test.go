package command

import (
	"context"
	"takabot/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Deliver(ctx context.Context, req *domain.Request, content domain.Content) (
	domain.DeliveryPath, error) {
	args := m.Called(ctx, req, content)
	return args.Get(0).(domain.DeliveryPath), args.Error(1)
}

func (m *MockResponder) Followup(ctx context.Context, req *domain.Request, content domain.Content) (
	domain.DeliveryPath, error) {
	args := m.Called(ctx, req, content)
	return args.Get(0).(domain.DeliveryPath), args.Error(1)
}

// delivered returns the content of every Deliver call in order.
func (m *MockResponder) delivered() []domain.Content {
	var contents []domain.Content
	for _, call := range m.Calls {
		if call.Method == "Deliver" {
			contents = append(contents, call.Arguments.Get(2).(domain.Content))
		}
	}
	return contents
}

func newDeliveringResponder() *MockResponder {
	mr := new(MockResponder)
	mr.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(domain.PathInitial, nil)
	return mr
}

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

type MockSillyStore struct {
	mock.Mock
}

func (m *MockSillyStore) LookupByName(ctx context.Context, name string) (*domain.SillyCommand, error) {
	args := m.Called(ctx, name)
	cmd, _ := args.Get(0).(*domain.SillyCommand)
	return cmd, args.Error(1)
}

func (m *MockSillyStore) List(ctx context.Context) ([]domain.SillyCommand, error) {
	args := m.Called(ctx)
	cmds, _ := args.Get(0).([]domain.SillyCommand)
	return cmds, args.Error(1)
}

func (m *MockSillyStore) Create(ctx context.Context, cmd domain.SillyCommand) (int32, error) {
	args := m.Called(ctx, cmd)
	return int32(args.Int(0)), args.Error(1)
}

func (m *MockSillyStore) AddText(ctx context.Context, command string, text string, self bool) (int32, error) {
	args := m.Called(ctx, command, text, self)
	return int32(args.Int(0)), args.Error(1)
}

func (m *MockSillyStore) AddImage(ctx context.Context, command string, path string, preference string,
	self bool) (int32, error) {
	args := m.Called(ctx, command, path, preference, self)
	return int32(args.Int(0)), args.Error(1)
}

func (m *MockSillyStore) AddPreference(ctx context.Context, command string, preference string) error {
	args := m.Called(ctx, command, preference)
	return args.Error(0)
}

func (m *MockSillyStore) IncrementUsage(ctx context.Context, commandID int32, authorID, targetID string) (int,
	error) {
	args := m.Called(ctx, commandID, authorID, targetID)
	return args.Int(0), args.Error(1)
}

type MockAssets struct {
	mock.Mock
}

func (m *MockAssets) Download(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockAssets) Save(data []byte, extension string) (string, error) {
	args := m.Called(data, extension)
	return args.String(0), args.Error(1)
}

func (m *MockAssets) Read(path string) ([]byte, error) {
	args := m.Called(path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateFromPrompt(ctx context.Context, prompts []domain.Prompt) (domain.ModelResponse,
	error) {
	args := m.Called(ctx, prompts)
	resp, _ := args.Get(0).(domain.ModelResponse)
	return resp, args.Error(1)
}

type stubAuth map[string]bool

func (s stubAuth) IsAuthorized(userID string) bool {
	return s[userID]
}

const ownerID = "100"

var owners = stubAuth{ownerID: true}

type stubAck struct {
	state  domain.AckState
	err    error
	waited bool
}

func (s *stubAck) State() domain.AckState {
	return s.state
}

func (s *stubAck) Wait(context.Context) error {
	s.waited = true
	return s.err
}

func newRequest(authorID string, args ...domain.Arg) *domain.Request {
	return &domain.Request{
		Interaction: &domain.Interaction{
			ID:         "1200000000000000000",
			Token:      "token",
			AuthorID:   authorID,
			AuthorName: "author",
			ChannelID:  "20",
			Args:       args,
		},
		Ack: &stubAck{state: domain.AckInFlight},
	}
}

func stringArg(name, value string) domain.Arg {
	return domain.Arg{Name: name, Type: domain.ArgString, Value: value}
}

func intArg(name string, value int64) domain.Arg {
	return domain.Arg{Name: name, Type: domain.ArgInteger, Value: value}
}

func boolArg(name string, value bool) domain.Arg {
	return domain.Arg{Name: name, Type: domain.ArgBoolean, Value: value}
}

func userArg(name, id string) domain.Arg {
	return domain.Arg{Name: name, Type: domain.ArgUser, Value: id}
}
