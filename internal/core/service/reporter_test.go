package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"takabot/internal/core/domain"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	return &buf
}

func TestReporter_Success(t *testing.T) {
	mr := new(MockResponder)

	NewReporter(mr, false).Report(t.Context(), newRequest(domain.AckAcked, "20"), domain.Ok())

	mr.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestReporter_UserFailureVerbatim(t *testing.T) {
	const message = "❌ not allowed"

	tests := []struct {
		name      string
		state     domain.AckState
		createErr error
		wantPath  string
	}{
		{name: "unacked, initial response", state: domain.AckUnacked, wantPath: "CreateResponse"},
		{name: "in flight, initial response", state: domain.AckInFlight, wantPath: "CreateResponse"},
		{
			name:      "unacked, lost the race",
			state:     domain.AckUnacked,
			createErr: domain.ErrAlreadyAcknowledged,
			wantPath:  "UpdateResponse",
		},
		{
			name:      "in flight, lost the race",
			state:     domain.AckInFlight,
			createErr: domain.ErrAlreadyAcknowledged,
			wantPath:  "UpdateResponse",
		},
		{name: "acked", state: domain.AckAcked, wantPath: "UpdateResponse"},
		{name: "ack failed", state: domain.AckFailed, wantPath: "CreateChannelMessage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := new(MockPlatform)
			mp.On("CreateResponse", mock.Anything, mock.Anything, mock.Anything).Return(tt.createErr).Maybe()
			mp.On("GetResponse", mock.Anything, mock.Anything).
				Return(domain.Response{MessageID: "5", Status: 200}, nil).Maybe()
			mp.On("UpdateResponse", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			mp.On("CreateChannelMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

			NewReporter(NewResolver(mp), false).Report(t.Context(), newRequest(tt.state, "20"),
				domain.Fail(message))

			var delivered []domain.Content
			for _, call := range mp.Calls {
				switch call.Method {
				case "CreateResponse":
					if tt.createErr == nil {
						assert.Equal(t, tt.wantPath, call.Method)
						delivered = append(delivered, call.Arguments.Get(2).(domain.Content))
					}
				case "UpdateResponse", "CreateChannelMessage":
					assert.Equal(t, tt.wantPath, call.Method)
					delivered = append(delivered, call.Arguments.Get(2).(domain.Content))
				}
			}

			require.Len(t, delivered, 1)
			assert.Equal(t, domain.Content{Text: message}, delivered[0])
		})
	}
}

func TestReporter_SystemFailureHidesDiagnostic(t *testing.T) {
	logs := captureLogs(t)
	cause := errors.New("connection reset by peer")

	var delivered domain.Content
	mr := new(MockResponder)
	mr.On("Deliver", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered = args.Get(2).(domain.Content) }).
		Return(domain.PathEdit, nil).Once()

	NewReporter(mr, false).Report(t.Context(), newRequest(domain.AckAcked, "20"),
		domain.Faultf(cause, "failed to load command"))

	mr.AssertExpectations(t)
	require.Len(t, delivered.Embeds, 1)

	embed := delivered.Embeds[0]
	assert.Equal(t, domain.GenericFailureTitle, embed.Title)
	assert.Empty(t, embed.Description)
	assert.True(t, strings.HasPrefix(embed.Footer, "Incident "))
	assert.NotContains(t, delivered.Text, cause.Error())

	incident := strings.TrimPrefix(embed.Footer, "Incident ")
	assert.Contains(t, logs.String(), cause.Error())
	assert.Contains(t, logs.String(), incident)
}

func TestReporter_SystemFailureWithDiagnostics(t *testing.T) {
	captureLogs(t)
	cause := errors.New("connection reset by peer")

	var delivered domain.Content
	mr := new(MockResponder)
	mr.On("Deliver", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered = args.Get(2).(domain.Content) }).
		Return(domain.PathInitial, nil).Once()

	NewReporter(mr, true).Report(t.Context(), newRequest(domain.AckUnacked, "20"), domain.Fault(cause))

	require.Len(t, delivered.Embeds, 1)
	assert.Contains(t, delivered.Embeds[0].Description, cause.Error())
}

func TestReporter_DeliveryFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)

	mr := new(MockResponder)
	mr.On("Deliver", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.PathAbandoned, domain.ErrNoChannel).Once()

	NewReporter(mr, false).Report(t.Context(), newRequest(domain.AckFailed, ""), domain.Fail("nope"))

	assert.Contains(t, logs.String(), "failed to deliver outcome")
}
