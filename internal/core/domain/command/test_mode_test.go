package command

import (
	"takabot/internal/core/domain"
	"takabot/internal/core/service"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestMode_Respond(t *testing.T) {
	tests := []struct {
		name        string
		author      string
		enable      bool
		initial     bool
		wantEnabled bool
		wantText    string
		wantOutcome domain.Outcome
	}{
		{
			name:        "owner enables",
			author:      ownerID,
			enable:      true,
			wantEnabled: true,
			wantText:    "Test mode has been enabled!",
			wantOutcome: domain.Ok(),
		},
		{
			name:        "owner disables",
			author:      ownerID,
			enable:      false,
			initial:     true,
			wantEnabled: false,
			wantText:    "Test mode has been disabled!",
			wantOutcome: domain.Ok(),
		},
		{
			name:        "stranger is rejected",
			author:      "999",
			enable:      true,
			wantEnabled: false,
			wantOutcome: domain.Fail(domain.NotOwnerNotice),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mr := newDeliveringResponder()
			maintenance := &service.Maintenance{}
			maintenance.Set(tc.initial)

			outcome := NewTestMode(mr, maintenance, owners).
				Respond(t.Context(), newRequest(tc.author, boolArg("enable", tc.enable)))

			assert.Equal(t, tc.wantOutcome, outcome)
			assert.Equal(t, tc.wantEnabled, maintenance.Enabled())

			if tc.wantText != "" {
				delivered := mr.delivered()
				require.Len(t, delivered, 1)
				assert.Equal(t, tc.wantText, delivered[0].Text)
			}
		})
	}
}

func TestTestMode_Name(t *testing.T) {
	assert.Equal(t, TestModeCommand, NewTestMode(nil, nil, owners).GetCommand())
}
