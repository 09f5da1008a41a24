package command

import (
	"context"
	"fmt"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
)

// TestModeCommand is the only command still served while test mode is on.
const TestModeCommand = "test_mode"

type TestMode struct {
	responder   port.Responder
	maintenance *service.Maintenance
	auth        service.Authorizer
	command     string
}

func NewTestMode(responder port.Responder, maintenance *service.Maintenance, auth service.Authorizer) *TestMode {
	return &TestMode{responder: responder, maintenance: maintenance, auth: auth, command: TestModeCommand}
}

func (t *TestMode) GetCommand() string {
	return t.command
}

func (t *TestMode) Schema() domain.Schema {
	return domain.Schema{
		Name:        t.command,
		Description: "Enable test mode (owner only)",
		Options: []domain.SchemaOption{
			{Name: "enable", Description: "Whether test mode is on", Type: domain.OptionBoolean, Required: true},
		},
	}
}

func (t *TestMode) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(t.auth, req); !ok {
		return outcome
	}

	enable, ok := req.Interaction.Args.Bool("enable")
	if !ok {
		return domain.Fail("❌ Tell me whether test mode should be enabled")
	}

	t.maintenance.Set(enable)

	state := "disabled"
	if enable {
		state = "enabled"
	}

	return deliverText(ctx, t.responder, req, fmt.Sprintf("Test mode has been %s!", state))
}
