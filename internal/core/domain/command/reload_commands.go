package command

import (
	"context"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
)

// ManifestBuilder assembles the full list of command schemas.
type ManifestBuilder interface {
	Build(ctx context.Context) ([]domain.Schema, error)
}

type ReloadCommands struct {
	responder port.Responder
	platform  port.Platform
	manifest  ManifestBuilder
	auth      service.Authorizer
	command   string
}

func NewReloadCommands(responder port.Responder, platform port.Platform, manifest ManifestBuilder,
	auth service.Authorizer) *ReloadCommands {
	return &ReloadCommands{
		responder: responder,
		platform:  platform,
		manifest:  manifest,
		auth:      auth,
		command:   "reload_commands",
	}
}

func (r *ReloadCommands) GetCommand() string {
	return r.command
}

func (r *ReloadCommands) Schema() domain.Schema {
	return domain.Schema{Name: r.command, Description: "Reload commands (owner only)"}
}

func (r *ReloadCommands) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(r.auth, req); !ok {
		return outcome
	}

	schemas, err := r.manifest.Build(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to build command manifest")
	}

	err = r.platform.SetCommands(ctx, schemas)
	if err != nil {
		return domain.Faultf(err, "failed to push command manifest")
	}

	l := commandLogger(r.command, req)
	l.Info().Int("commands", len(schemas)).Msg("reloaded commands")

	return deliverText(ctx, r.responder, req, "✅ Commands have successfully been reloaded")
}
