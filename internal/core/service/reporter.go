package service

import (
	"context"
	"fmt"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"

	"github.com/gofrs/uuid/v5"
)

// Reporter turns a handler outcome into what the user gets to see.
type Reporter struct {
	responder       port.Responder
	showDiagnostics bool
}

// NewReporter creates a Reporter. With showDiagnostics set, system failures include the error text for the
// operator; it must stay off wherever regular users run commands.
func NewReporter(responder port.Responder, showDiagnostics bool) *Reporter {
	return &Reporter{responder: responder, showDiagnostics: showDiagnostics}
}

func (r *Reporter) Report(ctx context.Context, req *domain.Request, outcome domain.Outcome) {
	l := requestLogger(req)

	var content domain.Content

	switch outcome.Kind {
	case domain.Success:
		l.Debug().Msg("command succeeded")
		return
	case domain.UserFailure:
		l.Info().Str("message", outcome.Message).Msg("command rejected")
		content = domain.Content{Text: outcome.Message}
	case domain.SystemFailure:
		incident := newIncidentID()
		l.Error().Err(outcome.Err).
			Str("incident", incident).
			Str("diagnostic", fmt.Sprintf("%+v", outcome.Err)).
			Msg("command failed")
		content = r.failureContent(incident, outcome.Err)
	default:
		l.Error().Stringer("kind", outcome.Kind).Msg("unknown outcome kind")
		return
	}

	path, err := r.responder.Deliver(ctx, req, content)
	if err != nil {
		l.Error().Err(err).Str("path", string(path)).Msg("failed to deliver outcome")
		return
	}

	l.Debug().Str("path", string(path)).Stringer("outcome", outcome.Kind).Msg("delivered outcome")
}

const incidentFooter = "Incident %s"

func (r *Reporter) failureContent(incident string, err error) domain.Content {
	embed := domain.Embed{
		Title:  domain.GenericFailureTitle,
		Footer: fmt.Sprintf(incidentFooter, incident),
		Color:  colorError,
	}

	if r.showDiagnostics {
		embed.Description = fmt.Sprintf("```\n%+v\n```", err)
	}

	return domain.Content{Embeds: []domain.Embed{embed}}
}

const colorError = 0xe74c3c

func newIncidentID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}

	return id.String()
}
