package command

import (
	"context"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorDefault     = 0x9b59b6
	maxTitleLength   = 256
	maxMessageLength = 2000
)

func commandLogger(command string, req *domain.Request) zerolog.Logger {
	return log.With().
		Int("shard", req.Shard).
		Str("interactionId", req.Interaction.ID).
		Str("command", command).
		Str("userId", req.Interaction.AuthorID).
		Logger()
}

// deliver sends content and turns a delivery failure into a SystemFailure.
func deliver(ctx context.Context, responder port.Responder, req *domain.Request,
	content domain.Content) domain.Outcome {
	_, err := responder.Deliver(ctx, req, content)
	if err != nil {
		return domain.Faultf(err, "failed to deliver response")
	}

	return domain.Ok()
}

func deliverText(ctx context.Context, responder port.Responder, req *domain.Request, text string) domain.Outcome {
	return deliver(ctx, responder, req, domain.Content{Text: text})
}

// awaitAck makes sure the deferred acknowledgment is done before an attachment is sent, as uploads are only
// accepted on an existing response.
func awaitAck(ctx context.Context, command string, req *domain.Request) {
	if req.Ack == nil {
		return
	}

	err := req.Ack.Wait(ctx)
	if err != nil {
		l := commandLogger(command, req)
		l.Warn().Err(err).Msg("acknowledgment did not land, delivering anyway")
	}
}

// ownerOnly rejects everyone but the configured bot owners.
func ownerOnly(auth service.Authorizer, req *domain.Request) (domain.Outcome, bool) {
	if auth.IsAuthorized(req.Interaction.AuthorID) {
		return domain.Outcome{}, true
	}

	return domain.Fail(domain.NotOwnerNotice), false
}

func float(v float64) *float64 {
	return &v
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
