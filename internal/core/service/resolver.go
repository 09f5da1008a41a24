package service

import (
	"context"
	"errors"
	"fmt"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resolver decides how content reaches the user: as the initial response, by editing the acknowledged
// response, as a followup, or as a plain post in the origin channel when the interaction is unusable.
type Resolver struct {
	platform port.Platform
}

func NewResolver(platform port.Platform) *Resolver {
	return &Resolver{platform: platform}
}

func (r *Resolver) Deliver(ctx context.Context, req *domain.Request, content domain.Content) (domain.DeliveryPath,
	error) {
	it := req.Interaction
	l := requestLogger(req)

	state := domain.AckUnacked
	if req.Ack != nil {
		state = req.Ack.State()
	}

	switch state {
	case domain.AckFailed:
		l.Debug().Msg("acknowledgment failed, posting to channel instead")
		return r.fallback(ctx, it, content, l)
	case domain.AckUnacked, domain.AckInFlight:
		err := r.platform.CreateResponse(ctx, it, content)
		if err == nil {
			return domain.PathInitial, nil
		}

		if !errors.Is(err, domain.ErrAlreadyAcknowledged) {
			l.Warn().Err(err).Msg("failed to send initial response")
			return r.fallback(ctx, it, content, l)
		}

		l.Trace().Msg("interaction already acknowledged, editing response")
	}

	return r.edit(ctx, it, content, l)
}

func (r *Resolver) Followup(ctx context.Context, req *domain.Request, content domain.Content) (domain.DeliveryPath,
	error) {
	l := requestLogger(req)

	err := r.platform.CreateFollowup(ctx, req.Interaction, content)
	if err != nil {
		l.Warn().Err(err).Msg("failed to send followup")
		return r.fallback(ctx, req.Interaction, content, l)
	}

	return domain.PathFollowup, nil
}

// edit reads the original response before touching it. A response that cannot be read cannot be edited either,
// so the channel post is used instead of an edit that is bound to fail.
func (r *Resolver) edit(ctx context.Context, it *domain.Interaction, content domain.Content,
	l zerolog.Logger) (domain.DeliveryPath, error) {
	resp, err := r.platform.GetResponse(ctx, it)
	if err != nil || !resp.OK() {
		l.Warn().Err(err).Int("status", resp.Status).Msg("original response unavailable")
		return r.fallback(ctx, it, content, l)
	}

	err = r.platform.UpdateResponse(ctx, it, content)
	if err != nil {
		l.Warn().Err(err).Msg("failed to edit response")
		return r.fallback(ctx, it, content, l)
	}

	return domain.PathEdit, nil
}

func (r *Resolver) fallback(ctx context.Context, it *domain.Interaction, content domain.Content,
	l zerolog.Logger) (domain.DeliveryPath, error) {
	if it.ChannelID == "" {
		l.Warn().Msg("no channel to fall back to, abandoning response")
		return domain.PathAbandoned, domain.ErrNoChannel
	}

	err := r.platform.CreateChannelMessage(ctx, it.ChannelID, content)
	if err != nil {
		return domain.PathChannel, fmt.Errorf("failed to post fallback message: %w", err)
	}

	l.Debug().Str("channelId", it.ChannelID).Msg("delivered through channel fallback")

	return domain.PathChannel, nil
}

func requestLogger(req *domain.Request) zerolog.Logger {
	it := req.Interaction
	return log.With().
		Int("shard", req.Shard).
		Str("interactionId", it.ID).
		Str("command", it.CommandName).
		Logger()
}
