package command

import (
	"context"
	"errors"
	"fmt"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"time"
)

type Ping struct {
	responder port.Responder
	platform  port.Platform
	command   string
}

func NewPing(responder port.Responder, platform port.Platform) *Ping {
	return &Ping{responder: responder, platform: platform, command: "ping"}
}

func (p *Ping) GetCommand() string {
	return p.command
}

func (p *Ping) Schema() domain.Schema {
	return domain.Schema{Name: p.command, Description: "Get the current ping"}
}

const pingTemplate = "Pong!\nPing: %dms\nGateway ping: %dms"

func (p *Ping) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	l := commandLogger(p.command, req)

	_, err := p.responder.Deliver(ctx, req, domain.Content{Text: "Pong!"})
	if err != nil {
		return domain.Faultf(err, "failed to send pong")
	}

	ping, err := p.responseLatency(ctx, req.Interaction)
	if err != nil {
		l.Warn().Err(err).Msg("could not read back response, measuring from interaction creation")

		created, err := req.Interaction.CreatedAt()
		if err != nil {
			return domain.Faultf(err, "failed to decode interaction timestamp")
		}
		ping = time.Since(created)
	}

	gateway, err := p.platform.GatewayLatency(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to measure gateway latency")
	}

	l.Debug().Dur("ping", ping).Dur("gateway", gateway).Msg("measured latency")

	return deliverText(ctx, p.responder, req, fmt.Sprintf(pingTemplate, ping.Milliseconds(), gateway.Milliseconds()))
}

// responseLatency is the time between the interaction and the message answering it, both taken from their IDs.
func (p *Ping) responseLatency(ctx context.Context, it *domain.Interaction) (time.Duration, error) {
	resp, err := p.platform.GetResponse(ctx, it)
	if err != nil {
		return 0, err
	}

	if !resp.OK() || resp.MessageID == "" {
		return 0, errors.New("response not available")
	}

	created, err := it.CreatedAt()
	if err != nil {
		return 0, err
	}

	answered, err := domain.SnowflakeTime(resp.MessageID)
	if err != nil {
		return 0, err
	}

	return answered.Sub(created), nil
}
