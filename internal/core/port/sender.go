package port

import (
	"context"
	"takabot/internal/core/domain"
	"time"
)

type InteractionAcker interface {
	// Ack sends the deferred acknowledgment of an interaction using only its ID and token.
	// It returns domain.ErrAlreadyAcknowledged when the interaction has been answered already.
	Ack(ctx context.Context, interactionID, token string) error
}

type Platform interface {
	InteractionAcker
	// CreateResponse sends the initial response of an interaction, which doubles as its acknowledgment.
	CreateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error
	// UpdateResponse edits the original response of an interaction in place.
	UpdateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error
	// CreateFollowup sends an additional message tied to the interaction.
	CreateFollowup(ctx context.Context, it *domain.Interaction, content domain.Content) error
	// CreateChannelMessage posts directly to a channel, bypassing the interaction.
	CreateChannelMessage(ctx context.Context, channelID string, content domain.Content) error
	// GetResponse reads back the original response and the status the platform answered with.
	GetResponse(ctx context.Context, it *domain.Interaction) (domain.Response, error)
	// UpdateComponentMessage answers a component interaction by editing the message it is attached to.
	UpdateComponentMessage(ctx context.Context, it *domain.Interaction, content domain.Content) error
	// SetCommands replaces the platform command manifest.
	SetCommands(ctx context.Context, schemas []domain.Schema) error
	// GatewayLatency measures one REST round trip to the platform.
	GatewayLatency(ctx context.Context) (time.Duration, error)
	// Reply answers a plain channel message.
	Reply(ctx context.Context, channelID, messageID, text string) error
}

// Responder chooses how content reaches the user once a handler has something to say.
type Responder interface {
	// Deliver sends the primary content of an interaction, editing in place when possible.
	Deliver(ctx context.Context, req *domain.Request, content domain.Content) (domain.DeliveryPath, error)
	// Followup sends secondary content after the primary response.
	Followup(ctx context.Context, req *domain.Request, content domain.Content) (domain.DeliveryPath, error)
}
