package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"takabot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Session is the subset of the discordgo REST client the sender needs.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message,
		error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	GatewayBot(options ...discordgo.RequestOption) (*discordgo.GatewayBotResponse, error)
}

// DiscordSender talks to the Discord REST API. Acknowledgments go through a separate session without bot
// credentials, the interaction token is all that endpoint needs.
type DiscordSender struct {
	session Session
	acker   Session
	appID   string
	guildID string
}

func NewDiscordSender(session Session, appID, guildID string) (*DiscordSender, error) {
	acker, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create acknowledgment session: %w", err)
	}

	return &DiscordSender{session: session, acker: acker, appID: appID, guildID: guildID}, nil
}

func (s *DiscordSender) Ack(ctx context.Context, interactionID, token string) error {
	err := s.acker.InteractionRespond(
		&discordgo.Interaction{ID: interactionID, Token: token},
		&discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource},
		discordgo.WithContext(ctx),
	)

	return mapError(err)
}

func (s *DiscordSender) CreateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	data := &discordgo.InteractionResponseData{
		Content:    content.Text,
		Embeds:     toEmbeds(content.Embeds),
		Components: toComponents(content.Components),
		Files:      toFiles(content.Files),
	}

	err := s.session.InteractionRespond(toInteraction(it), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))

	return mapError(err)
}

func (s *DiscordSender) UpdateResponse(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	embeds := toEmbeds(content.Embeds)
	components := toComponents(content.Components)
	edit := &discordgo.WebhookEdit{
		Content:    &content.Text,
		Embeds:     &embeds,
		Components: &components,
		Files:      toFiles(content.Files),
	}

	// an empty list drops attachments left over from earlier edits
	if len(content.Files) > 0 {
		edit.Attachments = &[]*discordgo.MessageAttachment{}
	}

	_, err := s.session.InteractionResponseEdit(toInteraction(it), edit, discordgo.WithContext(ctx))

	return mapError(err)
}

func (s *DiscordSender) CreateFollowup(ctx context.Context, it *domain.Interaction, content domain.Content) error {
	_, err := s.session.FollowupMessageCreate(toInteraction(it), true, &discordgo.WebhookParams{
		Content:    content.Text,
		Embeds:     toEmbeds(content.Embeds),
		Components: toComponents(content.Components),
		Files:      toFiles(content.Files),
	}, discordgo.WithContext(ctx))

	return mapError(err)
}

func (s *DiscordSender) CreateChannelMessage(ctx context.Context, channelID string, content domain.Content) error {
	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content.Text,
		Embeds:     toEmbeds(content.Embeds),
		Components: toComponents(content.Components),
		Files:      toFiles(content.Files),
	}, discordgo.WithContext(ctx))

	return mapError(err)
}

func (s *DiscordSender) GetResponse(ctx context.Context, it *domain.Interaction) (domain.Response, error) {
	msg, err := s.session.InteractionResponse(toInteraction(it), discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil {
			return domain.Response{Status: restErr.Response.StatusCode}, nil
		}

		return domain.Response{}, fmt.Errorf("failed to read original response: %w", err)
	}

	if msg == nil {
		return domain.Response{}, domain.ErrResponseMissing
	}

	return domain.Response{MessageID: msg.ID, Status: http.StatusOK}, nil
}

func (s *DiscordSender) UpdateComponentMessage(ctx context.Context, it *domain.Interaction,
	content domain.Content) error {
	err := s.session.InteractionRespond(toInteraction(it), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content.Text,
			Embeds:     toEmbeds(content.Embeds),
			Components: toComponents(content.Components),
		},
	}, discordgo.WithContext(ctx))

	return mapError(err)
}

func (s *DiscordSender) SetCommands(ctx context.Context, schemas []domain.Schema) error {
	commands := make([]*discordgo.ApplicationCommand, 0, len(schemas))
	for _, schema := range schemas {
		commands = append(commands, toApplicationCommand(schema))
	}

	created, err := s.session.ApplicationCommandBulkOverwrite(s.appID, s.guildID, commands,
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to overwrite application commands: %w", err)
	}

	log.Info().Int("count", len(created)).Str("guildId", s.guildID).Msg("application commands updated")

	return nil
}

func (s *DiscordSender) GatewayLatency(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	_, err := s.session.GatewayBot(discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to reach gateway: %w", err)
	}

	return time.Since(start), nil
}

func (s *DiscordSender) Reply(ctx context.Context, channelID, messageID, text string) error {
	_, err := s.session.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))

	return mapError(err)
}

// mapError translates the Discord "already acknowledged" error into its domain sentinel.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeInteractionHasAlreadyBeenAcknowledged {
		return fmt.Errorf("%w: %w", domain.ErrAlreadyAcknowledged, err)
	}

	return err
}

func toInteraction(it *domain.Interaction) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        it.ID,
		AppID:     it.AppID,
		Token:     it.Token,
		ChannelID: it.ChannelID,
		GuildID:   it.GuildID,
	}
}

func toEmbeds(embeds []domain.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}

	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if e.Image != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + e.Image}
		}
		out = append(out, embed)
	}

	return out
}

func toComponents(buttons []domain.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}

	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		button := discordgo.Button{
			Label:    b.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: b.CustomID,
		}
		if b.Emoji != "" {
			button.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
		}
		row.Components = append(row.Components, button)
	}

	return []discordgo.MessageComponent{row}
}

func toFiles(files []domain.File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}

	out := make([]*discordgo.File, 0, len(files))
	for _, f := range files {
		out = append(out, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}

	return out
}

var optionTypes = map[domain.OptionType]discordgo.ApplicationCommandOptionType{
	domain.OptionString:     discordgo.ApplicationCommandOptionString,
	domain.OptionInteger:    discordgo.ApplicationCommandOptionInteger,
	domain.OptionBoolean:    discordgo.ApplicationCommandOptionBoolean,
	domain.OptionUser:       discordgo.ApplicationCommandOptionUser,
	domain.OptionAttachment: discordgo.ApplicationCommandOptionAttachment,
}

func toApplicationCommand(schema domain.Schema) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        schema.Name,
		Description: schema.Description,
	}

	for _, opt := range schema.Options {
		option := &discordgo.ApplicationCommandOption{
			Type:        optionTypes[opt.Type],
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
			MinValue:    opt.MinValue,
		}
		for _, choice := range opt.Choices {
			option.Choices = append(option.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choice,
				Value: choice,
			})
		}
		cmd.Options = append(cmd.Options, option)
	}

	return cmd
}
