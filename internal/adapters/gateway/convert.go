package gateway

import (
	"fmt"
	"strings"
	"takabot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

var argTypes = map[discordgo.ApplicationCommandOptionType]domain.ArgType{
	discordgo.ApplicationCommandOptionString:     domain.ArgString,
	discordgo.ApplicationCommandOptionInteger:    domain.ArgInteger,
	discordgo.ApplicationCommandOptionBoolean:    domain.ArgBoolean,
	discordgo.ApplicationCommandOptionUser:       domain.ArgUser,
	discordgo.ApplicationCommandOptionNumber:     domain.ArgNumber,
	discordgo.ApplicationCommandOptionAttachment: domain.ArgAttachment,
}

// toInteraction converts a gateway interaction into its domain form. Interaction kinds the bot does not serve
// yield domain.ErrUnsupportedEvent.
func toInteraction(i *discordgo.Interaction) (*domain.Interaction, error) {
	if i == nil {
		return nil, fmt.Errorf("%w: empty interaction", domain.ErrUnsupportedEvent)
	}

	it := &domain.Interaction{
		ID:        i.ID,
		AppID:     i.AppID,
		Token:     i.Token,
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		it.AuthorID = i.Member.User.ID
		it.AuthorName = i.Member.DisplayName()
	case i.User != nil:
		it.AuthorID = i.User.ID
		it.AuthorName = i.User.DisplayName()
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		it.Kind = domain.KindCommand
		it.CommandName = data.Name
		it.Args = toArgs(data.Options, data.Resolved)
		it.Users = resolvedUsers(data.Resolved)
	case discordgo.InteractionMessageComponent:
		it.Kind = domain.KindComponent
		it.CustomID = i.MessageComponentData().CustomID
		if i.Message != nil {
			it.Embeds = fromEmbeds(i.Message.Embeds)
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEvent, i.Type)
	}

	return it, nil
}

func toArgs(options []*discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved) domain.Args {
	var args domain.Args

	for _, o := range options {
		if o == nil {
			continue
		}

		// options of subcommands are flattened into one list
		if o.Type == discordgo.ApplicationCommandOptionSubCommand ||
			o.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			args = append(args, toArgs(o.Options, resolved)...)
			continue
		}

		t, ok := argTypes[o.Type]
		if !ok {
			continue
		}

		arg := domain.Arg{Name: o.Name, Type: t}
		switch t {
		case domain.ArgString:
			arg.Value = o.StringValue()
		case domain.ArgInteger:
			arg.Value = o.IntValue()
		case domain.ArgBoolean:
			arg.Value = o.BoolValue()
		case domain.ArgNumber:
			arg.Value = o.FloatValue()
		case domain.ArgUser:
			id, _ := o.Value.(string)
			arg.Value = id
		case domain.ArgAttachment:
			ref, ok := resolveAttachment(o, resolved)
			if !ok {
				continue
			}
			arg.Value = ref
		}

		args = append(args, arg)
	}

	return args
}

func resolveAttachment(o *discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved) (domain.AttachmentRef, bool) {
	id, _ := o.Value.(string)
	if resolved == nil || id == "" {
		return domain.AttachmentRef{}, false
	}

	attachment, ok := resolved.Attachments[id]
	if !ok || attachment == nil {
		return domain.AttachmentRef{}, false
	}

	return domain.AttachmentRef{URL: attachment.URL, Filename: attachment.Filename}, true
}

// resolvedUsers maps argument user IDs to the name they go by in the guild.
func resolvedUsers(resolved *discordgo.ApplicationCommandInteractionDataResolved) map[string]string {
	if resolved == nil || len(resolved.Users) == 0 {
		return nil
	}

	users := make(map[string]string, len(resolved.Users))
	for id, user := range resolved.Users {
		if user == nil {
			continue
		}

		name := user.DisplayName()
		if member, ok := resolved.Members[id]; ok && member != nil && member.Nick != "" {
			name = member.Nick
		}
		users[id] = name
	}

	return users
}

func fromEmbeds(embeds []*discordgo.MessageEmbed) []domain.Embed {
	out := make([]domain.Embed, 0, len(embeds))
	for _, e := range embeds {
		if e == nil {
			continue
		}

		embed := domain.Embed{Title: e.Title, Description: e.Description, Color: e.Color}
		if e.Footer != nil {
			embed.Footer = e.Footer.Text
		}
		out = append(out, embed)
	}

	return out
}

// toMention converts a message that addresses the bot. Messages from bots and messages that do not mention
// botID are ignored.
func toMention(m *discordgo.Message, botID string) (*domain.Mention, bool) {
	if m == nil || m.Author == nil || m.Author.Bot || botID == "" {
		return nil, false
	}

	tags := []string{"<@" + botID + ">", "<@!" + botID + ">"}

	mentioned := false
	for _, u := range m.Mentions {
		if u != nil && u.ID == botID {
			mentioned = true
			break
		}
	}
	for _, tag := range tags {
		if strings.Contains(m.Content, tag) {
			mentioned = true
		}
	}
	if !mentioned {
		return nil, false
	}

	text := m.Content
	for _, tag := range tags {
		text = strings.ReplaceAll(text, tag, "")
	}

	name := m.Author.DisplayName()
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}

	return &domain.Mention{
		MessageID:  m.ID,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: name,
		Text:       strings.TrimSpace(text),
	}, true
}
