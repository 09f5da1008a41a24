package gateway

import (
	"takabot/internal/core/domain"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInteraction_Command(t *testing.T) {
	in := &discordgo.Interaction{
		ID:        "1",
		AppID:     "app",
		Token:     "tok",
		ChannelID: "chan",
		GuildID:   "guild",
		Type:      discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{
			Nick: "Taka",
			User: &discordgo.User{ID: "10", Username: "taka"},
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "add_silly_image",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "command", Type: discordgo.ApplicationCommandOptionString, Value: "hug"},
				{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
				{Name: "self", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
				{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "20"},
				{Name: "image", Type: discordgo.ApplicationCommandOptionAttachment, Value: "att"},
				{Name: "ghost", Type: discordgo.ApplicationCommandOptionAttachment, Value: "missing"},
			},
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users: map[string]*discordgo.User{
					"20": {ID: "20", Username: "user20", GlobalName: "Twenty"},
					"30": {ID: "30", Username: "user30"},
				},
				Members: map[string]*discordgo.Member{
					"30": {Nick: "Thirty"},
				},
				Attachments: map[string]*discordgo.MessageAttachment{
					"att": {ID: "att", URL: "https://cdn/hug.gif", Filename: "hug.gif"},
				},
			},
		},
	}

	it, err := toInteraction(in)
	require.NoError(t, err)

	assert.Equal(t, domain.KindCommand, it.Kind)
	assert.Equal(t, "add_silly_image", it.CommandName)
	assert.Equal(t, "10", it.AuthorID)
	assert.Equal(t, "Taka", it.AuthorName)
	assert.Equal(t, "chan", it.ChannelID)
	assert.Equal(t, "tok", it.Token)

	name, ok := it.Args.String("command")
	assert.True(t, ok)
	assert.Equal(t, "hug", name)

	count, ok := it.Args.Int("count")
	assert.True(t, ok)
	assert.Equal(t, int64(3), count)

	self, ok := it.Args.Bool("self")
	assert.True(t, ok)
	assert.True(t, self)

	user, ok := it.Args.User("user")
	assert.True(t, ok)
	assert.Equal(t, "20", user)

	ref, ok := it.Args.Attachment("image")
	assert.True(t, ok)
	assert.Equal(t, domain.AttachmentRef{URL: "https://cdn/hug.gif", Filename: "hug.gif"}, ref)

	_, ok = it.Args.Attachment("ghost")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"20": "Twenty", "30": "Thirty"}, it.Users)
}

func TestToInteraction_SubcommandOptionsFlattened(t *testing.T) {
	in := &discordgo.Interaction{
		ID:   "1",
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "10", Username: "dm-user"},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "stats",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name: "user",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "taka"},
					},
				},
			},
		},
	}

	it, err := toInteraction(in)
	require.NoError(t, err)

	assert.Equal(t, "dm-user", it.AuthorName)
	name, ok := it.Args.String("name")
	assert.True(t, ok)
	assert.Equal(t, "taka", name)
}

func TestToInteraction_Component(t *testing.T) {
	in := &discordgo.Interaction{
		ID:   "1",
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{ID: "10"},
		Data: discordgo.MessageComponentInteractionData{CustomID: "help_next"},
		Message: &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{
			Title:  "Commands",
			Footer: &discordgo.MessageEmbedFooter{Text: "Page 1 / 2"},
		}}},
	}

	it, err := toInteraction(in)
	require.NoError(t, err)

	assert.Equal(t, domain.KindComponent, it.Kind)
	assert.Equal(t, "help_next", it.CustomID)
	require.Len(t, it.Embeds, 1)
	assert.Equal(t, "Page 1 / 2", it.Embeds[0].Footer)
}

func TestToInteraction_Unsupported(t *testing.T) {
	_, err := toInteraction(&discordgo.Interaction{ID: "1", Type: discordgo.InteractionPing})
	require.ErrorIs(t, err, domain.ErrUnsupportedEvent)

	_, err = toInteraction(nil)
	require.ErrorIs(t, err, domain.ErrUnsupportedEvent)
}

func TestToMention(t *testing.T) {
	tests := []struct {
		name     string
		msg      *discordgo.Message
		wantOK   bool
		wantText string
		wantName string
	}{
		{
			name: "mention tag",
			msg: &discordgo.Message{
				Content: "hey <@99> tell me a joke",
				Author:  &discordgo.User{ID: "1", Username: "user"},
			},
			wantOK:   true,
			wantText: "hey  tell me a joke",
			wantName: "user",
		},
		{
			name: "nickname mention with member nick",
			msg: &discordgo.Message{
				Content: "<@!99> hi",
				Author:  &discordgo.User{ID: "1", Username: "user"},
				Member:  &discordgo.Member{Nick: "nick"},
			},
			wantOK:   true,
			wantText: "hi",
			wantName: "nick",
		},
		{
			name: "bot author",
			msg: &discordgo.Message{
				Content: "<@99> hi",
				Author:  &discordgo.User{ID: "2", Bot: true},
			},
		},
		{
			name: "not mentioned",
			msg: &discordgo.Message{
				Content:  "<@12> hi",
				Author:   &discordgo.User{ID: "1"},
				Mentions: []*discordgo.User{{ID: "12"}},
			},
		},
		{name: "no author", msg: &discordgo.Message{Content: "<@99>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mention, ok := toMention(tt.msg, "99")

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantText, mention.Text)
			assert.Equal(t, tt.wantName, mention.AuthorName)
		})
	}
}
