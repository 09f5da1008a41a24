package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"takabot/internal/adapters/file"
	"takabot/internal/adapters/generator"
	"takabot/internal/adapters/sender"
	"takabot/internal/adapters/store"
	"takabot/internal/core/domain/command"
	"takabot/internal/core/port"
	"takabot/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var errMissingToken = errors.New("discord.token is not configured")

// bot holds everything that is shared between the handlers of one process.
type bot struct {
	sender      *sender.DiscordSender
	resolver    *service.Resolver
	maintenance *service.Maintenance
	registry    *command.Registry
	manifest    *service.Manifest
	help        *command.Help
	dynamic     port.DynamicResolver
	mention     port.MentionResponder

	pool *pgxpool.Pool
}

func discordToken() (string, error) {
	token := viper.GetString("discord.token")
	if token == "" {
		return "", errMissingToken
	}

	return token, nil
}

// applicationID asks Discord which application the token belongs to.
func applicationID(rest *discordgo.Session) (string, error) {
	app, err := rest.Application("@me")
	if err != nil {
		return "", fmt.Errorf("couldn't get current discord application: %w", err)
	}

	log.Info().Str("application", app.Name).Str("id", app.ID).Msg("logged in")

	return app.ID, nil
}

// newBot wires the command set on top of the given REST session. The database and the chat model are optional:
// without them the silly commands and mention replies are left out.
func newBot(ctx context.Context, rest *discordgo.Session, appID string) (*bot, error) {
	s, err := sender.NewDiscordSender(rest, appID, viper.GetString("discord.guild_id"))
	if err != nil {
		return nil, err
	}

	auth, err := service.NewAuthorizer()
	if err != nil {
		return nil, err
	}

	b := &bot{
		sender:      s,
		resolver:    service.NewResolver(s),
		maintenance: &service.Maintenance{},
		registry:    &command.Registry{},
	}

	var sillyStore port.SillyStore
	if url := viper.GetString("database.url"); url != "" {
		b.pool, err = store.NewPool(ctx, url)
		if err != nil {
			return nil, err
		}
		sillyStore = store.NewSillyStore(b.pool)
	} else {
		log.Warn().Msg("database.url not set, silly commands are disabled")
	}

	b.manifest = service.NewManifest(b.registry, sillyStore)
	b.help = command.NewHelp(b.resolver, s, b.registry, sillyStore)

	b.registry.Register(command.NewPing(b.resolver, s))
	b.registry.Register(command.NewRandom(b.resolver))
	b.registry.Register(command.NewEightBall(b.resolver))
	b.registry.Register(b.help)
	b.registry.Register(command.NewTestMode(b.resolver, b.maintenance, auth))
	b.registry.Register(command.NewReloadCommands(b.resolver, s, b.manifest, auth))
	b.registry.Register(command.NewDebug(b.resolver, auth))

	if sillyStore != nil {
		assets, err := file.NewAssets(viper.GetString("silly.assets_dir"))
		if err != nil {
			b.Close()
			return nil, err
		}

		b.registry.Register(command.NewCreateSillyCommand(b.resolver, sillyStore, b.registry, auth))
		b.registry.Register(command.NewAddSillyText(b.resolver, sillyStore, auth))
		b.registry.Register(command.NewAddSillyImage(b.resolver, sillyStore, assets, auth))
		b.registry.Register(command.NewAddPreference(b.resolver, sillyStore, auth))
		b.registry.Register(command.NewSillyInfo(b.resolver, sillyStore))
		b.registry.Register(command.NewExportSillyCommands(b.resolver, sillyStore, auth))
		b.registry.Register(command.NewLoadSillyCommandImages(b.resolver, sillyStore, assets,
			os.DirFS(viper.GetString("silly.import_dir")), auth))
		b.dynamic = command.NewSillyResolver(sillyStore, b.resolver, assets)
	}

	if apiKey := viper.GetString("openrouter.api_key"); apiKey != "" {
		ttl, err := duration("chat.conversation_ttl")
		if err != nil {
			b.Close()
			return nil, err
		}

		b.mention = command.NewMention(command.MentionParams{
			Generator: generator.NewOpenRouter(
				apiKey,
				viper.GetString("openrouter.model"),
				viper.GetString("openrouter.system_prompt"),
			),
			Replier:         s,
			Channels:        viper.GetStringSlice("chat.channels"),
			ConversationTTL: ttl,
		})
	} else {
		log.Info().Msg("openrouter.api_key not set, mention replies are disabled")
	}

	return b, nil
}

func (b *bot) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}
