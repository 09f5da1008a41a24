package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"takabot/internal/adapters/gateway"
	"takabot/internal/adapters/handler"
	"takabot/internal/adapters/health"
	"takabot/internal/core/domain/command"
	"takabot/internal/core/port"
	"takabot/internal/core/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands (default)",
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	log.Info().Msg("starting takabot...")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	token, err := discordToken()
	if err != nil {
		return err
	}

	handlerTimeout, err := duration("handler.timeout")
	if err != nil {
		return err
	}

	ackTimeout, err := duration("ack.timeout")
	if err != nil {
		return err
	}

	reconnectTimeout, err := duration("gateway.reconnect_timeout")
	if err != nil {
		return err
	}

	rest, shards, err := gateway.OpenShards(token, gateway.DefaultIntents)
	if err != nil {
		return err
	}

	appID, err := applicationID(rest)
	if err != nil {
		return err
	}

	b, err := newBot(ctx, rest, appID)
	if err != nil {
		return err
	}
	defer b.Close()

	cooldown := service.NewCooldown(viper.GetFloat64("dispatch.rate_per_minute"), viper.GetInt("dispatch.burst"))

	dispatcher := handler.NewDispatcher(handler.DispatcherParams{
		Registry:          b.registry,
		Dynamic:           b.dynamic,
		Components:        []port.ComponentHandler{b.help},
		Mentions:          b.mention,
		Acker:             service.NewAcker(b.sender, ackTimeout),
		Reporter:          service.NewReporter(b.resolver, viper.GetBool("bot.show_diagnostics")),
		Maintenance:       b.maintenance,
		Cooldown:          cooldown,
		MaintenanceExempt: command.TestModeCommand,
		Timeout:           handlerTimeout,
	})

	if addr := viper.GetString("health.addr"); addr != "" {
		go func() {
			if err := health.NewServer(addr).Run(ctx); err != nil {
				log.Error().Err(err).Msg("health server stopped")
			}
		}()
	}

	multiplexer := gateway.NewMultiplexer(shards, reconnectTimeout)
	if err = multiplexer.Open(ctx); err != nil {
		return err
	}

	log.Info().Int("shards", len(shards)).Msg("bot listening")

	err = dispatcher.Run(ctx, multiplexer)

	if closeErr := multiplexer.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close shards cleanly")
	}

	log.Info().Msg("waiting for running handlers")
	dispatcher.Wait()

	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shut down")
		return nil
	}

	return err
}
