package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "takabot",
	Short:         "takabot, a Discord bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := initConfig(); err != nil {
			return err
		}

		setupLogging()

		return nil
	},
	RunE: runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.toml)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(manifestCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(migrateCmd())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("takabot exited with an error")
		os.Exit(1)
	}
}

func setDefaults() {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.pretty_logs", false)
	viper.SetDefault("bot.show_diagnostics", false)
	viper.SetDefault("handler.timeout", "5m")
	viper.SetDefault("ack.timeout", "3s")
	viper.SetDefault("gateway.reconnect_timeout", "5m")
	viper.SetDefault("dispatch.rate_per_minute", 20)
	viper.SetDefault("dispatch.burst", 5)
	viper.SetDefault("silly.assets_dir", "assets")
	viper.SetDefault("silly.import_dir", "assets/silly_commands")
	viper.SetDefault("openrouter.model", "openai/gpt-4.1-mini")
	viper.SetDefault("chat.conversation_ttl", "30m")
	viper.SetDefault("health.addr", ":8080")
}

func initConfig() error {
	viper.SetConfigType("toml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TAKABOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			log.Warn().Msg("no config file found, using defaults and environment")
			return nil
		}

		return fmt.Errorf("could not read config file: %w", err)
	}

	log.Info().Str("file", viper.ConfigFileUsed()).Msg("read config file")

	return nil
}

func setupLogging() {
	if viper.GetBool("bot.pretty_logs") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level, err := zerolog.ParseLevel(viper.GetString("bot.log_level"))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", viper.GetString("bot.log_level")).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
}

// duration reads a duration setting such as "5m".
func duration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s in config: %w", key, err)
	}

	return d, nil
}
