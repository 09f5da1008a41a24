package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func manifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the command manifest as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := discordToken()
			if err != nil {
				return err
			}

			rest, err := discordgo.New("Bot " + token)
			if err != nil {
				return err
			}

			b, err := newBot(cmd.Context(), rest, "")
			if err != nil {
				return err
			}
			defer b.Close()

			schemas, err := b.manifest.Build(cmd.Context())
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err = encoder.Encode(schemas); err != nil {
				return fmt.Errorf("failed to encode manifest: %w", err)
			}

			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the command manifest to Discord",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := discordToken()
			if err != nil {
				return err
			}

			rest, err := discordgo.New("Bot " + token)
			if err != nil {
				return err
			}

			appID, err := applicationID(rest)
			if err != nil {
				return err
			}

			b, err := newBot(cmd.Context(), rest, appID)
			if err != nil {
				return err
			}
			defer b.Close()

			schemas, err := b.manifest.Build(cmd.Context())
			if err != nil {
				return err
			}

			if err = b.sender.SetCommands(cmd.Context(), schemas); err != nil {
				return err
			}

			log.Info().Int("commands", len(schemas)).Msg("commands synced")

			return nil
		},
	}
}
