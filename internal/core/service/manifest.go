package service

import (
	"context"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Manifest builds the platform-facing list of commands from the static registry and the dynamic store.
type Manifest struct {
	registry port.CommandRegistry
	store    port.SillyStore
}

// NewManifest creates a Manifest. store may be nil when no dynamic commands are configured.
func NewManifest(registry port.CommandRegistry, store port.SillyStore) *Manifest {
	return &Manifest{registry: registry, store: store}
}

func (m *Manifest) Build(ctx context.Context) ([]domain.Schema, error) {
	commands := m.registry.All()
	schemas := make([]domain.Schema, 0, len(commands))
	seen := make(map[string]struct{}, len(commands))

	for _, cmd := range commands {
		schemas = append(schemas, cmd.Schema())
		seen[cmd.GetCommand()] = struct{}{}
	}

	if m.store == nil {
		return schemas, nil
	}

	dynamic, err := m.store.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not list dynamic commands, manifest only has static commands")
		return schemas, nil
	}

	for _, cmd := range dynamic {
		if _, ok := seen[cmd.Name]; ok {
			log.Warn().Str("command", cmd.Name).Msg("dynamic command shadowed by static command, skipping")
			continue
		}

		seen[cmd.Name] = struct{}{}
		schemas = append(schemas, cmd.Schema())
	}

	return schemas, nil
}
