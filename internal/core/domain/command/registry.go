package command

import (
	"fmt"
	"takabot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry maps command names to handlers. It is filled once at startup and only read afterwards, so lookups
// take no lock.
type Registry struct {
	commands map[string]port.Command
	order    []string
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	name := handler.GetCommand()
	if name == "" {
		panic("command registry: handler registered without a name")
	}

	if _, ok := r.commands[name]; ok {
		panic(fmt.Sprintf("command registry: duplicate command %q", name))
	}

	log.Info().Str("handler", name).Msg("adding command handler to registry")
	r.commands[name] = handler
	r.order = append(r.order, name)
}

func (r *Registry) Get(command string) (port.Command, bool) {
	handler, ok := r.commands[command]
	return handler, ok
}

func (r *Registry) All() []port.Command {
	all := make([]port.Command, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.commands[name])
	}

	return all
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)

	return keys
}
