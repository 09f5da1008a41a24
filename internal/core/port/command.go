package port

import (
	"context"
	"takabot/internal/core/domain"
)

type Command interface {
	// GetCommand retrieves the command name the handler is registered under.
	GetCommand() string
	// Schema returns the platform-facing parameter spec used to build the command manifest.
	Schema() domain.Schema
	// Respond runs the command for one interaction and reports how it went. Handlers deliver their own content on
	// success; failures are delivered by the dispatcher.
	Respond(ctx context.Context, req *domain.Request) domain.Outcome
}

type CommandRegistry interface {
	// Register adds a new command handler to the command registry. Registering the same name twice panics.
	Register(handler Command)
	// Get retrieves a registered Command by name.
	Get(command string) (Command, bool)
	// All returns every registered command in registration order.
	All() []Command
	// ListCommands returns the names of all registered commands.
	ListCommands() []string
}

// DynamicResolver resolves commands that are defined in data rather than compiled in.
type DynamicResolver interface {
	Resolve(ctx context.Context, name string) (Command, bool, error)
}

// ComponentHandler reacts to message component interactions such as button presses.
type ComponentHandler interface {
	// Prefix is matched against the component custom ID.
	Prefix() string
	HandleComponent(ctx context.Context, req *domain.Request) domain.Outcome
}

// MentionResponder answers plain messages that address the bot.
type MentionResponder interface {
	RespondToMention(ctx context.Context, mention *domain.Mention) error
}

// EventStream is the merged, ordered stream of inbound shard events.
type EventStream interface {
	// Next blocks until the next event arrives. A returned error is terminal.
	Next(ctx context.Context) (domain.Event, error)
}
