package port

import (
	"context"
	"takabot/internal/core/domain"
)

// SillyStore persists data-defined commands.
type SillyStore interface {
	// LookupByName returns the command or nil when none exists under that name.
	LookupByName(ctx context.Context, name string) (*domain.SillyCommand, error)
	List(ctx context.Context) ([]domain.SillyCommand, error)
	Create(ctx context.Context, cmd domain.SillyCommand) (int32, error)
	AddText(ctx context.Context, command string, text string, self bool) (int32, error)
	AddImage(ctx context.Context, command string, path string, preference string, self bool) (int32, error)
	AddPreference(ctx context.Context, command string, preference string) error
	// IncrementUsage bumps and returns how often author used the command on target.
	IncrementUsage(ctx context.Context, commandID int32, authorID, targetID string) (int, error)
}
