package command

import (
	"context"
	"takabot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockCommand struct {
	command string
}

func (m *MockCommand) Respond(_ context.Context, _ *domain.Request) domain.Outcome {
	return domain.Ok()
}

func (m *MockCommand) GetCommand() string {
	return m.command
}

func (m *MockCommand) Schema() domain.Schema {
	return domain.Schema{Name: m.command}
}

func TestRegister(t *testing.T) {
	cr := &Registry{}
	mr := &MockCommand{command: "test"}

	cr.Register(mr)
	assert.Len(t, cr.commands, 1)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	cr := &Registry{}
	cr.Register(&MockCommand{command: "test"})

	assert.PanicsWithValue(t, `command registry: duplicate command "test"`, func() {
		cr.Register(&MockCommand{command: "test"})
	})
	assert.Len(t, cr.commands, 1)
}

func TestRegisterEmptyNamePanics(t *testing.T) {
	cr := &Registry{}

	assert.Panics(t, func() {
		cr.Register(&MockCommand{})
	})
}

func TestGetNotRegistered(t *testing.T) {
	cr := &Registry{}

	cmd, ok := cr.Get("test")
	assert.False(t, ok)
	assert.Nil(t, cmd)
}

func TestGetCommandNotFound(t *testing.T) {
	cr := &Registry{}
	cr.Register(&MockCommand{command: "test"})

	_, ok := cr.Get("foo")
	assert.False(t, ok)
}

func TestGetCommandFound(t *testing.T) {
	cr := &Registry{}
	mr := &MockCommand{command: "test"}

	cr.Register(mr)

	cmd, ok := cr.Get("test")
	require.True(t, ok)
	assert.Same(t, mr, cmd)
	assert.Equal(t, "test", cmd.GetCommand())
}

func TestAllKeepsRegistrationOrder(t *testing.T) {
	cr := &Registry{}
	names := []string{"ping", "random", "8ball", "help"}
	for _, name := range names {
		cr.Register(&MockCommand{command: name})
	}

	all := cr.All()
	require.Len(t, all, len(names))
	for i, cmd := range all {
		assert.Equal(t, names[i], cmd.GetCommand())
	}
}

func TestListCommands(t *testing.T) {
	cr := &Registry{}
	cr.Register(&MockCommand{command: "foo"})
	cr.Register(&MockCommand{command: "bar"})

	list := cr.ListCommands()

	assert.Equal(t, []string{"foo", "bar"}, list)

	list[0] = "mutated"
	assert.Equal(t, []string{"foo", "bar"}, cr.ListCommands())
}
