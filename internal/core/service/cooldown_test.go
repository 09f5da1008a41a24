package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCooldown_Allow(t *testing.T) {
	c := NewCooldown(1, 2)

	assert.True(t, c.Allow("1"))
	assert.True(t, c.Allow("1"))
	assert.False(t, c.Allow("1"), "burst exhausted")
	assert.True(t, c.Allow("2"), "other users are unaffected")
}

func TestCooldown_Disabled(t *testing.T) {
	var nilCooldown *Cooldown

	tests := []struct {
		name     string
		cooldown *Cooldown
		user     string
	}{
		{name: "nil cooldown", cooldown: nilCooldown, user: "1"},
		{name: "zero rate", cooldown: NewCooldown(0, 1), user: "1"},
		{name: "unknown user", cooldown: NewCooldown(1, 1), user: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for range 10 {
				assert.True(t, tc.cooldown.Allow(tc.user))
			}
		})
	}
}

func TestCooldown_Prune(t *testing.T) {
	c := NewCooldown(1, 1)

	for i := range maxTrackedUsers + 10 {
		c.Allow(fmt.Sprintf("user-%d", i))
	}

	assert.LessOrEqual(t, len(c.limiters), maxTrackedUsers)
}
