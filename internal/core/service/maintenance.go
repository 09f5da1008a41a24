package service

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Maintenance is the test mode switch. While enabled, every command except the switch itself is answered with a
// fixed notice. The lock is held only for the read or write, never across I/O.
type Maintenance struct {
	mutex   sync.Mutex
	enabled bool
}

func (m *Maintenance) Enabled() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.enabled
}

func (m *Maintenance) Set(enabled bool) {
	m.mutex.Lock()
	m.enabled = enabled
	m.mutex.Unlock()

	log.Info().Bool("enabled", enabled).Msg("maintenance mode changed")
}
