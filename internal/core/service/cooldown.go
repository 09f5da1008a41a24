package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedUsers caps how many per-user limiters are kept around.
const maxTrackedUsers = 4096

// Cooldown limits how fast a single user can fire commands. The zero rate disables limiting.
type Cooldown struct {
	mutex    sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewCooldown(perMinute float64, burst int) *Cooldown {
	if burst < 1 {
		burst = 1
	}

	return &Cooldown{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perMinute / time.Minute.Seconds()),
		burst:    burst,
	}
}

// Allow reports whether userID may run another command now and consumes a token if so.
func (c *Cooldown) Allow(userID string) bool {
	if c == nil || c.limit <= 0 || userID == "" {
		return true
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	l, ok := c.limiters[userID]
	if !ok {
		if len(c.limiters) >= maxTrackedUsers {
			c.prune()
		}

		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[userID] = l
	}

	return l.Allow()
}

// prune drops limiters that have refilled completely, then evicts arbitrary ones if still at the cap.
func (c *Cooldown) prune() {
	for k, l := range c.limiters {
		if l.Tokens() >= float64(c.burst) {
			delete(c.limiters, k)
		}
	}

	for k := range c.limiters {
		if len(c.limiters) < maxTrackedUsers {
			break
		}
		delete(c.limiters, k)
	}
}
