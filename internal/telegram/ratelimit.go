package telegram

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatLimiter rate-limits inbound updates per chat so one noisy chat
// cannot starve the others.
type ChatLimiter struct {
	limiters map[int64]*chatLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
}

func NewChatLimiter(rps float64, burst int) *ChatLimiter {
	cl := &ChatLimiter{
		limiters: make(map[int64]*chatLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		cleanup:  5 * time.Minute,
	}

	go cl.cleanupLimiters()
	return cl
}

func (cl *ChatLimiter) cleanupLimiters() {
	ticker := time.NewTicker(cl.cleanup)
	defer ticker.Stop()
	for range ticker.C {
		cl.mu.Lock()
		for key, l := range cl.limiters {
			if time.Since(l.lastSeen) > cl.cleanup {
				delete(cl.limiters, key)
			}
		}
		cl.mu.Unlock()
	}
}

// Allow reports whether the chat may send another update right now.
func (cl *ChatLimiter) Allow(chatID int64) bool {
	cl.mu.Lock()
	l, exists := cl.limiters[chatID]
	if !exists {
		l = &chatLimiter{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.limiters[chatID] = l
	}
	l.lastSeen = time.Now()
	cl.mu.Unlock()

	return l.limiter.Allow()
}
