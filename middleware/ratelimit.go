package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// sweepEvery is how many Allow calls pass between evictions of idle callers.
const sweepEvery = 1024

// RateLimiter is a sliding-window limiter keyed by caller.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	calls    int
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a request for key. When the key is over budget it returns false and how long
// until the oldest request leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.calls++
	if rl.calls%sweepEvery == 0 {
		rl.sweep(cutoff)
	}

	requests := trim(rl.requests[key], cutoff)
	if len(requests) >= rl.limit {
		rl.requests[key] = requests
		return false, requests[0].Sub(cutoff)
	}
	rl.requests[key] = append(requests, now)
	return true, 0
}

// Tracked returns the number of callers currently held in memory.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

func (rl *RateLimiter) sweep(cutoff time.Time) {
	for key, requests := range rl.requests {
		if len(trim(requests, cutoff)) == 0 {
			delete(rl.requests, key)
		}
	}
}

func trim(requests []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	return requests[i:]
}

// RateLimitMiddleware rejects requests over budget with 429. Authenticated callers are limited by
// user id, everyone else by client IP. A nil limiter disables limiting.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID := c.GetString(ContextUserID); userID != "" {
			key = "user:" + userID
		}

		if ok, wait := rl.Allow(key); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
