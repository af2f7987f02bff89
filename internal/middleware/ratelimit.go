package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	httpmiddleware "github.com/payamancoders/trustcheck/internal/http/middleware"
)

// KeyFunc derives the throttling bucket for a request.
type KeyFunc func(c *gin.Context) string

// ByClientIP buckets requests by the resolved client address.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUser buckets authenticated requests by user id and falls back to the client address.
func ByUser(c *gin.Context) string {
	if identity, ok := httpmiddleware.GetIdentity(c); ok {
		return "user:" + strconv.FormatInt(identity.UserID, 10)
	}
	return ByClientIP(c)
}

// RateLimiter enforces per-client throttling.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	window  time.Duration
	key     KeyFunc
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// ReportRateLimiter is the stricter per-user budget applied to employer reports.
type ReportRateLimiter struct {
	*RateLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter for the provided requests-per-minute budget. A nil key
// buckets by client IP. A non-positive budget disables throttling.
func NewRateLimiter(requestsPerMinute int, key KeyFunc) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	if key == nil {
		key = ByClientIP
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		window:  5 * time.Minute,
		key:     key,
		clients: make(map[string]*clientLimiter),
	}
}

// NewReportRateLimiter buckets report submissions per user.
func NewReportRateLimiter(requestsPerMinute int) *ReportRateLimiter {
	return &ReportRateLimiter{RateLimiter: NewRateLimiter(requestsPerMinute, ByUser)}
}

// Handler returns the gin middleware enforcing throttling behaviour.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		limiter := r.getLimiter(r.key(c))
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limited",
				"error_description": "Too many requests. Please slow down.",
			})
			return
		}

		c.Next()
	}
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(r.limit, r.burst)
	r.clients[key] = &clientLimiter{limiter: limiter, lastSeen: now}
	r.cleanupLocked(now)
	return limiter
}

func (r *RateLimiter) cleanupLocked(now time.Time) {
	for key, entry := range r.clients {
		if now.Sub(entry.lastSeen) > r.window {
			delete(r.clients, key)
		}
	}
}
