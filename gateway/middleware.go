package gateway

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	headerRequestID = "X-Request-ID"
	headerGuestID   = "X-Guest-ID"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxGuest     = "guest"

	guestPrefix     = "guest:"
	maxGuestIDLen   = 64
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepGap = time.Minute
)

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()

		logger.Info("HTTP request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{
			Success: false,
			Message: "Internal server error",
		})
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// requireAuth admits only requests with a valid bearer token.
func (g *Gateway) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			g.respondError(c, apperr.Unauthorized("Authentication required"))
			return
		}
		if !g.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// optionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through.
func (g *Gateway) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := g.tokens.Parse(token); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxRole, claims.Role)
			}
		}
		c.Next()
	}
}

// cartOwner accepts a bearer token or, failing that, an X-Guest-ID header.
// Guests own carts under "guest:<id>".
func (g *Gateway) cartOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if !g.authenticate(c, token) {
				return
			}
			c.Next()
			return
		}

		guest := strings.TrimSpace(c.GetHeader(headerGuestID))
		if guest == "" || len(guest) > maxGuestIDLen {
			g.respondError(c, apperr.Unauthorized("Authentication or guest id required"))
			return
		}
		c.Set(ctxUserID, guestPrefix+guest)
		c.Set(ctxGuest, true)
		c.Next()
	}
}

func (g *Gateway) authenticate(c *gin.Context, token string) bool {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		g.respondError(c, apperr.Unauthorized("Invalid or expired token"))
		return false
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	return true
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client ip.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	lastSweep time.Time
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > limiterSweepGap {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, envelope{
				Success: false,
				Message: "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
