package middlewares

import (
	"sync"
	"time"

	"github.com/fragrancepalette/backend/server/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit caps each client IP at max requests per window, answering 429
// once the budget is spent. Counters live in process memory and reset on
// restart; there is no cross-instance coordination.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	refill := rate.Every(window / time.Duration(max))
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(refill, max)
			limiters[ip] = limiter
		}
		mu.Unlock()
		if !limiter.Allow() {
			common.ErrorStrResp(c, "Too many requests, please try again later", 429)
			c.Abort()
			return
		}
		c.Next()
	}
}
