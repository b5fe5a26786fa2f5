package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ConnLimit 按客户端 IP 限制新建长连接的频率，window 内最多 limit 次
func ConnLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	var limiters sync.Map // ip -> *rate.Limiter
	every := rate.Every(window / time.Duration(limit))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		actual, _ := limiters.LoadOrStore(ip, rate.NewLimiter(every, limit))
		if !actual.(*rate.Limiter).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "连接过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
