package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type QuotaRule struct {
	Name   string // shown in logs
	Limit  int
	Window time.Duration
	KeyFn  func(*gin.Context) string // empty key skips the rule
}

// Quota counts requests per key in Redis with INCR and a window TTL.
// A nil client or an unreachable Redis lets requests through.
func Quota(rdb *redis.Client, rule QuotaRule, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || rule.Limit <= 0 {
			c.Next()
			return
		}
		key := rule.KeyFn(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).WithField("quota", rule.Name).Warn("quota check skipped")
			c.Next()
			return
		}
		if n == 1 {
			_ = rdb.Expire(ctx, key, rule.Window).Err()
		}
		if int(n) > rule.Limit {
			if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())+1))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "quota_exceeded",
				"message": "Usage quota exceeded. Please try again later.",
			})
			return
		}
		c.Header("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit))
		c.Next()
	}
}
