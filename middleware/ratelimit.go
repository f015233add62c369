package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// GlobalRateLimiter bounds requests per client IP on every route.
func GlobalRateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests. Please try again later.", nil)
		},
	})
}

// RedisLimiter is a fixed window counter shared by every instance of the server.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{client: client, script: redis.NewScript(rateLimitScript)}
}

// Allow fails open when redis is unreachable.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		log.Printf("[RATELIMIT] redis unavailable, allowing %s: %v", key, err)
		return true
	}
	return allowed == 1
}

// PerUserRateLimiter limits an authenticated route per user. With a redis
// limiter the window is shared across instances, otherwise it is kept in memory.
func PerUserRateLimiter(name string, redisLimiter *RedisLimiter, max int, window time.Duration) fiber.Handler {
	keyFor := func(c *fiber.Ctx) string {
		if actor := CurrentActor(c); actor.Authenticated() {
			return fmt.Sprintf("ratelimit:%s:user:%d", name, actor.UserID)
		}
		return fmt.Sprintf("ratelimit:%s:ip:%s", name, c.IP())
	}
	tooMany := func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests. Please try again later.", nil)
	}

	if redisLimiter == nil {
		return limiter.New(limiter.Config{
			Max:          max,
			Expiration:   window,
			KeyGenerator: keyFor,
			LimitReached: tooMany,
		})
	}
	return func(c *fiber.Ctx) error {
		if !redisLimiter.Allow(c.UserContext(), keyFor(c), max, window) {
			return tooMany(c)
		}
		return c.Next()
	}
}
