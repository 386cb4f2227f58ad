package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyMiddleware replays cached responses for POST/PUT/PATCH requests carrying X-Correlation-ID.
// Keys are scoped to the authenticated caller, so it must run after VerifyToken.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", GetUserID(c), correlationID)
		ctx := c.UserContext()

		// Cached responses are hashes of status and body
		cached, err := redisClient.HGetAll(ctx, key).Result()
		if err == nil && cached["body"] != "" {
			status, convErr := strconv.Atoi(cached["status"])
			if convErr != nil {
				status = fiber.StatusOK
			}
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(status).SendString(cached["body"])
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Only successful responses are replayed
		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := c.Response().Body()
			if len(body) > 0 {
				// fasthttp reuses the response buffer once the handler returns
				payload := string(body)
				setCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				_, err := redisClient.TxPipelined(setCtx, func(pipe redis.Pipeliner) error {
					pipe.HSet(setCtx, key, "status", statusCode, "body", payload)
					pipe.Expire(setCtx, key, ttl)
					return nil
				})
				if err != nil {
					logger.Warn("idempotency cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}

		return nil
	}
}
