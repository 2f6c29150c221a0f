package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
)

const (
	localUserID   = "user_id"
	localIdentity = "identity"
)

// authRequired 從 Authorization: Bearer 或 cookie 取得 token
func (s *Server) authRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = strings.TrimSpace(c.Cookies(s.opts.CookieName))
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		id, err := s.authn.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		c.Locals(localUserID, id.UserID)
		c.Locals(localIdentity, *id)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals(localUserID).(string)
	return uid
}

func identity(c *fiber.Ctx) auth.Identity {
	id, _ := c.Locals(localIdentity).(auth.Identity)
	return id
}

// rateLimitWrite 寫入類 API 每個使用者每分鐘最多 max 次，max <= 0 不限制
func rateLimitWrite(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid := userID(c); uid != "" {
				return uid
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests"})
		},
	})
}

func corsMiddleware(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		// 帶 cookie 時不可用萬用字元
		AllowCredentials: origins != "*",
	})
}
