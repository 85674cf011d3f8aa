package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/jwt"
	"github.com/worklane/worklane/pkg/log"
)

// ClaimsKey is the fiber locals key holding the authenticated claims.
const ClaimsKey = "claims"

// SessionKeyPrefix prefixes the redis key a live session token is stored
// under. The entry is written at login and expires with the access token.
const SessionKeyPrefix = "user:session:"

// AuthorizationMiddleware authenticates requests with a Bearer access token.
// When a redis client is provided, the session entry written at login must
// still exist; a nil client skips that check (degraded mode, token-only).
func AuthorizationMiddleware(secretKey string, client *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get("Authorization")
		if aToken == "" {
			return http.WithRepErr(c, http.TokenBeEmpty, c.Path())
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.WithRepErr(c, http.TokenBeEmpty, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErr(c, http.TokenExpired, c.Path())
			}
			log.Errorf("parse token failed: %v", err)
			return http.WithRepErr(c, http.InvalidToken, c.Path())
		}

		if client != nil {
			exists, err := client.Exists(context.Background(), SessionKeyPrefix+claims.UserId).Result()
			if err != nil {
				// session store unavailable: accept the signed token alone
				log.Warnf("redis session check failed: %v", err)
			} else if exists == 0 {
				return http.WithRepErr(c, http.TokenExpired, c.Path())
			}
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// UserID extracts the authenticated user id from fiber locals.
func UserID(c *fiber.Ctx) string {
	claims, ok := c.Locals(ClaimsKey).(*jwt.AuthClaims)
	if !ok {
		return ""
	}
	return claims.UserId
}
