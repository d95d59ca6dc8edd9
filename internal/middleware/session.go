package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/proctorly/exam-api/internal/utils"
)

// SessionVerifier checks that a token's session id has not been revoked.
type SessionVerifier interface {
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

// StudentProtected validates the bearer token and its backing session, then
// binds the student's identity to the request.
func StudentProtected(secret string, sessions SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		studentID, err := subjectFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		sessionID, _ := claims["jti"].(string)
		if sessions != nil {
			active, err := sessions.SessionExists(c.Context(), sessionID)
			if err != nil {
				return utils.SendError(c, fiber.StatusInternalServerError, "session lookup failed")
			}
			if !active {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired or revoked")
			}
		}

		c.Locals("student_id", studentID)
		c.Locals("session_id", sessionID)
		if sid, ok := claims["sid"].(string); ok {
			c.Locals("student_sid", sid)
		}

		return c.Next()
	}
}

// StudentID extracts the authenticated student's id from the request.
func StudentID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("student_id").(uint)
	return id, ok
}

// SessionID extracts the session identifier bound to the request token.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals("session_id").(string); ok {
		return id
	}
	return ""
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	value, ok := claims["sub"]
	if !ok {
		return 0, fmt.Errorf("missing subject")
	}

	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
