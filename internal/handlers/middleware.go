package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID      = "userId"
	localDisplayName = "displayName"
)

// RequireAuth verifies the identity provider's bearer token and stores the
// verified user id (and display name, when the token carries one) on the
// request. Identity itself is the provider's concern; past this point the
// user id is trusted.
func RequireAuth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(localUserID, sub)
		if name, ok := claims["name"].(string); ok {
			c.Locals(localDisplayName, name)
		}

		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func displayName(c *fiber.Ctx) string {
	name, _ := c.Locals(localDisplayName).(string)
	return name
}
