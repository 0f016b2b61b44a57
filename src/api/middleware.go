package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/chatify/backend/src/store"
)

const localsUserKey = "currentUser"

// requireAuth resolves the Authorization bearer token and stores the
// authenticated user in request locals. Any verifier failure yields a
// uniform 401 without detail leakage.
func (a *API) requireAuth(c fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	credential := strings.TrimPrefix(header, "Bearer ")
	if credential == header {
		credential = ""
	}

	user, err := a.verifier.Resolve(c.Context(), credential)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "could not validate credentials",
		})
	}

	c.Locals(localsUserKey, user)
	return c.Next()
}

// currentUser returns the user placed in locals by requireAuth.
func currentUser(c fiber.Ctx) store.User {
	user, _ := c.Locals(localsUserKey).(store.User)
	return user
}
