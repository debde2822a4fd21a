package server

import (
	"errors"
	"strconv"
	"time"

	"inkwell/internal/i18n"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPaginationLimit = 10
	maxPaginationLimit     = 100
	flashCookie            = "flash"
)

// errResponseWritten signals that the handler already wrote an error
// response and the caller should just return nil.
var errResponseWritten = errors.New("response written")

// parseID reads a positive integer path parameter. On failure it writes
// the 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param+" parameter"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePagination reads page/limit query values into a limit/offset
// pair. Out-of-range values are clamped, never rejected.
func parsePagination(c *fiber.Ctx, defaultLimit int) (limit, offset int) {
	if defaultLimit <= 0 {
		defaultLimit = defaultPaginationLimit
	}
	limit = c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// serviceError maps a service-layer error to its documented status.
func serviceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusOf(err), err)
}

// currentUserID returns the authenticated user id; handlers behind
// AuthRequired can rely on the second return being true.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok
}

func currentRoles(c *fiber.Ctx) []string {
	roles, _ := c.Locals("roles").([]string)
	return roles
}

func requestLocale(c *fiber.Ctx) string {
	if locale, ok := c.Locals(middleware.LocaleKey).(string); ok {
		return locale
	}
	return i18n.DefaultLocale
}

// setFlash stores a localized one-time notice in the flash cookie. The
// next read-only page response carries and clears it.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    message,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// popFlash returns the pending flash message, clearing the cookie.
func popFlash(c *fiber.Ctx) string {
	message := c.Cookies(flashCookie)
	if message != "" {
		c.Cookie(&fiber.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(-time.Hour),
		})
	}
	return message
}
