package middleware

import (
	"inkwell/internal/i18n"

	"github.com/gofiber/fiber/v2"
)

const localeCookie = "locale"

// LocaleKey is the fiber local holding the negotiated locale for the request.
const LocaleKey = "locale"

// Locale negotiates the request locale from the ?locale= query value,
// the locale cookie, then Accept-Language, falling back to the
// configured default. An explicit query value is persisted in the
// cookie so the choice sticks across requests.
func Locale(configuredDefault string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query(localeCookie)
		locale := i18n.Negotiate(query, c.Cookies(localeCookie), c.Get(fiber.HeaderAcceptLanguage), configuredDefault)

		if query != "" && query == locale && c.Cookies(localeCookie) != locale {
			c.Cookie(&fiber.Cookie{
				Name:     localeCookie,
				Value:    locale,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(LocaleKey, locale)
		return c.Next()
	}
}
