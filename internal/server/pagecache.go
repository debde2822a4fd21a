package server

import (
	"inkwell/internal/cache"

	"github.com/gofiber/fiber/v2"
)

// cachedPage is the stored form of a rendered read-only response.
type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache serves GET responses from the cache when an entry exists for
// the request fingerprint, and stores successful renders on miss. The
// fingerprint covers path, query, the requesting identity's roles, the
// locale and any pending flash, so no variant is ever served to the
// wrong audience. Entries expire by TTL only; a write can be invisible
// to an already-cached page until then.
func (s *Server) PageCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		flash := c.Cookies(flashCookie)
		key := cache.PageKey(c.Path(), c.Queries(), currentRoles(c), requestLocale(c), flash)

		var page cachedPage
		found, err := cache.GetJSON(c.UserContext(), key, &page)
		if err == nil && found {
			// The handler chain is skipped on a hit, so the one-time
			// notice has to be consumed here or it repeats on every hit.
			if flash != "" {
				popFlash(c)
			}
			c.Set(fiber.HeaderContentType, page.ContentType)
			return c.Status(page.Status).Send(page.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			stored := cachedPage{
				Status:      fiber.StatusOK,
				ContentType: string(c.Response().Header.ContentType()),
				Body:        append([]byte(nil), c.Response().Body()...),
			}
			_ = cache.SetJSON(c.UserContext(), key, stored, cache.PageTTL)
		}
		return nil
	}
}
