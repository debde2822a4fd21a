package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// PageKey builds the cache fingerprint for a rendered read-only page.
// Every input that can change the page's content participates: the request
// path, the query parameters (order-independent), the requesting
// identity's role set, the active locale, and any pending flash message.
// Including the flash state means a page decorated with a one-time notice
// is cached per-notice-state rather than shared.
func PageKey(path string, query map[string]string, roles []string, locale, flash string) string {
	params := make([]string, 0, len(query))
	for k, v := range query {
		params = append(params, k+"="+v)
	}
	sort.Strings(params)

	sortedRoles := append([]string(nil), roles...)
	sort.Strings(sortedRoles)

	raw := strings.Join([]string{
		path,
		strings.Join(params, "&"),
		strings.Join(sortedRoles, ","),
		locale,
		flash,
	}, "|")

	return fmt.Sprintf(pageKeyPrefix, fmt.Sprintf("%x", sha256.Sum256([]byte(raw))))
}
