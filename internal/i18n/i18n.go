// Package i18n resolves user-visible message strings from embedded locale
// catalogs. The active locale also participates in the page-cache
// fingerprint, so resolution must be deterministic.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localeFS embed.FS

// DefaultLocale is used when negotiation finds no supported locale.
const DefaultLocale = "en"

var catalogs = map[string]map[string]string{}

func init() {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded locales unreadable: %v", err))
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".yml") {
			continue
		}
		raw, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			panic(fmt.Sprintf("i18n: cannot read catalog %s: %v", name, err))
		}
		catalog := map[string]string{}
		if err := yaml.Unmarshal(raw, &catalog); err != nil {
			panic(fmt.Sprintf("i18n: malformed catalog %s: %v", name, err))
		}
		catalogs[strings.TrimSuffix(name, ".yml")] = catalog
	}
}

// Supported reports whether a catalog exists for the locale.
func Supported(locale string) bool {
	_, ok := catalogs[locale]
	return ok
}

// T returns the message for key in the given locale, falling back to the
// default locale and finally to the key itself.
func T(locale, key string) string {
	if c, ok := catalogs[locale]; ok {
		if msg, ok := c[key]; ok {
			return msg
		}
	}
	if c, ok := catalogs[DefaultLocale]; ok {
		if msg, ok := c[key]; ok {
			return msg
		}
	}
	return key
}

// Negotiate picks the locale for a request: explicit query value first,
// then cookie, then the first supported entry of the Accept-Language
// header, then the configured default.
func Negotiate(queryLocale, cookieLocale, acceptLanguage, configured string) string {
	if Supported(queryLocale) {
		return queryLocale
	}
	if Supported(cookieLocale) {
		return cookieLocale
	}
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if i := strings.IndexByte(lang, '-'); i > 0 {
			lang = lang[:i]
		}
		if Supported(lang) {
			return lang
		}
	}
	if Supported(configured) {
		return configured
	}
	return DefaultLocale
}
