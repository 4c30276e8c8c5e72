// Package i18n holds the English and Swahili text served by the API and
// the helpers that pick a language for a request.
package i18n

import (
    "fmt"
    "strings"

    "golang.org/x/text/language"
    "golang.org/x/text/message"
)

// Supported language codes.
const (
    English = "en"
    Swahili = "sw"
)

var (
    supported = []language.Tag{language.English, language.Swahili}
    codes     = []string{English, Swahili}
    matcher   = language.NewMatcher(supported)
)

// Normalize maps any tag-like string ("sw-TZ", "EN", "swahili") onto a
// supported code, falling back to English.
func Normalize(s string) string {
    s = strings.ToLower(strings.TrimSpace(s))
    switch {
    case s == "":
        return English
    case strings.HasPrefix(s, "sw"):
        return Swahili
    case strings.HasPrefix(s, "en"):
        return English
    }
    return Negotiate("", s)
}

// Supported reports whether code is exactly one of the supported codes.
func Supported(code string) bool {
    return code == English || code == Swahili
}

// Negotiate picks the response language.  An explicit query value wins
// over the Accept-Language header; anything unmatched yields English.
func Negotiate(query, acceptLanguage string) string {
    if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
        if strings.HasPrefix(q, "sw") {
            return Swahili
        }
        if strings.HasPrefix(q, "en") {
            return English
        }
    }
    if strings.TrimSpace(acceptLanguage) == "" {
        return English
    }
    _, idx := language.MatchStrings(matcher, acceptLanguage)
    if idx < 0 || idx >= len(codes) {
        return English
    }
    return codes[idx]
}

// T returns the text for key in lang, formatted with args.  Missing Swahili
// entries fall back to English and unknown keys are returned verbatim.
func T(lang, key string, args ...any) string {
    entry, ok := catalog[key]
    if !ok {
        return key
    }
    text, ok := entry[Normalize(lang)]
    if !ok || text == "" {
        text = entry[English]
    }
    if len(args) == 0 {
        return text
    }
    return fmt.Sprintf(text, args...)
}

// Has reports whether key exists in the catalog.
func Has(key string) bool {
    _, ok := catalog[key]
    return ok
}

// FormatTZS renders an amount of Tanzanian shillings with digit grouping,
// e.g. "TSh 450,000".
func FormatTZS(amount uint64) string {
    p := message.NewPrinter(language.English)
    return p.Sprintf("TSh %d", amount)
}
