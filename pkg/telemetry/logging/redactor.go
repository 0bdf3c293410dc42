package logging

import (
	"log/slog"
	"strings"
)

// sensitiveKeys are attribute names whose values are never logged in
// full. Matching is case-insensitive and substring-based, so
// "api_key", "claude_api_key", and "apikey" are all caught.
var sensitiveKeys = []string{"api_key", "apikey", "token", "secret", "password"}

// redactAttr is a slog ReplaceAttr hook that masks credential values.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			a.Value = slog.StringValue(MaskSecret(a.Value.String()))
			return a
		}
	}
	return a
}

// MaskSecret hides all but the last four characters of a secret.
// Short secrets are masked entirely.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
