package i18n

// englishCatalog is the built-in message set. Locale files overlay it;
// anything they omit stays English.
var englishCatalog = map[string]string{
	"errors.api_key":          "No API key configured for %s. Store one with 'aiduino providers set-key %s'.",
	"errors.rate_limit":       "%s is rate limiting requests. Wait a moment or switch providers.",
	"errors.server":           "%s reported a server error. The service may be down.",
	"errors.network":          "Could not reach %s. Check your network connection.",
	"errors.timeout":          "The request to %s timed out.",
	"errors.parse":            "Unexpected response from %s.",
	"errors.unknown_provider": "Unknown provider %q.",
	"errors.cancelled":        "Request cancelled.",
	"errors.busy":             "Operation %q is already running.",

	"ask.thinking":  "Asking %s...",
	"ask.no_prompt": "Nothing to ask. Pass a prompt or pipe one on stdin.",

	"usage.today_header":   "Usage for %s",
	"usage.totals":         "Total: %d input tokens, %d output tokens, $%.4f",
	"usage.provider_line":  "%-10s %8d in %8d out  $%.4f",
	"usage.history_header": "Archived usage (newest first)",
	"usage.reset_done":     "Usage counters reset.",
	"usage.empty":          "No usage recorded yet.",

	"providers.list_header": "Available providers",
	"providers.selected":    "Selected provider: %s",
	"providers.none":        "No provider selected.",
	"providers.select_done": "Now using %s.",
	"providers.key_stored":  "API key stored for %s.",
	"providers.key_missing": "no key",
	"providers.key_present": "key stored",
}
