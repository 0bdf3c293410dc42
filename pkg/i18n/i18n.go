// Package i18n provides user-facing message lookup with printf-style
// arguments. A built-in English catalog is always present; a YAML
// locale file can overlay any subset of it. Unknown keys fall back to
// the key itself so a missing translation never breaks output.
package i18n

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Translator resolves dotted message keys against a layered catalog.
type Translator struct {
	mu       sync.RWMutex
	locale   string
	messages map[string]string
}

// NewTranslator returns a translator with the built-in English catalog.
func NewTranslator() *Translator {
	messages := make(map[string]string, len(englishCatalog))
	for key, value := range englishCatalog {
		messages[key] = value
	}
	return &Translator{
		locale:   "en",
		messages: messages,
	}
}

// LoadLocale overlays translations from a YAML file. The file holds
// nested maps; keys are flattened with dots ("errors.api_key"). Keys
// absent from the file keep their English text.
func (tr *Translator) LoadLocale(locale, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read locale file: %w", err)
	}

	var nested map[string]any
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("failed to parse locale file %s: %w", path, err)
	}

	flat := make(map[string]string)
	flatten("", nested, flat)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	for key, value := range flat {
		if _, known := englishCatalog[key]; !known {
			slog.Debug("locale file defines unknown message key", "key", key, "locale", locale)
		}
		tr.messages[key] = value
	}
	tr.locale = locale
	return nil
}

// Locale returns the active locale code.
func (tr *Translator) Locale() string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.locale
}

// T resolves key and formats it with args. A missing key returns the
// key itself.
func (tr *Translator) T(key string, args ...any) string {
	tr.mu.RLock()
	text, ok := tr.messages[key]
	tr.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// flatten walks a nested YAML map and writes dotted leaf keys into out.
func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case string:
			out[full] = v
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

var (
	defaultTranslator     *Translator
	defaultTranslatorOnce sync.Once
)

// Default returns the process-wide translator.
func Default() *Translator {
	defaultTranslatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// T resolves key against the default translator.
func T(key string, args ...any) string {
	return Default().T(key, args...)
}

// Normalize maps locale identifiers like "de_DE.UTF-8" to the bare
// language code.
func Normalize(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "_.-"); i > 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
