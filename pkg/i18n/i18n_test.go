package i18n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranslatorBuiltinLookup(t *testing.T) {
	tr := NewTranslator()

	got := tr.T("errors.rate_limit", "Claude")
	if !strings.Contains(got, "Claude") {
		t.Errorf("T did not format argument: %q", got)
	}
	if strings.Contains(got, "%s") {
		t.Errorf("unformatted verb left in message: %q", got)
	}
}

func TestTranslatorUnknownKeyFallsBackToKey(t *testing.T) {
	tr := NewTranslator()

	if got := tr.T("no.such.key"); got != "no.such.key" {
		t.Errorf("T = %q, want the key itself", got)
	}
}

func TestTranslatorLocaleOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "de.yaml")
	locale := `
errors:
  cancelled: "Anfrage abgebrochen."
ask:
  thinking: "Frage %s..."
`
	if err := os.WriteFile(path, []byte(locale), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := NewTranslator()
	if err := tr.LoadLocale("de", path); err != nil {
		t.Fatal(err)
	}

	if got := tr.T("errors.cancelled"); got != "Anfrage abgebrochen." {
		t.Errorf("overlay not applied: %q", got)
	}
	if got := tr.T("ask.thinking", "Claude"); got != "Frage Claude..." {
		t.Errorf("overlay with argument = %q", got)
	}
	// Keys missing from the overlay keep their English text.
	if got := tr.T("usage.reset_done"); got != "Usage counters reset." {
		t.Errorf("english fallback lost: %q", got)
	}
	if tr.Locale() != "de" {
		t.Errorf("locale = %q, want de", tr.Locale())
	}
}

func TestTranslatorLoadLocaleErrors(t *testing.T) {
	tr := NewTranslator()

	if err := tr.LoadLocale("de", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing locale file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tr.LoadLocale("de", bad); err == nil {
		t.Error("expected error for malformed locale file")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"de_DE.UTF-8", "de"},
		{"en-US", "en"},
		{"FR", "fr"},
		{" it ", "it"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
