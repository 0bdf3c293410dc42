package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-ant-api03-abcd1234", "****1234"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetupRedactsSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("storing credential",
		"provider", "claude",
		"api_key", "sk-ant-api03-abcd1234",
		"claude_api_key", "sk-ant-api03-efgh5678",
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if got := entry["api_key"]; got != "****1234" {
		t.Errorf("api_key logged as %q, want masked", got)
	}
	if got := entry["claude_api_key"]; got != "****5678" {
		t.Errorf("claude_api_key logged as %q, want masked", got)
	}
	if got := entry["provider"]; got != "claude" {
		t.Errorf("non-sensitive attr changed: %q", got)
	}
	if strings.Contains(buf.String(), "sk-ant-api03") {
		t.Error("raw key material leaked into log output")
	}
}

func TestSetupLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level records not filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestSetupRejectsUnknownLevelAndFormat(t *testing.T) {
	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := Setup(Config{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRedactAttrLeavesNonStringValues(t *testing.T) {
	attr := slog.Int("token_count", 42)
	if got := redactAttr(nil, attr); got.Value.Kind() != slog.KindInt64 {
		t.Errorf("non-string attr was rewritten: %v", got)
	}
}
