package completion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeCompleter struct {
	calls    int
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func newTestService(t *testing.T, client *fakeCompleter) *Service {
	t.Helper()
	cache := NewCache(CacheConfig{TTL: time.Hour, SweepInterval: time.Hour})
	t.Cleanup(cache.Stop)
	return NewService(NewDetector(), cache, client)
}

func TestServiceNoTriggerSkipsClient(t *testing.T) {
	client := &fakeCompleter{response: "unused"}
	s := newTestService(t, client)

	doc := "int x = 5;"
	_, ok, err := s.Complete(context.Background(), "claude", doc, cursorAtEnd(doc))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no completion for a plain statement")
	}
	if client.calls != 0 {
		t.Errorf("client called %d times for a non-trigger", client.calls)
	}
}

func TestServiceCachesRepeatedTrigger(t *testing.T) {
	client := &fakeCompleter{response: "digitalWrite(LED_BUILTIN, HIGH);"}
	s := newTestService(t, client)

	doc := "// blink led fast:"
	pos := cursorAtEnd(doc)

	for i := 0; i < 3; i++ {
		got, ok, err := s.Complete(context.Background(), "claude", doc, pos)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got != client.response {
			t.Fatalf("attempt %d: got %q, ok=%v", i, got, ok)
		}
	}

	if client.calls != 1 {
		t.Errorf("client called %d times for identical comments, want 1", client.calls)
	}
}

func TestServiceNeverCachesEmptyLineCompletions(t *testing.T) {
	client := &fakeCompleter{response: "delay(500);"}
	s := newTestService(t, client)

	doc := "void loop() {\n  digitalWrite(13, HIGH);\n  "
	pos := cursorAtEnd(doc)

	for i := 0; i < 2; i++ {
		if _, ok, err := s.Complete(context.Background(), "claude", doc, pos); err != nil || !ok {
			t.Fatalf("attempt %d failed: ok=%v err=%v", i, ok, err)
		}
	}

	if client.calls != 2 {
		t.Errorf("context-dependent completion was cached: %d calls, want 2", client.calls)
	}
}

func TestServicePropagatesClientError(t *testing.T) {
	wantErr := errors.New("rate limited")
	client := &fakeCompleter{err: wantErr}
	s := newTestService(t, client)

	doc := "// blink led fast:"
	_, ok, err := s.Complete(context.Background(), "claude", doc, cursorAtEnd(doc))
	if ok {
		t.Error("expected no completion on client failure")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error not propagated: %v", err)
	}
}

func TestBuildPromptTruncatesLongContext(t *testing.T) {
	long := strings.Repeat("digitalWrite(13, HIGH);\n", 500) + "sensor."
	prompt := buildPrompt(long, cursorAtEnd(long), KindMethod)

	if len(prompt) > maxContextBytes+200 {
		t.Errorf("prompt length %d exceeds context cap", len(prompt))
	}
	if !strings.HasSuffix(prompt, "sensor.") {
		t.Error("prompt must end at the cursor")
	}
}
