package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// maxContextBytes caps how much leading document text goes into the
// completion prompt. Older code above the window rarely changes what
// the next line should be.
const maxContextBytes = 2000

// Completer issues one lightweight completion call.
type Completer interface {
	Complete(ctx context.Context, providerID, promptText string) (string, error)
}

// Service ties the trigger detector, the cache, and the provider
// client into one inline-completion entry point.
type Service struct {
	detector *Detector
	cache    *Cache
	client   Completer
	logger   *slog.Logger
}

// NewService creates a completion service.
func NewService(detector *Detector, cache *Cache, client Completer) *Service {
	return &Service{
		detector: detector,
		cache:    cache,
		client:   client,
		logger:   slog.Default().With("component", "completion"),
	}
}

// Complete returns an inline completion for the cursor position, or
// ok=false when the context does not warrant one. Cacheable kinds are
// served from the cache when possible; fresh results are cached under
// the detector's key.
func (s *Service) Complete(ctx context.Context, providerID, document string, pos Position) (string, bool, error) {
	decision := s.detector.Detect(document, pos)
	if !decision.Trigger {
		return "", false, nil
	}

	if decision.CacheKey != "" {
		if value, ok := s.cache.Get(decision.CacheKey); ok {
			s.logger.Debug("completion served from cache",
				"kind", decision.Kind,
				"key", decision.CacheKey,
			)
			return value, true, nil
		}
	}

	prompt := buildPrompt(document, pos, decision.Kind)
	text, err := s.client.Complete(ctx, providerID, prompt)
	if err != nil {
		return "", false, fmt.Errorf("completion request failed: %w", err)
	}

	if decision.CacheKey != "" {
		s.cache.Set(decision.CacheKey, text)
	}
	return text, true, nil
}

// buildPrompt assembles the provider prompt from the document text
// before the cursor plus a kind-specific instruction.
func buildPrompt(document string, pos Position, kind Kind) string {
	lines := strings.Split(document, "\n")
	if pos.Line < len(lines) {
		line := lines[pos.Line]
		col := pos.Column
		if col > len(line) {
			col = len(line)
		}
		lines = append(lines[:pos.Line], line[:col])
	}
	window := strings.Join(lines, "\n")
	if len(window) > maxContextBytes {
		window = window[len(window)-maxContextBytes:]
	}

	var instruction string
	switch kind {
	case KindComment:
		instruction = "Write the Arduino code described by the trailing comment."
	case KindFunctionDeclaration, KindArduinoFunction:
		instruction = "Complete the body of the function being declared."
	case KindMethod:
		instruction = "Complete the method call on the trailing object."
	default:
		instruction = "Continue this Arduino sketch with the next logical line."
	}

	return fmt.Sprintf("%s Reply with code only, no explanation.\n\n%s", instruction, window)
}
