package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/providers"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/metrics"
)

// dayFormat is the calendar-date key used for day rollover.
const dayFormat = "2006-01-02"

// DefaultDebounce is the write-coalescing window.
const DefaultDebounce = 100 * time.Millisecond

// Counters holds the accumulated usage for one provider on one day.
type Counters struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Record is the persisted daily usage snapshot.
type Record struct {
	// Date is the calendar day the counters belong to. A mismatch with
	// the current date zeroes all counters before any accumulation.
	Date string `json:"date"`

	// Providers maps provider IDs to their counters.
	Providers map[string]*Counters `json:"providers"`
}

// Tracker accumulates per-provider token and cost counters and persists
// them through a debounced, crash-safe write queue.
type Tracker struct {
	mu       sync.Mutex
	rec      Record
	registry *providers.Registry
	saver    *saver
	history  *History
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Tracker.
type TrackerOption func(*Tracker)

// WithHistory archives displaced days into the given history store on
// rollover.
func WithHistory(h *History) TrackerOption {
	return func(t *Tracker) { t.history = h }
}

// WithTrackerMetrics wires prometheus metrics into updates.
func WithTrackerMetrics(m *metrics.Metrics) TrackerOption {
	return func(t *Tracker) { t.metrics = m }
}

// WithDebounce overrides the write-coalescing window.
func WithDebounce(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.saver.debounce = d }
}

// NewTracker creates a tracker persisting to path. An existing stats
// file is loaded; a stale date in it resets all counters before use.
// A missing or corrupt file starts fresh rather than failing: usage
// metering must never block the extension.
func NewTracker(path string, registry *providers.Registry, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		registry: registry,
		logger:   slog.Default().With("component", "usage"),
		now:      time.Now,
	}
	t.saver = newSaver(path, DefaultDebounce, t.snapshot)
	for _, opt := range opts {
		opt(t)
	}

	t.rec = loadRecord(path, t.logger)
	t.mu.Lock()
	t.rolloverLocked()
	t.mu.Unlock()

	return t
}

// Update meters one successful call: it estimates tokens for both
// directions, prices them with the provider's rates, and queues a
// debounced save. Unknown provider IDs are counted at zero cost.
func (t *Tracker) Update(providerID, inputText, outputText string) {
	inTokens := EstimateTokens(inputText)
	outTokens := EstimateTokens(outputText)

	var cost float64
	if desc, ok := t.registry.Get(providerID); ok {
		pricing := desc.Pricing()
		cost = float64(inTokens)*pricing.InputPerToken + float64(outTokens)*pricing.OutputPerToken
	}

	t.mu.Lock()
	t.rolloverLocked()
	c := t.countersLocked(providerID)
	c.InputTokens += int64(inTokens)
	c.OutputTokens += int64(outTokens)
	c.Cost += cost
	t.mu.Unlock()

	t.metrics.RecordUsage(providerID, inTokens, outTokens, cost)
	t.saver.Schedule()
}

// Today returns a copy of the provider's counters for the current day.
func (t *Tracker) Today(providerID string) Counters {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	if c, ok := t.rec.Providers[providerID]; ok {
		return *c
	}
	return Counters{}
}

// Totals returns the summed counters across all providers for today.
func (t *Tracker) Totals() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	var total Counters
	for _, c := range t.rec.Providers {
		total.InputTokens += c.InputTokens
		total.OutputTokens += c.OutputTokens
		total.Cost += c.Cost
	}
	return total
}

// Snapshot returns a deep copy of the current record.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

// ResetAll zeroes every counter and queues a save.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	t.rec = Record{
		Date:      t.now().Format(dayFormat),
		Providers: make(map[string]*Counters),
	}
	t.mu.Unlock()

	t.saver.Schedule()
}

// Flush forces any pending save to complete before returning.
func (t *Tracker) Flush() {
	t.saver.Flush()
}

// Close flushes pending writes. The tracker must not be used afterwards.
func (t *Tracker) Close() error {
	t.saver.Flush()
	return nil
}

// rolloverLocked resets the counters when the stored date no longer
// matches the current date, archiving the displaced day first.
// Caller must hold t.mu.
func (t *Tracker) rolloverLocked() {
	today := t.now().Format(dayFormat)
	if t.rec.Date == today && t.rec.Providers != nil {
		return
	}

	if t.history != nil && t.rec.Date != "" && len(t.rec.Providers) > 0 {
		displaced := t.copyLocked()
		if err := t.history.ArchiveDay(context.Background(), displaced.Date, displaced.Providers); err != nil {
			t.logger.Warn("failed to archive usage day",
				"day", displaced.Date,
				"error", err,
			)
		}
	}

	if t.rec.Date != "" && t.rec.Date != today {
		t.logger.Info("usage day rollover", "from", t.rec.Date, "to", today)
	}
	t.rec = Record{
		Date:      today,
		Providers: make(map[string]*Counters),
	}
}

// countersLocked returns the counters for providerID, creating them on
// first use. Caller must hold t.mu.
func (t *Tracker) countersLocked(providerID string) *Counters {
	c, ok := t.rec.Providers[providerID]
	if !ok {
		c = &Counters{}
		t.rec.Providers[providerID] = c
	}
	return c
}

// copyLocked deep-copies the record. Caller must hold t.mu.
func (t *Tracker) copyLocked() Record {
	out := Record{
		Date:      t.rec.Date,
		Providers: make(map[string]*Counters, len(t.rec.Providers)),
	}
	for id, c := range t.rec.Providers {
		copied := *c
		out.Providers[id] = &copied
	}
	return out
}

// snapshot serialises the current record for the saver.
func (t *Tracker) snapshot() ([]byte, error) {
	rec := t.Snapshot()
	return marshalRecord(rec)
}
