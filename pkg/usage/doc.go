// Package usage meters token consumption and cost per provider and
// persists the daily totals durably and cheaply.
//
// Token counts are a deliberate heuristic (chars/4 plus syntax and
// newline weighting), not vendor-exact billing. Costs multiply the
// estimate by the provider's per-token prices.
//
// Persistence never blocks the hot path: updates arm a debounce timer,
// bursts coalesce into a single write, and at most one physical write
// is ever in flight. Writes go to a temporary file that is renamed over
// the target, so the stats file is never observed half-written. Every
// persistence failure is swallowed; the tracker degrades to in-memory
// operation rather than surfacing an error to the caller.
//
// Finished days are archived into a SQLite history database, pruned on
// a cron schedule.
package usage
