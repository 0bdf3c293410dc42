package usage

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// statsFileMode keeps the usage file owner-only, matching the
// credential files.
const statsFileMode = 0o600

// saver is the debounced, crash-safe write queue behind the tracker.
//
// Schedule arms a debounce timer; bursts within the window coalesce
// into one write of the latest snapshot. While a write is in flight,
// further requests only mark a pending flag, and completion triggers
// exactly one follow-up drain. There is never more than one physical
// write at a time.
type saver struct {
	path     string
	debounce time.Duration
	snapshot func() ([]byte, error)
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	writing bool
	pending bool
	done    sync.WaitGroup

	// Seams for failure injection in tests.
	writeData  func(path string, data []byte, mode os.FileMode) error
	renameFile func(oldpath, newpath string) error
}

func newSaver(path string, debounce time.Duration, snapshot func() ([]byte, error)) *saver {
	return &saver{
		path:       path,
		debounce:   debounce,
		snapshot:   snapshot,
		logger:     slog.Default().With("component", "usage.saver"),
		writeData:  os.WriteFile,
		renameFile: os.Rename,
	}
}

// Schedule requests a save. Calls within the debounce window coalesce;
// calls during an in-flight write queue exactly one follow-up drain.
func (s *saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writing {
		s.pending = true
		return
	}
	if s.timer == nil {
		s.done.Add(1)
		s.timer = time.AfterFunc(s.debounce, s.flush)
	}
}

// Flush cancels the debounce window and drains synchronously.
func (s *saver) Flush() {
	s.mu.Lock()
	if s.timer != nil && s.timer.Stop() {
		s.timer = nil
		s.mu.Unlock()
		s.flushOwned()
		return
	}
	s.mu.Unlock()

	// A flush is already running (or none was armed); wait it out.
	s.done.Wait()
}

// flush is the timer callback. It owns one s.done token.
func (s *saver) flush() {
	s.mu.Lock()
	s.timer = nil
	if s.writing {
		// Should not happen (the timer is only armed while idle), but
		// degrade to a pending drain rather than writing concurrently.
		s.pending = true
		s.mu.Unlock()
		s.done.Done()
		return
	}
	s.mu.Unlock()
	s.flushOwned()
}

// flushOwned performs the write and exactly one follow-up drain when
// requests arrived mid-write. The writing flag stays set across the
// drain so no second writer can start. Caller owns one s.done token.
func (s *saver) flushOwned() {
	s.mu.Lock()
	s.writing = true
	s.pending = false
	s.mu.Unlock()

	s.writeOnce()

	s.mu.Lock()
	again := s.pending
	s.pending = false
	s.mu.Unlock()

	if again {
		s.writeOnce()
	}

	s.mu.Lock()
	s.writing = false
	leftover := s.pending
	s.pending = false
	s.mu.Unlock()

	s.done.Done()

	// A request that arrived during the drain write starts a fresh
	// debounce cycle instead of being dropped.
	if leftover {
		s.Schedule()
	}
}

// writeOnce snapshots and writes. All failures are swallowed: the
// tracker keeps operating in memory.
func (s *saver) writeOnce() {
	data, err := s.snapshot()
	if err != nil {
		s.logger.Warn("failed to serialize usage snapshot", "error", err)
		return
	}
	if err := s.atomicWrite(data); err != nil {
		s.logger.Warn("failed to persist usage stats, continuing in-memory only",
			"path", s.path,
			"error", err,
		)
	}
}

// atomicWrite writes data via temp-file-then-rename so the target is
// never observed half-written. When rename is unavailable it degrades
// to copy-to-backup, direct overwrite, delete-backup. Stray temp and
// backup files are removed after any failure.
func (s *saver) atomicWrite(data []byte) error {
	tmp := s.path + ".tmp"
	if err := s.writeData(tmp, data, statsFileMode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := s.renameFile(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return s.overwriteWithBackup(data)
	}
	return nil
}

// overwriteWithBackup is the degraded strategy for platforms where the
// rename failed: keep a backup copy, overwrite in place, then drop the
// backup. On write failure the backup is renamed back over the target.
func (s *saver) overwriteWithBackup(data []byte) error {
	backup := s.path + ".bak"
	hadOriginal := false
	if err := copyFile(s.path, backup, statsFileMode); err == nil {
		hadOriginal = true
	}

	if err := s.writeData(s.path, data, statsFileMode); err != nil {
		if hadOriginal {
			_ = s.renameFile(backup, s.path)
		} else {
			_ = os.Remove(backup)
		}
		return err
	}

	_ = os.Remove(backup)
	return nil
}

// copyFile copies src to dst with the given mode.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// marshalRecord serialises a record for the stats file.
func marshalRecord(rec Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// loadRecord reads the stats file. Missing or corrupt files yield an
// empty record: the tracker starts fresh instead of failing.
func loadRecord(path string, logger *slog.Logger) Record {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read usage stats file", "path", path, "error", err)
		}
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warn("usage stats file is corrupt, starting fresh", "path", path, "error", err)
		return Record{}
	}
	return rec
}
