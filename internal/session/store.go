// Package session implements the append-only JSONL session log (§3,
// §4.4): scope resolution, append/load/prune/clear/delete, and
// same-process advisory locking per session path.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bashclaw/bashclaw/pkg/models"
)

// pathLock is a refcounted mutex keyed by session path, so concurrent
// handlers for the same identity serialize (§3 invariant 5) while
// handlers for distinct sessions never block each other. This is the
// in-process advisory lock the state directory layout calls for; no
// example in the corpus demonstrates a real cross-process OS-level file
// lock library, so cross-process exclusion is out of scope here (see
// DESIGN.md).
type pathLock struct {
	mu   sync.Mutex
	refs int
}

// Store is the session log manager for one state root directory.
type Store struct {
	root string

	locksMu sync.Mutex
	locks   map[string]*pathLock

	logger *slog.Logger
}

// New returns a Store rooted at root (typically <state_dir>/sessions).
func New(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, locks: map[string]*pathLock{}, logger: logger}
}

// Root returns the store's session root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) lock(path string) func() {
	s.locksMu.Lock()
	l := s.locks[path]
	if l == nil {
		l = &pathLock{}
		s.locks[path] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs <= 0 {
			delete(s.locks, path)
		}
		s.locksMu.Unlock()
	}
}

// Append JSON-encodes entry and writes it as one line under the
// session's exclusive advisory lock (§4.4).
func (s *Store) Append(path string, entry models.Entry) error {
	unlock := s.lock(path)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("session: creating directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("session: opening %s: %w", path, err)
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("session: encoding entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("session: writing %s: %w", path, err)
	}
	return nil
}

// Load reads the last n entries (n<=0 means all) from path. Lines that
// fail to parse are skipped and logged as a warning (SessionCorruption,
// §7); Load never fails on a corrupt trailing line and never
// auto-truncates the file.
func (s *Store) Load(path string, n int) ([]models.Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: opening %s: %w", path, err)
	}
	defer f.Close()

	var entries []models.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e models.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			s.logger.Warn("session: skipping unparseable line", "path", path, "line", lineNo, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// LoadAsMessages projects the last n entries into normalized Messages,
// merging consecutive tool_call/tool_result entries into single
// assistant/user Block-array messages. meta entries are excluded (open
// question (a), resolved in DESIGN.md); orphan tool_call entries (no
// matching tool_result before the next assistant text) are dropped as
// failures.
func (s *Store) LoadAsMessages(path string, n int) ([]models.Message, error) {
	entries, err := s.Load(path, n)
	if err != nil {
		return nil, err
	}
	return ProjectMessages(entries), nil
}

// ProjectMessages is the pure entry->message projection used by
// LoadAsMessages, split out so it can be tested without file I/O.
func ProjectMessages(entries []models.Entry) []models.Message {
	var out []models.Message
	var pendingAssistant *models.Message
	var pendingToolResults *models.Message
	pendingToolIDs := map[string]bool{}

	flushAssistant := func() {
		if pendingAssistant != nil {
			out = append(out, *pendingAssistant)
			pendingAssistant = nil
		}
	}
	flushToolResults := func() {
		if pendingToolResults != nil {
			out = append(out, *pendingToolResults)
			pendingToolResults = nil
			pendingToolIDs = map[string]bool{}
		}
	}
	// A tool_call with no matching tool_result before the next user or
	// assistant text (or the end of the log) is an orphan (failure on
	// reload, §3 invariant 2): drop the assistant message's dangling
	// tool_use blocks rather than surface a call the model will never
	// receive a result for.
	dropOrphanToolUses := func() {
		if pendingAssistant != nil && len(pendingToolIDs) > 0 {
			filtered := pendingAssistant.Content[:0]
			for _, b := range pendingAssistant.Content {
				if b.Type == models.BlockToolUse && pendingToolIDs[b.ID] {
					continue
				}
				filtered = append(filtered, b)
			}
			pendingAssistant.Content = filtered
		}
		pendingToolIDs = map[string]bool{}
	}

	for _, e := range entries {
		switch e.Type {
		case models.EntryUser:
			flushToolResults()
			dropOrphanToolUses()
			flushAssistant()
			out = append(out, models.Message{Role: models.RoleUser, Content: []models.Block{models.TextBlock(e.Content)}})
		case models.EntryAssistant:
			flushToolResults()
			dropOrphanToolUses()
			flushAssistant()
			pendingAssistant = &models.Message{Role: models.RoleAssistant, Content: []models.Block{models.TextBlock(e.Content)}}
		case models.EntryToolCall:
			if pendingAssistant == nil {
				pendingAssistant = &models.Message{Role: models.RoleAssistant}
			}
			pendingAssistant.Content = append(pendingAssistant.Content, models.ToolUseBlock(e.ToolID, e.ToolName, e.ToolInput))
			pendingToolIDs[e.ToolID] = true
		case models.EntryToolResult:
			flushAssistant()
			if pendingToolResults == nil {
				pendingToolResults = &models.Message{Role: models.RoleUser}
			}
			delete(pendingToolIDs, e.ToolID)
			pendingToolResults.Content = append(pendingToolResults.Content, models.ToolResultBlock(e.ToolID, e.Content, e.IsError))
		case models.EntryMeta:
			// excluded from the model-visible sequence, per open question (a)
		}
	}
	dropOrphanToolUses()
	flushAssistant()
	flushToolResults()
	return out
}

// Prune atomically truncates the session file to its last keep entries
// via write-temp + rename.
func (s *Store) Prune(path string, keep int) error {
	unlock := s.lock(path)
	defer unlock()
	return s.pruneLocked(path, keep)
}

func (s *Store) pruneLocked(path string, keep int) error {
	entries, err := s.Load(path, 0)
	if err != nil {
		return err
	}
	if keep <= 0 || len(entries) <= keep {
		return nil
	}
	entries = entries[len(entries)-keep:]
	return s.rewriteLocked(path, entries)
}

func (s *Store) rewriteLocked(path string, entries []models.Entry) error {
	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Clear truncates the session file to zero entries. Idempotent: clearing
// an already-empty or nonexistent session succeeds.
func (s *Store) Clear(path string) error {
	unlock := s.lock(path)
	defer unlock()
	return s.rewriteLocked(path, nil)
}

// Delete unlinks the session file. Deleting a nonexistent file is not
// an error.
func (s *Store) Delete(path string) error {
	unlock := s.lock(path)
	defer unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SessionInfo summarizes one session file for introspection tools.
type SessionInfo struct {
	Path         string    `json:"path"`
	EntryCount   int       `json:"entry_count"`
	LastActivity time.Time `json:"last_activity"`
}

// List walks the store root and returns one SessionInfo per .jsonl
// session file found, for the sessions_list/session_status tools.
func (s *Store) List() ([]SessionInfo, error) {
	var out []SessionInfo
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		entries, loadErr := s.Load(path, 0)
		count := len(entries)
		if loadErr != nil {
			count = 0
		}
		out = append(out, SessionInfo{Path: path, EntryCount: count, LastActivity: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckIdleReset clears the session and returns true if its last entry
// is older than minutes; returns false (never firing) when minutes<=0.
func (s *Store) CheckIdleReset(path string, minutes int) (bool, error) {
	if minutes <= 0 {
		return false, nil
	}
	entries, err := s.Load(path, 1)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}
	last := entries[len(entries)-1]
	age := time.Since(time.UnixMilli(last.TsMs))
	if age < time.Duration(minutes)*time.Minute {
		return false, nil
	}
	if err := s.Clear(path); err != nil {
		return false, err
	}
	return true, nil
}
