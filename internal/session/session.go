// Package session persists a small per-project history of verification runs,
// used to prepend prior reviewer feedback to a subsequent run. Like
// telemetry, session persistence is best-effort: all I/O failures are
// swallowed and a missing or corrupt history reads as empty.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dshills/plancheck/internal/schema"
)

// maxEntries caps each project's history; the oldest entry is evicted first.
const maxEntries = 3

// snippetLen is the stored length of the plan-text snippet.
const snippetLen = 200

// Store reads and writes per-project session history files.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore returns a Store rooted at stateDir/sessions.
func NewStore(stateDir string, zlog *zap.Logger) *Store {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	return &Store{dir: filepath.Join(stateDir, "sessions"), log: zlog}
}

func (s *Store) file(projectDir string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean(projectDir))+".json")
}

// Load returns the project's history, newest last. Any failure reads as an
// empty history.
func (s *Store) Load(projectDir string) []schema.SessionEntry {
	data, err := os.ReadFile(s.file(projectDir))
	if err != nil {
		return nil
	}
	var entries []schema.SessionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Debug("session: unmarshal history", zap.Error(err))
		return nil
	}
	return entries
}

// Append records a run. The plan text is truncated to a short snippet; the
// feedback is stored in full. History is capped at maxEntries. Errors are
// swallowed by contract.
func (s *Store) Append(projectDir, planText, feedback string) {
	entry := schema.SessionEntry{
		Timestamp:   time.Now().UTC(),
		PlanSnippet: snippet(planText),
		Feedback:    feedback,
	}
	entries := append(s.Load(projectDir), entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		s.log.Debug("session: marshal history", zap.Error(err))
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Debug("session: create dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.file(projectDir), data, 0o644); err != nil {
		s.log.Debug("session: write history", zap.Error(err))
	}
}

func snippet(planText string) string {
	if len(planText) <= snippetLen {
		return planText
	}
	end := snippetLen
	// Back off to a rune boundary so the cut never stores invalid UTF-8.
	for end > 0 && !utf8.RuneStart(planText[end]) {
		end--
	}
	return planText[:end]
}
