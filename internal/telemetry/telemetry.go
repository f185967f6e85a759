// Package telemetry appends catch records to a local JSONL log. Telemetry is
// a best-effort side channel: every I/O failure is swallowed so a logging
// problem can never affect a verification result or exit code.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/plancheck/internal/registry"
	"github.com/dshills/plancheck/internal/schema"
)

// toolName identifies this tool in catch entries.
const toolName = "plancheck"

// logFileName is the catch log file under the state directory.
const logFileName = "catches.jsonl"

// Logger appends catch entries to the local telemetry log.
type Logger struct {
	path string
	log  *zap.Logger
}

// New returns a Logger writing under stateDir (typically ~/.plancheck).
// zlog receives debug notes about swallowed failures; nil disables them.
func New(stateDir string, zlog *zap.Logger) *Logger {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	return &Logger{path: filepath.Join(stateDir, logFileName), log: zlog}
}

// BuildEntry assembles a catch entry from checker results. The checker map
// has a fixed shape: every registered checker's catch key is present, nil
// when that checker was not applicable. Project is reduced to its base name;
// full filesystem paths are never recorded.
func BuildEntry(projectDir string, checkers []registry.Checker, results map[string]*schema.CheckerResult) schema.CatchEntry {
	entry := schema.CatchEntry{
		Timestamp: time.Now().UTC(),
		Tool:      toolName,
		Project:   filepath.Base(filepath.Clean(projectDir)),
		Checkers:  make(map[string]*schema.CheckerTally, len(checkers)),
	}
	for _, c := range checkers {
		result, ok := results[c.ID()]
		if !ok || !result.Applicable {
			entry.Checkers[c.CatchKey()] = nil
			continue
		}
		entry.Checkers[c.CatchKey()] = &schema.CheckerTally{
			Checked:      result.CheckedRefs,
			Hallucinated: result.Hallucinated,
			Items:        result.RawStrings(),
		}
		entry.TotalChecked += result.CheckedRefs
		entry.TotalHallucinated += result.Hallucinated
	}
	return entry
}

// LogCatch appends entry to the log as one JSON line. A zero-hallucination
// entry is never written. Errors are swallowed by contract.
func (l *Logger) LogCatch(entry schema.CatchEntry) {
	if entry.TotalHallucinated == 0 {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.log.Debug("telemetry: marshal entry", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		l.log.Debug("telemetry: create state dir", zap.Error(err))
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.log.Debug("telemetry: open log", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		l.log.Debug("telemetry: append entry", zap.Error(err))
	}
}
