package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/model"
)

// SchemaVersion tags the persisted envelope. Bump it whenever DailyRecord
// changes incompatibly; older files are then discarded on load.
const SchemaVersion = 3

// Store keeps the live DailyRecord in a single JSON file.
type Store struct {
	mu       sync.RWMutex
	filePath string
}

func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Load returns the record for today. A missing, empty, malformed, invalid or
// wrong-version file yields a fresh day. A valid record from an earlier day is
// returned as prior so the caller can archive it.
func (s *Store) Load(today string, settings model.Settings) (*model.DailyRecord, *model.DailyRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fresh := func() *model.DailyRecord { return hydration.NewDay(today, settings) }

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read state file, starting fresh", "path", s.filePath, "error", err)
		}
		return fresh(), nil
	}

	if len(data) == 0 {
		return fresh(), nil
	}

	var schema model.AppSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		slog.Warn("Malformed state file, starting fresh", "path", s.filePath, "error", err)
		return fresh(), nil
	}

	if schema.Version != SchemaVersion {
		slog.Info("State version mismatch, discarding", "found", schema.Version, "want", SchemaVersion)
		return fresh(), nil
	}

	if schema.Record == nil || schema.Record.DateKey == "" {
		return fresh(), nil
	}

	if err := hydration.ValidateRecord(schema.Record, settings); err != nil {
		slog.Warn("Invalid state record, starting fresh", "path", s.filePath, "error", err)
		return fresh(), nil
	}

	switch {
	case schema.Record.DateKey < today:
		return fresh(), schema.Record
	case schema.Record.DateKey > today:
		slog.Warn("State record dated after today, discarding", "date", schema.Record.DateKey, "today", today)
		return fresh(), nil
	}

	return schema.Record, nil
}

// Save overwrites the file with rec.
func (s *Store) Save(rec *model.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(model.AppSchema{Version: SchemaVersion, Record: rec}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
