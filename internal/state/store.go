package state

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/pkg/logger"
)

// Snapshot is the persisted state record: the dedup ledger contents and the
// per-asset running scores. This file is the sole durability mechanism; a
// crash between a mutation and the next save loses at most one item's effect.
type Snapshot struct {
	SeenIDs []string       `json:"seen_ids"`
	Bias    map[string]int `json:"bias"`
}

// Store persists ledger and accumulator state to a single JSON file.
// Single-writer: only the scanner loop calls Save.
type Store struct {
	path string
}

// NewStore creates store backed by the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load restores ledger and accumulator from disk. A missing or corrupt file
// is not fatal: the scanner starts from empty defaults and the next save
// rewrites the file.
func (s *Store) Load(ledger *Ledger, acc *bias.Accumulator) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("state file unreadable, starting fresh",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Warn("state file corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}

	ledger.Restore(snapshot.SeenIDs)
	acc.Restore(snapshot.Bias)

	logger.Info("state restored",
		zap.String("path", s.path),
		zap.Int("seen_ids", len(snapshot.SeenIDs)),
	)
}

// Save writes the current ledger and accumulator to disk
func (s *Store) Save(ledger *Ledger, acc *bias.Accumulator) error {
	snapshot := Snapshot{
		SeenIDs: ledger.IDs(),
		Bias:    make(map[string]int),
	}
	for asset, score := range acc.Snapshot() {
		snapshot.Bias[string(asset)] = score
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
