package payroll

import (
	"fmt"
	"sync/atomic"

	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/snapshot"
	"go.uber.org/zap"
)

// Session owns the current Engine. Reload builds a fresh snapshot and
// swaps the engine in one step; calculations already running keep the
// engine they started with.
type Session struct {
	config  *config.Config
	loader  *snapshot.Loader
	logger  *zap.Logger
	current atomic.Pointer[Engine]
}

// NewSession loads the first snapshot
func NewSession(cfg *config.Config, loader *snapshot.Loader, logger *zap.Logger) (*Session, error) {
	s := &Session{
		config: cfg,
		loader: loader,
		logger: logger,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Engine returns the engine for the current snapshot
func (s *Session) Engine() *Engine {
	return s.current.Load()
}

// Reload replaces the current snapshot. On failure the previous one stays active.
func (s *Session) Reload() error {
	snap, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	previous := s.current.Swap(NewEngine(s.config, snap, s.logger))
	if previous != nil {
		s.logger.Info("Payroll session reloaded",
			zap.String("previous_snapshot", previous.Snapshot().ID),
			zap.String("snapshot_id", snap.ID))
	}
	return nil
}
