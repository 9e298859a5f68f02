package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ErrReloadInProgress is returned by Reload while another reload runs
var ErrReloadInProgress = errors.New("reload already in progress")

// Reloader rebuilds the payroll snapshot. payroll.Session implements it.
type Reloader interface {
	Reload() error
}

// Server is the long-running listener the daemon supervises
type Server interface {
	ListenAndServe(ctx context.Context, addr string) error
}

// Daemon serves the HTTP API and keeps the snapshot fresh. SIGHUP and
// the optional reload interval trigger a reload; SIGINT and SIGTERM stop it.
type Daemon struct {
	reloader       Reloader
	server         Server
	addr           string
	reloadInterval time.Duration
	logger         *zap.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	mu             sync.Mutex // Serializes reloads
	reloadRunning  bool
	lastReload     time.Time
	reloads        int
	failures       int
}

// NewDaemon creates a new daemon instance. A zero reloadInterval disables periodic reloads.
func NewDaemon(reloader Reloader, server Server, addr string, reloadInterval time.Duration, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		reloader:       reloader,
		server:         server,
		addr:           addr,
		reloadInterval: reloadInterval,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start runs the server and blocks until the daemon is stopped or the server fails
func (d *Daemon) Start() error {
	d.logger.Info("Daemon started",
		zap.String("addr", d.addr),
		zap.Duration("reload_interval", d.reloadInterval))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- d.server.ListenAndServe(d.ctx, d.addr)
	}()

	var tick <-chan time.Time
	if d.reloadInterval > 0 {
		ticker := time.NewTicker(d.reloadInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopping")
			return <-serverErr

		case err := <-serverErr:
			d.Stop()
			if err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil

		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				d.logger.Info("Received SIGHUP, reloading snapshot")
				go d.runReload()
				continue
			}
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()

		case <-tick:
			go d.runReload()
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Reload reloads the snapshot unless a reload is already in progress.
// A failed reload keeps the previous snapshot serving. Every reload path,
// including the HTTP API, goes through here so GetStatus sees all of them.
func (d *Daemon) Reload() error {
	d.mu.Lock()
	if d.reloadRunning {
		d.mu.Unlock()
		d.logger.Warn("Reload already running, skipping")
		return ErrReloadInProgress
	}
	d.reloadRunning = true
	d.mu.Unlock()

	start := time.Now()
	err := d.reloader.Reload()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.reloadRunning = false

	if err != nil {
		d.failures++
		d.logger.Error("Snapshot reload failed, keeping previous snapshot", zap.Error(err))
		return err
	}

	d.reloads++
	d.lastReload = time.Now()
	d.logger.Info("Snapshot reloaded",
		zap.Duration("took", time.Since(start)),
		zap.Int("reloads", d.reloads))
	return nil
}

func (d *Daemon) runReload() {
	_ = d.Reload()
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":         d.ctx.Err() == nil,
		"addr":            d.addr,
		"reload_interval": d.reloadInterval.String(),
		"reloads":         d.reloads,
		"failed_reloads":  d.failures,
	}
	if !d.lastReload.IsZero() {
		status["last_reload"] = d.lastReload.Format(time.RFC3339)
	}
	return status
}
