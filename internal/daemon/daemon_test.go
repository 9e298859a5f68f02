package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingReloader struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (r *countingReloader) Reload() error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type blockingServer struct {
	err error
}

func (s *blockingServer) ListenAndServe(ctx context.Context, addr string) error {
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func TestRunReload(t *testing.T) {
	r := &countingReloader{}
	d := NewDaemon(r, &blockingServer{}, ":0", 0, zap.NewNop())

	d.runReload()
	d.runReload()

	status := d.GetStatus()
	if status["reloads"] != 2 {
		t.Errorf("reloads = %v, want 2", status["reloads"])
	}
	if _, ok := status["last_reload"]; !ok {
		t.Error("expected last_reload in status")
	}
}

func TestReload_Failure(t *testing.T) {
	r := &countingReloader{err: errors.New("attendance file missing")}
	d := NewDaemon(r, &blockingServer{}, ":0", 0, zap.NewNop())

	if err := d.Reload(); err == nil {
		t.Error("Reload() expected the reloader error, got nil")
	}

	status := d.GetStatus()
	if status["failed_reloads"] != 1 {
		t.Errorf("failed_reloads = %v, want 1", status["failed_reloads"])
	}
	if status["reloads"] != 0 {
		t.Errorf("reloads = %v, want 0", status["reloads"])
	}
}

func TestReload_SkipsConcurrent(t *testing.T) {
	r := &countingReloader{block: make(chan struct{})}
	d := NewDaemon(r, &blockingServer{}, ":0", 0, zap.NewNop())

	done := make(chan struct{})
	go func() {
		d.runReload()
		close(done)
	}()

	// Wait until the first reload holds the flag
	deadline := time.Now().Add(2 * time.Second)
	for {
		d.mu.Lock()
		running := d.reloadRunning
		d.mu.Unlock()
		if running || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := d.Reload(); !errors.Is(err, ErrReloadInProgress) {
		t.Errorf("overlapping Reload() error = %v, want ErrReloadInProgress", err)
	}
	close(r.block)
	<-done

	if got := r.count(); got != 1 {
		t.Errorf("Reload called %d times, want 1", got)
	}
}

func TestStart_StopAndInterval(t *testing.T) {
	r := &countingReloader{}
	d := NewDaemon(r, &blockingServer{}, ":0", 10*time.Millisecond, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- d.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for r.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	d.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	if r.count() < 2 {
		t.Errorf("interval reloads = %d, want at least 2", r.count())
	}
	if d.GetStatus()["running"] != false {
		t.Error("expected daemon to report stopped")
	}
}

func TestStart_ServerFailure(t *testing.T) {
	d := NewDaemon(&countingReloader{}, &blockingServer{err: errors.New("address in use")}, ":0", 0, zap.NewNop())

	if err := d.Start(); err == nil {
		t.Fatal("Start() expected error when the server fails")
	}
}
