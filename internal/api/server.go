package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/daemon"
	"github.com/username/payroll-engine/internal/payroll"
	"github.com/username/payroll-engine/internal/payslip"
	"go.uber.org/zap"
)

// EngineProvider hands out the engine for the current snapshot.
// payroll.Session implements it.
type EngineProvider interface {
	Engine() *payroll.Engine
	Reload() error
}

// Server exposes the payroll engine over HTTP
type Server struct {
	provider   EngineProvider
	reloader   daemon.Reloader
	shiftStart string
	logger     *zap.Logger
	router     chi.Router
}

// NewServer creates a Server. shiftStart is used when a request omits shift_start.
func NewServer(provider EngineProvider, shiftStart string, logger *zap.Logger) *Server {
	s := &Server{
		provider:   provider,
		reloader:   provider,
		shiftStart: shiftStart,
		logger:     logger,
	}
	s.router = s.routes()
	return s
}

// UseReloader routes POST /reload through r instead of the provider.
// serve passes the daemon so API reloads share its overlap guard and counters.
func (s *Server) UseReloader(r daemon.Reloader) {
	s.reloader = r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/reload", s.handleReload)
		r.Get("/employees", s.handleListEmployees)
		r.Get("/employees/{id}/gross", s.handleGross)
		r.Get("/employees/{id}/deductions", s.handleDeductions)
		r.Get("/employees/{id}/net", s.handleNet)
		r.Get("/employees/{id}/payslip", s.handlePayslip)
	})

	return router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

// request builds an engine request from the path id and query string
func (s *Server) request(r *http.Request) (payroll.Request, error) {
	q := r.URL.Query()

	req := payroll.Request{
		EmployeeID: chi.URLParam(r, "id"),
		ShiftStart: s.shiftStart,
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return req, fmt.Errorf("%w: year must be a number", payroll.ErrInvalidArgument)
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return req, fmt.Errorf("%w: month must be a number", payroll.ErrInvalidArgument)
	}
	half, err := payroll.ParseHalf(q.Get("half"))
	if err != nil {
		return req, err
	}
	req.Year, req.Month, req.Half = year, month, half

	if v := q.Get("night"); v != "" {
		night, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("%w: night must be true or false", payroll.ErrInvalidArgument)
		}
		req.NightShift = night
	}
	if v := strings.TrimSpace(q.Get("shift_start")); v != "" {
		req.ShiftStart = v
	}

	return req, nil
}

type employeeView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

type snapshotView struct {
	ID        string    `json:"id"`
	LoadedAt  time.Time `json:"loadedAt"`
	Year      int       `json:"year"`
	Employees int       `json:"employees"`
	Punches   int       `json:"punches"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	engine := s.provider.Engine()
	snap := engine.Snapshot()
	s.success(w, r, snapshotView{
		ID:        snap.ID,
		LoadedAt:  snap.LoadedAt,
		Year:      engine.Year(),
		Employees: len(snap.Employees()),
		Punches:   snap.PunchCount(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.reloader.Reload(); err != nil {
		if errors.Is(err, daemon.ErrReloadInProgress) {
			s.fail(w, r, http.StatusConflict, "reload_in_progress", err.Error())
			return
		}
		s.logger.Error("Reload failed", zap.Error(err))
		s.fail(w, r, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}
	s.handleSnapshot(w, r)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees := s.provider.Engine().Snapshot().Employees()
	out := make([]employeeView, 0, len(employees))
	for _, e := range employees {
		out = append(out, employeeView{ID: e.ID.String(), Name: e.FullName(), HourlyRate: e.HourlyRate})
	}
	s.success(w, r, out)
}

func (s *Server) handleGross(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	breakdown, err := s.provider.Engine().ComputeGross(req)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.success(w, r, newGrossView(breakdown))
}

func (s *Server) handleDeductions(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	deductions, err := s.provider.Engine().ComputeDeductions(req)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.success(w, r, newDeductionsView(deductions))
}

func (s *Server) handleNet(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	net, err := s.provider.Engine().ComputeNet(req)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.success(w, r, newNetView(net))
}

func (s *Server) handlePayslip(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	slip, err := s.provider.Engine().Payslip(req)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=payslip-%s-%d-%02d-%d.pdf", slip.Employee.ID, req.Year, req.Month, req.Half))
		if err := payslip.WritePDF(w, slip); err != nil {
			s.logger.Error("Failed to render payslip", zap.Error(err))
		}
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := payslip.WriteText(w, slip); err != nil {
			s.logger.Error("Failed to render payslip", zap.Error(err))
		}
	default:
		s.success(w, r, newPayslipView(slip))
	}
}
