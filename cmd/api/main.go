package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/config"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	appHTTP "github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll-closing/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/hris-payroll-closing/internal/service/payroll"
	readinessService "github.com/cmlabs-hris/hris-payroll-closing/internal/service/readiness"
	workflowService "github.com/cmlabs-hris/hris-payroll-closing/internal/service/workflow"
)

// backend is one persistence driver's set of collaborators.
type backend struct {
	tx           database.TxManager
	periods      payroll.PeriodRepository
	runs         payroll.RunRepository
	summaries    attendance.SummaryRepository
	base         attendance.BaseSource
	directory    attendance.ShiftDirectory
	compensation payroll.CompensationRepository
	checker      readiness.Checker
	close        func()
}

func newPostgresBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &backend{
		tx:           postgresql.NewTxManager(db),
		periods:      postgresql.NewPeriodRepository(db),
		runs:         postgresql.NewRunRepository(db),
		summaries:    postgresql.NewSummaryRepository(db),
		base:         postgresql.NewBaseSource(db),
		directory:    postgresql.NewShiftDirectory(db),
		compensation: postgresql.NewCompensationRepository(db),
		checker:      postgresql.NewReadinessChecker(db),
		close:        db.Close,
	}, nil
}

func newMemoryBackend() *backend {
	store := memory.NewStore()

	return &backend{
		tx:           store,
		periods:      memory.NewPeriodRepository(store),
		runs:         memory.NewRunRepository(store),
		summaries:    memory.NewSummaryRepository(store),
		base:         memory.NewBaseSource(store),
		directory:    memory.NewShiftDirectory(store),
		compensation: memory.NewCompensationRepository(store),
		checker:      memory.NewReadinessChecker(store),
		close:        func() {},
	}
}

func readinessChecker(ctx context.Context, cfg config.ReadinessConfig, local readiness.Checker) readiness.Checker {
	if cfg.Source != config.ReadinessSourceRemote {
		return local
	}

	var client *http.Client
	if cfg.ClientID != "" {
		client = readinessService.NewClientCredentialsClient(ctx, cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, cfg.Scopes)
	}
	return readinessService.NewHTTPChecker(cfg.URL, client)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	var store *backend
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store = newMemoryBackend()
	default:
		store, err = newPostgresBackend(context.Background(), cfg)
		if err != nil {
			slog.Error("failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
			os.Exit(1)
		}
	}
	defer store.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	summarySvc := attendanceService.NewSummaryService(store.directory, store.base)
	calculator := payrollService.NewDefaultCalculator(store.compensation)
	lifecycleSvc := payrollService.NewLifecycleService(
		store.tx,
		store.periods,
		store.runs,
		store.summaries,
		store.base,
		store.directory,
		summarySvc,
		calculator,
	)
	readinessSvc := readinessService.NewService(readinessChecker(ctx, cfg.Readiness, store.checker), cfg.Readiness.Timeout)
	workflowSvc := workflowService.NewService(readinessSvc, lifecycleSvc, summarySvc, workflowService.NewHubPublisher(hub))

	periodHandler := appHTTP.NewPeriodHandler(lifecycleSvc)
	workflowHandler := appHTTP.NewWorkflowHandler(workflowSvc)
	streamHandler := appHTTP.NewStreamHandler(hub, JWTService)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		periodHandler,
		workflowHandler,
		streamHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "storage", cfg.Storage.Driver, "readiness", cfg.Readiness.Source)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}
