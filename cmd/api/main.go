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

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	handoverService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/handover"
	leaveService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/notification"
	proposalService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/proposal"
	shiftService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/shift"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.App, version)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var shiftCache shift.SnapshotCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		shiftCache = redis.NewShiftCache(client, cfg.Redis.ShiftTTL)
	}

	m := metrics.New()
	tx := postgresql.NewTransactionManager(db.Pool, cfg.Database.LockTimeout)

	attendanceRepo := postgresql.NewAttendanceRepository(db.Pool)
	shiftRepo := postgresql.NewShiftRepository(db.Pool)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db.Pool)
	handoverRepo := postgresql.NewHandoverRepository(db.Pool)
	proposalRepo := postgresql.NewProposalRepository(db.Pool)
	notificationRepo := postgresql.NewNotificationRepository(db.Pool)

	notifSvc := notificationService.NewNotificationService(notificationRepo, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	shiftSvc := shiftService.NewShiftService(tx, shiftRepo, shiftCache, m)
	attendanceSvc := attendanceService.NewAttendanceService(tx, attendanceRepo, shiftSvc, m, cfg.Location())
	leaveSvc := leaveService.NewLeaveService(tx, leaveRequestRepo, attendanceRepo, notifSvc, m, leave.UnlinkPolicy(cfg.Policy.LeaveUnlink))
	handoverSvc := handoverService.NewHandoverService(tx, handoverRepo, notifSvc, m, cfg.Policy.HandoverRevertOnReopen)
	proposalSvc := proposalService.NewProposalService(tx, proposalRepo, notifSvc, m)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		cfg.App,
		log,
		JWTService,
		m,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewHandoverHandler(handoverSvc),
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewProposalHandler(proposalSvc),
		appHTTP.NewNotificationHandler(notifSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
