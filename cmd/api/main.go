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

	"github.com/cmlabs-hris/hrm-attendance-go/internal/config"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrm-attendance-go/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/hrm-attendance-go/internal/service/correction"
	shiftService "github.com/cmlabs-hris/hrm-attendance-go/internal/service/shift"
	"go.uber.org/zap"
)

type repositories struct {
	shifts      shift.ShiftRepository
	attendances attendance.AttendanceRepository
	corrections correction.CorrectionRepository
	tx          database.Transactor
	close       func()
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			shifts:      store.Shifts(),
			attendances: store.Attendances(),
			corrections: store.Corrections(),
			tx:          store,
			close:       func() {},
		}, nil
	}

	dsn := cfg.DatabaseURL()
	if cfg.Storage.RunMigrations {
		if err := database.RunMigrations(dsn, log); err != nil {
			return repositories{}, err
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		shifts:      postgresql.NewShiftRepository(db),
		attendances: postgresql.NewAttendanceRepository(db),
		corrections: postgresql.NewCorrectionRepository(db),
		tx:          postgresql.NewTransactor(db),
		close:       db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Dir: cfg.App.LogDir})
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repos.close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(repos.attendances, repos.shifts, loc, log)
	correctionSvc := correctionService.NewCorrectionService(
		repos.corrections,
		repos.attendances,
		repos.shifts,
		repos.tx,
		correction.ShiftFallback(cfg.Correction.ShiftFallback),
		loc,
		log,
	)
	shiftSvc := shiftService.NewShiftService(repos.shifts, repos.tx, log)

	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        cfg.App.Version,
		LogLevel:       logLevel,
	}, JWTService, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, loc, time.Now, log),
		Correction: appHTTP.NewCorrectionHandler(correctionSvc, time.Now, log),
		Shift:      appHTTP.NewShiftHandler(shiftSvc, log),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("timezone", loc.String()), zap.String("storage", cfg.Storage.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
