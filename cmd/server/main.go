package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/handler"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	"github.com/noah-isme/sma-events-admin/internal/service"
	"github.com/noah-isme/sma-events-admin/internal/session"
	"github.com/noah-isme/sma-events-admin/pkg/cache"
	"github.com/noah-isme/sma-events-admin/pkg/config"
	"github.com/noah-isme/sma-events-admin/pkg/database"
	"github.com/noah-isme/sma-events-admin/pkg/logger"
	"github.com/noah-isme/sma-events-admin/pkg/storage"
)

// @title School Events Admin
// @version 1.0.0
// @description Organizer dashboard for school events, student registration and bookings
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	checks := map[string]handler.Check{"database": db.PingContext}
	sessionStore, err := newSessionStore(cfg, checks)
	if err != nil {
		logr.Fatal("failed to init session store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}

	archive, err := storage.NewLocalStorage(cfg.Import.ArchiveDir)
	if err != nil {
		logr.Fatal("failed to init upload archive", zap.Error(err))
	}

	organizers := repository.NewOrganizerRepository(db)
	events := repository.NewEventRepository(db)
	students := repository.NewStudentRepository(db)
	bookings := repository.NewBookingRepository(db)
	audits := repository.NewAuditRepository(db)

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	creds := service.NewCredentialService(cfg.Security.BcryptCost)

	authSvc := service.NewAuthService(organizers, creds, validate, logr, metrics)
	eventSvc := service.NewEventService(events, organizers, validate, logr, metrics)
	studentSvc := service.NewStudentService(students, creds, validate, logr, metrics)
	importSvc := service.NewImportService(students, db, creds, archive, service.ImportConfig{
		Atomic:           cfg.Import.Atomic,
		FallbackPassword: cfg.Import.FallbackPassword,
	}, logr, metrics)
	exportSvc := service.NewExportService(eventSvc, logr)
	bookingSvc := service.NewBookingService(bookings, events, students, organizers, validate, logr, metrics)
	auditSvc := service.NewAuditService(audits, service.AuditConfig{
		Enabled:    cfg.Audit.Enabled,
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
	}, logr)
	auditSvc.Start(context.Background())

	sessions := session.NewManager(sessionStore, session.Config{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}, logr)

	router := handler.NewRouter(handler.RouterConfig{
		EnableDocs:         cfg.Env != config.EnvProduction,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		MaxMultipartMemory: cfg.Import.MaxUploadBytes,
	}, handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, sessions, logr),
		Admin:    handler.NewAdminHandler(eventSvc, importSvc, exportSvc, bookingSvc, sessions, cfg.Import.MaxUploadBytes, logr),
		Events:   handler.NewEventHandler(eventSvc, sessions, logr),
		Students: handler.NewStudentHandler(studentSvc, sessions, logr),
		Health:   handler.NewHealthHandler(metrics, checks),
	}, sessions, metrics, auditSvc, logr)

	go pruneArchive(ctx, archive, cfg.Import.ArchiveRetention, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "db_driver", cfg.Database.Driver, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	auditSvc.Stop(shutdownCtx)
}

func newSessionStore(cfg *config.Config, checks map[string]handler.Check) (session.Store, error) {
	if cfg.Session.Store == config.SessionStoreMemory {
		return session.NewMemoryStore(), nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return session.NewRedisStore(client, cfg.Session.KeyPrefix), nil
}

// pruneArchive removes archived uploads older than retention once a day.
func pruneArchive(ctx context.Context, archive *storage.LocalStorage, retention time.Duration, logr *zap.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		removed, err := archive.CleanupOlderThan(retention)
		if err != nil {
			logr.Warn("archive cleanup failed", zap.Error(err))
		} else if len(removed) > 0 {
			logr.Info("archive cleanup", zap.Int("removed", len(removed)))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
