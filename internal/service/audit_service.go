package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditConfig sizes the background writer.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	MaxRetries int
}

// AuditService writes audit entries off the request path. Failures are
// logged and never surface to the caller.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue[models.AuditLog]
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

func NewAuditService(repo auditRepository, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, enabled: cfg.Enabled, logger: logger, now: time.Now}
	s.queue = jobs.NewQueue[models.AuditLog]("audit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	return s
}

// Start launches the writer workers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop flushes pending entries, giving up when ctx expires.
func (s *AuditService) Stop(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop(ctx)
}

// Record queues an entry for writing.
func (s *AuditService) Record(_ context.Context, entry models.AuditLog) {
	if s == nil || !s.enabled {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	err := s.queue.Enqueue(jobs.Job[models.AuditLog]{Type: entry.Action, Payload: entry})
	switch {
	case err == nil:
	case errors.Is(err, jobs.ErrQueueFull):
		s.logger.Warn("audit queue full, dropping entry", zap.String("action", entry.Action), zap.String("resource", entry.Resource))
	default:
		s.logger.Warn("audit entry not queued", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	entry := job.Payload
	return s.repo.Create(ctx, &entry)
}
