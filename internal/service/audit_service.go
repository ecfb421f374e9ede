package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/pkg/config"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
	"github.com/readhall/seatdesk-api/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

// AuditService records booking and seat lifecycle events. Writes go through
// an in-process worker queue so the request path never blocks on the audit
// table; the queue persists facts after the fact and drives no state.
type AuditService struct {
	repo    auditStore
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewAuditService constructs an AuditService with its worker queue.
func NewAuditService(repo auditStore, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger, enabled: cfg.Enabled}
	s.queue = jobs.NewQueue("audit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the audit workers.
func (s *AuditService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// Record enqueues an audit entry. Failures are logged, never propagated:
// the audit trail must not fail the operation it describes.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if s == nil || !s.enabled || log == nil {
		return
	}
	job := jobs.Job{Type: log.Action, Payload: log}
	if log.ResourceID != nil {
		job.ID = *log.ResourceID
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue audit entry", zap.String("action", log.Action), zap.Error(err))
	}
}

// RecordChange marshals old/new payloads and enqueues the entry.
func (s *AuditService) RecordChange(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, oldValue, newValue interface{}) {
	if s == nil || !s.enabled {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if oldValue != nil {
		log.OldValues, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		log.NewValues, _ = json.Marshal(newValue)
	}
	s.Record(ctx, log)
}

// Trail returns the recorded history for one resource, newest first.
func (s *AuditService) Trail(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	if resource == "" || resourceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource and resourceId are required")
	}
	logs, err := s.repo.ListByResource(ctx, resource, resourceID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	return logs, nil
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload type %T", job.Payload)
	}
	return s.repo.Create(ctx, log)
}
