package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

const (
	shiftResource     = "shift"
	shiftListCacheKey = "shifts:list"
	shiftListCacheTTL = 10 * time.Minute
)

type shiftStore interface {
	List(ctx context.Context) ([]models.Shift, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id string) error
}

type shiftBookingCounter interface {
	CountFutureActiveByShift(ctx context.Context, shiftID string, after time.Time) (int, error)
}

// ShiftService manages the shift catalog.
type ShiftService struct {
	repo      shiftStore
	bookings  shiftBookingCounter
	cache     *CacheService
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewShiftService builds a ShiftService.
func NewShiftService(repo shiftStore, bookings shiftBookingCounter, cache *CacheService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{
		repo:      repo,
		bookings:  bookings,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns all shift templates. The catalog changes rarely, so the
// full list is cached with a TTL and invalidated on writes. The boolean
// reports whether the result came from cache.
func (s *ShiftService) List(ctx context.Context) ([]models.Shift, bool, error) {
	var cached []models.Shift
	if hit, err := s.cache.Get(ctx, shiftListCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	shifts, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}

	if err := s.cache.Set(ctx, shiftListCacheKey, shifts, shiftListCacheTTL); err != nil {
		s.logger.Warn("failed to cache shift list", zap.Error(err))
	}
	return shifts, false, nil
}

// Get fetches a single shift template.
func (s *ShiftService) Get(ctx context.Context, shiftID string) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// Create registers a new shift template.
func (s *ShiftService) Create(ctx context.Context, req dto.CreateShiftRequest, actor *models.JWTClaims) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	shift := &models.Shift{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Overnight: req.Overnight,
		Capacity:  req.Capacity,
		Zone:      req.Zone,
	}
	if err := s.validateWindow(shift); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}

	s.invalidateList(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionShiftCreate, shiftResource, shift.ID, nil, shift)
	}
	return shift, nil
}

// Update patches a shift template. Changing the window only affects
// bookings made afterwards; existing bookings keep the interval they
// were resolved with.
func (s *ShiftService) Update(ctx context.Context, shiftID string, req dto.UpdateShiftRequest, actor *models.JWTClaims) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}

	previous := *shift
	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.Overnight != nil {
		shift.Overnight = *req.Overnight
	}
	if req.Capacity != nil {
		shift.Capacity = *req.Capacity
	}
	if req.Zone != nil {
		shift.Zone = *req.Zone
	}
	if err := s.validateWindow(shift); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, shift); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}

	s.invalidateList(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionShiftUpdate, shiftResource, shift.ID, previous, shift)
	}
	return shift, nil
}

// Delete removes a shift template. Deletion is refused while active
// bookings still reference a future window of the shift.
func (s *ShiftService) Delete(ctx context.Context, shiftID string, actor *models.JWTClaims) error {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}

	count, err := s.bookings.CountFutureActiveByShift(ctx, shiftID, s.now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shift bookings")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "shift has active bookings and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, shiftID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift")
	}

	s.invalidateList(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionShiftDelete, shiftResource, shiftID, shift, nil)
	}
	return nil
}

// validateWindow checks the clock values. Start must precede end within a
// day unless the shift is flagged overnight, in which case the end wraps
// past midnight and must differ from the start.
func (s *ShiftService) validateWindow(shift *models.Shift) error {
	start, err := models.ParseClock(shift.StartTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := models.ParseClock(shift.EndTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}

	if shift.Overnight {
		if start == end {
			return appErrors.Clone(appErrors.ErrValidation, "overnight shift start and end must differ")
		}
		return nil
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "shift start must be before end")
	}
	return nil
}

func (s *ShiftService) invalidateList(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, shiftListCacheKey); err != nil {
		s.logger.Warn("failed to invalidate shift list cache", zap.Error(err))
	}
}
