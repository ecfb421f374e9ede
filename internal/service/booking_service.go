package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/internal/repository"
	"github.com/readhall/seatdesk-api/pkg/config"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

const (
	bookingResource = "booking"
	dateLayout      = "2006-01-02"

	reservationGranted  = "granted"
	reservationConflict = "conflict"
	reservationRejected = "rejected"
)

type bookingLedger interface {
	Reserve(ctx context.Context, params repository.ReserveParams) (*models.Booking, *models.Booking, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (int64, error)
	ListActiveForSeat(ctx context.Context, seatID string, from, until time.Time) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
}

type bookingSeatReader interface {
	FindByID(ctx context.Context, id string) (*models.Seat, error)
}

type bookingStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type bookingShiftReader interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
}

type auditRecorder interface {
	RecordChange(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, oldValue, newValue interface{})
}

type summaryInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// BookingService orchestrates the booking lifecycle: reserve, cancel,
// release. Availability resolution itself is atomic inside the ledger's
// reserve transaction; this layer owns the preconditions and error mapping.
type BookingService struct {
	ledger    bookingLedger
	seats     bookingSeatReader
	students  bookingStudentReader
	shifts    bookingShiftReader
	audit     auditRecorder
	cache     summaryInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.BookingConfig
	now       func() time.Time
}

// NewBookingService builds a BookingService with sane defaults.
func NewBookingService(
	ledger bookingLedger,
	seats bookingSeatReader,
	students bookingStudentReader,
	shifts bookingShiftReader,
	audit auditRecorder,
	cache summaryInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.BookingConfig,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReservedLookahead <= 0 {
		cfg.ReservedLookahead = DefaultReservedLookahead
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 24 * time.Hour
	}
	return &BookingService{
		ledger:    ledger,
		seats:     seats,
		students:  students,
		shifts:    shifts,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Reserve books a seat for a student over an explicit interval or a shift
// plus calendar date. First come, first served: a losing request fails and
// the caller retries with a different seat or time.
func (s *BookingService) Reserve(ctx context.Context, seatID string, req dto.ReserveRequest, actor *models.JWTClaims) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}
	if !canActOnStudent(actor, req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only reserve seats for themselves")
	}

	start, end, shiftID, err := s.resolveInterval(ctx, req)
	if err != nil {
		s.metrics.RecordReservation(reservationRejected)
		return nil, err
	}

	seat, err := s.seats.FindByID(ctx, seatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat")
	}
	if seat.Maintenance {
		s.metrics.RecordReservation(reservationRejected)
		return nil, appErrors.Clone(appErrors.ErrConflict, "seat is under maintenance")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Status != models.StudentActive {
		s.metrics.RecordReservation(reservationRejected)
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is not active")
	}

	booking, conflict, err := s.ledger.Reserve(ctx, repository.ReserveParams{
		SeatID:    seatID,
		StudentID: student.ID,
		ShiftID:   shiftID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		case repository.ErrSeatUnderMaintenance:
			s.metrics.RecordReservation(reservationRejected)
			return nil, appErrors.Clone(appErrors.ErrConflict, "seat is under maintenance")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve seat")
		}
	}
	if conflict != nil {
		s.metrics.RecordReservation(reservationConflict)
		return nil, appErrors.Clone(appErrors.ErrSeatUnavailable, fmt.Sprintf(
			"seat is already booked from %s to %s (booking %s)",
			conflict.StartTime.Format(time.RFC3339),
			conflict.EndTime.Format(time.RFC3339),
			conflict.ID,
		))
	}

	s.metrics.RecordReservation(reservationGranted)
	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionBookingReserve, bookingResource, booking.ID, nil, booking)
	}
	return booking, nil
}

// Cancel marks a booking cancelled. Idempotent when already cancelled.
func (s *BookingService) Cancel(ctx context.Context, bookingID string, actor *models.JWTClaims) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !canActOnStudent(actor, booking.StudentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another student")
	}

	switch booking.Status {
	case models.BookingCancelled:
		return nil
	case models.BookingCompleted:
		return appErrors.Clone(appErrors.ErrConflict, "booking is already completed")
	}

	rows, err := s.ledger.UpdateStatus(ctx, bookingID, models.BookingActive, models.BookingCancelled)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrConflict, "booking state changed concurrently")
	}

	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionBookingCancel, bookingResource, bookingID, booking.Status, models.BookingCancelled)
	}
	return nil
}

// Release completes an active booking early, vacating the seat before the
// scheduled end.
func (s *BookingService) Release(ctx context.Context, bookingID string, actor *models.JWTClaims) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !canActOnStudent(actor, booking.StudentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another student")
	}
	if booking.Status != models.BookingActive {
		return appErrors.Clone(appErrors.ErrConflict, "booking is not active")
	}

	rows, err := s.ledger.UpdateStatus(ctx, bookingID, models.BookingActive, models.BookingCompleted)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release booking")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrConflict, "booking state changed concurrently")
	}

	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionBookingRelease, bookingResource, bookingID, booking.Status, models.BookingCompleted)
	}
	return nil
}

// ListActiveForSeat returns active bookings relevant to the seat's status
// around the reference instant: those covering asOf plus those starting
// within the reserved lookahead window.
func (s *BookingService) ListActiveForSeat(ctx context.Context, seatID string, asOf *time.Time) ([]models.Booking, error) {
	if _, err := s.seats.FindByID(ctx, seatID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat")
	}

	reference := s.now().UTC()
	if asOf != nil {
		reference = asOf.UTC()
	}
	bookings, err := s.ledger.ListActiveForSeat(ctx, seatID, reference, reference.Add(s.cfg.ReservedLookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// List returns bookings for the admin dashboard with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// canActOnStudent reports whether the actor may mutate bookings owned by
// studentID. Admins and staff act on any booking; students only on their
// own. A nil actor is an internal caller and is trusted.
func canActOnStudent(actor *models.JWTClaims, studentID string) bool {
	if actor == nil {
		return true
	}
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleStaff {
		return true
	}
	return actor.UserID == studentID
}

func (s *BookingService) findBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.ledger.FindByID(ctx, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// resolveInterval turns the request into an absolute [start, end) pair,
// deriving from shift plus date when a shift is referenced. It rejects
// malformed intervals instead of coercing them.
func (s *BookingService) resolveInterval(ctx context.Context, req dto.ReserveRequest) (time.Time, time.Time, *string, error) {
	var start, end time.Time
	var shiftID *string

	switch {
	case req.ShiftID != "":
		if req.StartTime != nil || req.EndTime != nil {
			return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "provide either a shift reference or an explicit interval, not both")
		}
		if req.Date == "" {
			return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "date is required when booking by shift")
		}
		date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
		}
		shift, err := s.shifts.FindByID(ctx, req.ShiftID)
		if err != nil {
			if err == sql.ErrNoRows {
				return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
			}
			return time.Time{}, time.Time{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
		}
		start, end, err = shift.Window(date)
		if err != nil {
			return time.Time{}, time.Time{}, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "shift has an invalid time window")
		}
		shiftID = &shift.ID
	case req.StartTime != nil && req.EndTime != nil:
		start = req.StartTime.UTC()
		end = req.EndTime.UTC()
	default:
		return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "startTime and endTime, or shiftId and date, are required")
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "interval start must precede end")
	}
	if end.Sub(start) > s.cfg.MaxDuration {
		return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interval exceeds the maximum booking duration of %s", s.cfg.MaxDuration))
	}
	if !end.After(s.now().UTC()) {
		return time.Time{}, time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "interval lies entirely in the past")
	}
	return start, end, shiftID, nil
}

func (s *BookingService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, seatSummaryCacheKey); err != nil {
		s.logger.Warn("failed to invalidate occupancy summary cache", zap.Error(err))
	}
}
