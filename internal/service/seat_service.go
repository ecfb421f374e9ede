package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/internal/repository"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

const (
	seatResource        = "seat"
	seatSummaryCacheKey = "seats:summary"
)

type seatStore interface {
	List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, int, error)
	ListAll(ctx context.Context) ([]models.Seat, error)
	FindByID(ctx context.Context, id string) (*models.Seat, error)
	Create(ctx context.Context, seat *models.Seat) error
	Update(ctx context.Context, seat *models.Seat) error
	SetMaintenance(ctx context.Context, seatID string, enabled bool, asOf time.Time) (*models.Seat, error)
}

type seatBookingReader interface {
	ListActiveForSeat(ctx context.Context, seatID string, from, until time.Time) ([]models.Booking, error)
	ListActiveForSeats(ctx context.Context, seatIDs []string, from, until time.Time) (map[string][]models.Booking, error)
}

// SeatService exposes the seat registry with projected statuses.
type SeatService struct {
	repo      seatStore
	bookings  seatBookingReader
	cache     *CacheService
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	lookahead time.Duration
	now       func() time.Time
}

// NewSeatService builds a SeatService with sane defaults.
func NewSeatService(repo seatStore, bookings seatBookingReader, cache *CacheService, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, lookahead time.Duration) *SeatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookahead <= 0 {
		lookahead = DefaultReservedLookahead
	}
	return &SeatService{
		repo:      repo,
		bookings:  bookings,
		cache:     cache,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// List returns seats with their projected status.
func (s *SeatService) List(ctx context.Context, filter models.SeatFilter) ([]models.SeatWithStatus, *models.Pagination, error) {
	seats, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list seats")
	}

	projected, err := s.project(ctx, seats)
	if err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return projected, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one seat with its projected status.
func (s *SeatService) Get(ctx context.Context, seatID string) (*models.SeatWithStatus, error) {
	seat, err := s.repo.FindByID(ctx, seatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat")
	}

	asOf := s.now().UTC()
	bookings, err := s.bookings.ListActiveForSeat(ctx, seatID, asOf, asOf.Add(s.lookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat bookings")
	}

	return &models.SeatWithStatus{
		Seat:   *seat,
		Status: ProjectStatus(*seat, bookings, asOf, s.lookahead),
	}, nil
}

// Create provisions a new seat.
func (s *SeatService) Create(ctx context.Context, req dto.CreateSeatRequest, actor *models.JWTClaims) (*models.Seat, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seat payload")
	}

	seat := &models.Seat{Label: req.Label, Floor: req.Floor, Zone: req.Zone}
	if err := s.repo.Create(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeatLabel) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a seat with this label already exists on this floor")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create seat")
	}

	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionSeatCreate, seatResource, seat.ID, nil, seat)
	}
	return seat, nil
}

// Update patches seat attributes.
func (s *SeatService) Update(ctx context.Context, seatID string, req dto.UpdateSeatRequest, actor *models.JWTClaims) (*models.Seat, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seat payload")
	}

	seat, err := s.repo.FindByID(ctx, seatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat")
	}

	previous := *seat
	if req.Label != nil {
		seat.Label = *req.Label
	}
	if req.Floor != nil {
		seat.Floor = *req.Floor
	}
	if req.Zone != nil {
		seat.Zone = *req.Zone
	}

	if err := s.repo.Update(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeatLabel) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a seat with this label already exists on this floor")
		}
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update seat")
	}

	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionSeatUpdate, seatResource, seat.ID, previous, seat)
	}
	return seat, nil
}

// SetMaintenance toggles the maintenance flag. Enabling fails when the seat
// is occupied at that moment; the occupant must vacate first.
func (s *SeatService) SetMaintenance(ctx context.Context, seatID string, enabled bool, actor *models.JWTClaims) (*models.SeatWithStatus, error) {
	asOf := s.now().UTC()
	seat, err := s.repo.SetMaintenance(ctx, seatID, enabled, asOf)
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		case errors.Is(err, repository.ErrSeatOccupied):
			return nil, appErrors.Clone(appErrors.ErrConflict, "seat is currently occupied and cannot enter maintenance")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update maintenance flag")
		}
	}

	s.invalidateSummary(ctx)
	if s.audit != nil {
		s.audit.RecordChange(ctx, actor, models.AuditActionSeatMaintenance, seatResource, seatID, !enabled, enabled)
	}

	bookings, err := s.bookings.ListActiveForSeat(ctx, seatID, asOf, asOf.Add(s.lookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat bookings")
	}
	return &models.SeatWithStatus{
		Seat:   *seat,
		Status: ProjectStatus(*seat, bookings, asOf, s.lookahead),
	}, nil
}

// Summary aggregates projected statuses per floor. The aggregate is cached
// with a short TTL and invalidated on writes; the projection itself is
// still computed fresh from the ledger on every rebuild. The boolean
// reports whether the result came from cache.
func (s *SeatService) Summary(ctx context.Context) ([]models.FloorOccupancy, bool, error) {
	var cached []models.FloorOccupancy
	if hit, err := s.cache.Get(ctx, seatSummaryCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	start := time.Now()
	seats, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list seats")
	}

	projected, err := s.project(ctx, seats)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveDBQuery("occupancy_summary", time.Since(start))

	byFloor := make(map[int]*models.FloorOccupancy)
	for _, seat := range projected {
		entry, ok := byFloor[seat.Floor]
		if !ok {
			entry = &models.FloorOccupancy{Floor: seat.Floor}
			byFloor[seat.Floor] = entry
		}
		switch seat.Status {
		case models.SeatOccupied:
			entry.Occupied++
		case models.SeatReserved:
			entry.Reserved++
		case models.SeatMaintenance:
			entry.Maintenance++
		default:
			entry.Available++
		}
	}

	floors := make([]models.FloorOccupancy, 0, len(byFloor))
	for _, entry := range byFloor {
		floors = append(floors, *entry)
	}
	sort.Slice(floors, func(i, j int) bool { return floors[i].Floor < floors[j].Floor })

	if err := s.cache.Set(ctx, seatSummaryCacheKey, floors, 0); err != nil {
		s.logger.Warn("failed to cache occupancy summary", zap.Error(err))
	}
	return floors, false, nil
}

func (s *SeatService) project(ctx context.Context, seats []models.Seat) ([]models.SeatWithStatus, error) {
	asOf := s.now().UTC()
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}

	bySeat, err := s.bookings.ListActiveForSeats(ctx, ids, asOf, asOf.Add(s.lookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seat bookings")
	}

	projected := make([]models.SeatWithStatus, len(seats))
	for i, seat := range seats {
		projected[i] = models.SeatWithStatus{
			Seat:   seat,
			Status: ProjectStatus(seat, bySeat[seat.ID], asOf, s.lookahead),
		}
	}
	return projected, nil
}

func (s *SeatService) invalidateSummary(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, seatSummaryCacheKey); err != nil {
		s.logger.Warn("failed to invalidate occupancy summary cache", zap.Error(err))
	}
}
