package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

type shiftStoreStub struct {
	shifts    []models.Shift
	shiftByID map[string]*models.Shift
	createErr error
	updateErr error
	deleteErr error
	deleted   []string
}

func (s *shiftStoreStub) List(ctx context.Context) ([]models.Shift, error) {
	return s.shifts, nil
}

func (s *shiftStoreStub) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	if shift, ok := s.shiftByID[id]; ok {
		return shift, nil
	}
	return nil, sql.ErrNoRows
}

func (s *shiftStoreStub) Create(ctx context.Context, shift *models.Shift) error {
	if s.createErr != nil {
		return s.createErr
	}
	shift.ID = "shift-new"
	return nil
}

func (s *shiftStoreStub) Update(ctx context.Context, shift *models.Shift) error {
	return s.updateErr
}

func (s *shiftStoreStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type shiftCounterStub struct {
	count int
	err   error
}

func (s shiftCounterStub) CountFutureActiveByShift(ctx context.Context, shiftID string, after time.Time) (int, error) {
	return s.count, s.err
}

func newShiftServiceForTest(repo *shiftStoreStub, counter shiftCounterStub, audit *auditStub) *ShiftService {
	var recorder auditRecorder
	if audit != nil {
		recorder = audit
	}
	svc := NewShiftService(repo, counter, nil, recorder, nil, nil)
	svc.now = fixedNow
	return svc
}

func validShiftRequest() dto.CreateShiftRequest {
	return dto.CreateShiftRequest{
		Name:      "Morning",
		StartTime: "07:00",
		EndTime:   "12:00",
		Capacity:  40,
		Zone:      "quiet",
	}
}

func TestShiftServiceCreate(t *testing.T) {
	repo := &shiftStoreStub{}
	audit := &auditStub{}
	svc := newShiftServiceForTest(repo, shiftCounterStub{}, audit)

	shift, err := svc.Create(context.Background(), validShiftRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "shift-new", shift.ID)
	assert.Equal(t, []string{models.AuditActionShiftCreate}, audit.actions)
}

func TestShiftServiceCreateValidation(t *testing.T) {
	svc := newShiftServiceForTest(&shiftStoreStub{}, shiftCounterStub{}, nil)

	tests := []struct {
		name   string
		mutate func(*dto.CreateShiftRequest)
	}{
		{
			name:   "start after end",
			mutate: func(r *dto.CreateShiftRequest) { r.StartTime = "14:00"; r.EndTime = "12:00" },
		},
		{
			name:   "start equals end",
			mutate: func(r *dto.CreateShiftRequest) { r.StartTime = "12:00"; r.EndTime = "12:00" },
		},
		{
			name:   "malformed clock value",
			mutate: func(r *dto.CreateShiftRequest) { r.StartTime = "7am" },
		},
		{
			name:   "zero capacity",
			mutate: func(r *dto.CreateShiftRequest) { r.Capacity = 0 },
		},
		{
			name:   "overnight with equal bounds",
			mutate: func(r *dto.CreateShiftRequest) { r.Overnight = true; r.StartTime = "22:00"; r.EndTime = "22:00" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validShiftRequest()
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), req, nil)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestShiftServiceCreateOvernight(t *testing.T) {
	svc := newShiftServiceForTest(&shiftStoreStub{}, shiftCounterStub{}, nil)

	req := validShiftRequest()
	req.Name = "Night"
	req.StartTime = "22:00"
	req.EndTime = "06:00"
	req.Overnight = true

	shift, err := svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	assert.True(t, shift.Overnight)
}

func TestShiftServiceUpdate(t *testing.T) {
	repo := &shiftStoreStub{shiftByID: map[string]*models.Shift{
		"shift-1": {ID: "shift-1", Name: "Morning", StartTime: "07:00", EndTime: "12:00", Capacity: 40, Zone: "quiet"},
	}}
	svc := newShiftServiceForTest(repo, shiftCounterStub{}, nil)

	newEnd := "13:00"
	shift, err := svc.Update(context.Background(), "shift-1", dto.UpdateShiftRequest{EndTime: &newEnd}, nil)
	require.NoError(t, err)
	assert.Equal(t, "13:00", shift.EndTime)
}

func TestShiftServiceUpdateRejectsInvertedWindow(t *testing.T) {
	repo := &shiftStoreStub{shiftByID: map[string]*models.Shift{
		"shift-1": {ID: "shift-1", Name: "Morning", StartTime: "07:00", EndTime: "12:00", Capacity: 40, Zone: "quiet"},
	}}
	svc := newShiftServiceForTest(repo, shiftCounterStub{}, nil)

	newStart := "13:00"
	_, err := svc.Update(context.Background(), "shift-1", dto.UpdateShiftRequest{StartTime: &newStart}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestShiftServiceDelete(t *testing.T) {
	repo := &shiftStoreStub{shiftByID: map[string]*models.Shift{
		"shift-1": {ID: "shift-1", Name: "Morning"},
	}}
	audit := &auditStub{}
	svc := newShiftServiceForTest(repo, shiftCounterStub{}, audit)

	err := svc.Delete(context.Background(), "shift-1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"shift-1"}, repo.deleted)
	assert.Equal(t, []string{models.AuditActionShiftDelete}, audit.actions)
}

func TestShiftServiceDeleteWithActiveBookings(t *testing.T) {
	repo := &shiftStoreStub{shiftByID: map[string]*models.Shift{
		"shift-1": {ID: "shift-1", Name: "Morning"},
	}}
	svc := newShiftServiceForTest(repo, shiftCounterStub{count: 3}, nil)

	err := svc.Delete(context.Background(), "shift-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestShiftServiceDeleteNotFound(t *testing.T) {
	svc := newShiftServiceForTest(&shiftStoreStub{}, shiftCounterStub{}, nil)

	err := svc.Delete(context.Background(), "shift-404", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
