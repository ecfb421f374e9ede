package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

type studentStoreStub struct {
	students    []models.Student
	studentByID map[string]*models.Student
	emailTaken  bool
	existsErr   error
	createErr   error
	updateErr   error
}

func (s *studentStoreStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return s.students, len(s.students), nil
}

func (s *studentStoreStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := s.studentByID[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentStoreStub) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return s.emailTaken, s.existsErr
}

func (s *studentStoreStub) Create(ctx context.Context, student *models.Student) error {
	if s.createErr != nil {
		return s.createErr
	}
	student.ID = "student-new"
	return nil
}

func (s *studentStoreStub) Update(ctx context.Context, student *models.Student) error {
	return s.updateErr
}

func newStudentServiceForTest(repo *studentStoreStub, audit *auditStub) *StudentService {
	var recorder auditRecorder
	if audit != nil {
		recorder = audit
	}
	return NewStudentService(repo, recorder, nil, nil)
}

func TestStudentServiceRegister(t *testing.T) {
	repo := &studentStoreStub{}
	audit := &auditStub{}
	svc := newStudentServiceForTest(repo, audit)

	student, err := svc.Register(context.Background(), dto.CreateStudentRequest{
		FullName: "Rina Wati",
		Email:    "rina@example.com",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "student-new", student.ID)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.Equal(t, []string{models.AuditActionStudentRegister}, audit.actions)
}

func TestStudentServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &studentStoreStub{emailTaken: true}
	svc := newStudentServiceForTest(repo, nil)

	_, err := svc.Register(context.Background(), dto.CreateStudentRequest{
		FullName: "Rina Wati",
		Email:    "rina@example.com",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRegisterInvalidEmail(t *testing.T) {
	svc := newStudentServiceForTest(&studentStoreStub{}, nil)

	_, err := svc.Register(context.Background(), dto.CreateStudentRequest{
		FullName: "Rina Wati",
		Email:    "not-an-email",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateStatus(t *testing.T) {
	repo := &studentStoreStub{studentByID: map[string]*models.Student{
		"student-1": {ID: "student-1", FullName: "Rina", Email: "rina@example.com", Status: models.StudentActive},
	}}
	svc := newStudentServiceForTest(repo, nil)

	status := string(models.StudentSuspended)
	student, err := svc.Update(context.Background(), "student-1", dto.UpdateStudentRequest{Status: &status}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StudentSuspended, student.Status)
}

func TestStudentServiceUpdateDuplicateEmail(t *testing.T) {
	repo := &studentStoreStub{
		studentByID: map[string]*models.Student{
			"student-1": {ID: "student-1", Email: "rina@example.com", Status: models.StudentActive},
		},
		emailTaken: true,
	}
	svc := newStudentServiceForTest(repo, nil)

	email := "other@example.com"
	_, err := svc.Update(context.Background(), "student-1", dto.UpdateStudentRequest{Email: &email}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := newStudentServiceForTest(&studentStoreStub{}, nil)

	_, err := svc.Update(context.Background(), "student-404", dto.UpdateStudentRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
