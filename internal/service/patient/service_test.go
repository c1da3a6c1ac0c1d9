package patient

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentika/clinic-api/internal/model"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

type fakePatientRepo struct {
	seq      int64
	patients map[int64]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[int64]*model.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.seq++
	p.ID = f.seq
	p.CreatedAt = time.Now().UTC()
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) GetByUserID(_ context.Context, userID int64) (*model.Patient, error) {
	for _, p := range f.patients {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("patient", nil)
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	if _, ok := f.patients[p.ID]; !ok {
		return apperrors.NewNotFound("patient", nil)
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.patients[id]; !ok {
		return apperrors.NewNotFound("patient", nil)
	}
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type emitRecorder struct {
	events []string
}

func (r *emitRecorder) Emit(_ context.Context, eventType string, _ interface{}) error {
	r.events = append(r.events, eventType)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newTestService() (*Service, *fakePatientRepo, *emitRecorder) {
	repo := newFakePatientRepo()
	events := &emitRecorder{}
	return NewService(repo, events, testLogger()), repo, events
}

func TestCreatePatient(t *testing.T) {
	svc, _, events := newTestService()

	allergies := "penicillin"
	patient, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		UserID:    7,
		Allergies: &allergies,
	})
	require.NoError(t, err)

	assert.NotZero(t, patient.ID)
	assert.Equal(t, int64(7), patient.UserID)
	require.NotNil(t, patient.Allergies)
	assert.Equal(t, "penicillin", *patient.Allergies)
	assert.Equal(t, []string{model.EventPatientCreated}, events.events)
}

func TestCreatePatientDuplicateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{UserID: 7})
	require.NoError(t, err)

	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{UserID: 7})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestUpdatePatient(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{UserID: 7})
	require.NoError(t, err)

	dob := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdatePatient(ctx, created.ID, &model.CreatePatientRequest{
		UserID:      7,
		DateOfBirth: &dob,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, dob, *updated.DateOfBirth)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Contains(t, events.events, model.EventPatientUpdated)
}

func TestDeletePatient(t *testing.T) {
	svc, repo, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{UserID: 7})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePatient(ctx, created.ID))
	assert.Empty(t, repo.patients)
	assert.Contains(t, events.events, model.EventPatientDeleted)

	err = svc.DeletePatient(ctx, created.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
