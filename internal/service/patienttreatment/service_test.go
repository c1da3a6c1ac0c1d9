package patienttreatment

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

type fakeCourseRepo struct {
	seq     int64
	courses map[int64]*model.PatientTreatment
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[int64]*model.PatientTreatment)}
}

func (f *fakeCourseRepo) Create(_ context.Context, c *model.PatientTreatment) error {
	f.seq++
	c.ID = f.seq
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) Get(_ context.Context, id int64) (*model.PatientTreatment, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient treatment", nil)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) Update(_ context.Context, c *model.PatientTreatment) error {
	if _, ok := f.courses[c.ID]; !ok {
		return apperrors.NewNotFound("patient treatment", nil)
	}
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return apperrors.NewNotFound("patient treatment", nil)
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) ListByPatient(_ context.Context, patientID int64, status model.TreatmentStatus) ([]*model.PatientTreatment, error) {
	var out []*model.PatientTreatment
	for _, c := range f.courses {
		if c.PatientID != patientID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
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

func newTestService() (*Service, *fakeCourseRepo, *emitRecorder) {
	repo := newFakeCourseRepo()
	events := &emitRecorder{}
	return NewService(repo, events, testLogger()), repo, events
}

func courseReq(patientID, treatmentID int64) *model.CreatePatientTreatmentRequest {
	return &model.CreatePatientTreatmentRequest{
		PatientID:   patientID,
		TreatmentID: treatmentID,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateCourseDefaults(t *testing.T) {
	svc, _, events := newTestService()

	course, err := svc.CreatePatientTreatment(context.Background(), courseReq(1, 2))
	require.NoError(t, err)

	assert.Equal(t, model.TreatmentStatusActive, course.Status)
	assert.Equal(t, 0, course.Progress)
	assert.Nil(t, course.EndDate)
	assert.Equal(t, []string{model.EventPatientTreatmentCreated}, events.events)
}

func TestCreateCourseCompletedStampsEndDate(t *testing.T) {
	svc, _, _ := newTestService()

	req := courseReq(1, 2)
	status := model.TreatmentStatusCompleted
	req.Status = &status

	course, err := svc.CreatePatientTreatment(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, course.EndDate)
	assert.False(t, course.EndDate.Before(course.StartDate))
}

func TestCreateCourseEndBeforeStart(t *testing.T) {
	svc, _, _ := newTestService()

	req := courseReq(1, 2)
	end := req.StartDate.AddDate(0, 0, -1)
	req.EndDate = &end

	_, err := svc.CreatePatientTreatment(context.Background(), req)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCompleteCourse(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePatientTreatment(ctx, courseReq(1, 2))
	require.NoError(t, err)

	req := courseReq(1, 2)
	status := model.TreatmentStatusCompleted
	req.Status = &status
	progress := 100
	req.Progress = &progress

	updated, err := svc.UpdatePatientTreatment(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, model.TreatmentStatusCompleted, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	require.NotNil(t, updated.EndDate)
	assert.Contains(t, events.events, model.EventPatientTreatmentUpdated)
}

func TestCourseTerminalStatusLocked(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := courseReq(1, 2)
	cancelled := model.TreatmentStatusCancelled
	req.Status = &cancelled
	created, err := svc.CreatePatientTreatment(ctx, req)
	require.NoError(t, err)

	reopen := courseReq(1, 2)
	active := model.TreatmentStatusActive
	reopen.Status = &active

	_, err = svc.UpdatePatientTreatment(ctx, created.ID, reopen)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code)
	assert.Contains(t, appErr.Message, "cancelled")
}

func TestCourseSameStatusUpdateAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := courseReq(1, 2)
	completed := model.TreatmentStatusCompleted
	req.Status = &completed
	created, err := svc.CreatePatientTreatment(ctx, req)
	require.NoError(t, err)

	again := courseReq(1, 2)
	again.Status = &completed
	notes := "retainer fitted"
	again.Notes = &notes

	updated, err := svc.UpdatePatientTreatment(ctx, created.ID, again)
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "retainer fitted", *updated.Notes)
}

func TestUpdateCourseKeepsStoredValuesWhenOmitted(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := courseReq(1, 2)
	progress := 40
	req.Progress = &progress
	created, err := svc.CreatePatientTreatment(ctx, req)
	require.NoError(t, err)

	update := courseReq(1, 2)
	phase := "aligner 12 of 30"
	update.Phase = &phase

	updated, err := svc.UpdatePatientTreatment(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, model.TreatmentStatusActive, updated.Status)
	require.NotNil(t, updated.Phase)
	assert.Equal(t, "aligner 12 of 30", *updated.Phase)
}

func TestListByPatient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePatientTreatment(ctx, courseReq(1, 2))
	require.NoError(t, err)

	done := courseReq(1, 3)
	completed := model.TreatmentStatusCompleted
	done.Status = &completed
	_, err = svc.CreatePatientTreatment(ctx, done)
	require.NoError(t, err)

	_, err = svc.CreatePatientTreatment(ctx, courseReq(2, 2))
	require.NoError(t, err)

	all, err := svc.ListByPatient(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListByPatient(ctx, 1, model.TreatmentStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(2), active[0].TreatmentID)
}

func TestDeleteCourse(t *testing.T) {
	svc, repo, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePatientTreatment(ctx, courseReq(1, 2))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePatientTreatment(ctx, created.ID))
	assert.Empty(t, repo.courses)
	assert.Contains(t, events.events, model.EventPatientTreatmentDeleted)
}
