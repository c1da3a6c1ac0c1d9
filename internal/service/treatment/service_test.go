package treatment

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

type fakeTreatmentRepo struct {
	seq        int64
	treatments map[int64]*model.Treatment
}

func newFakeTreatmentRepo() *fakeTreatmentRepo {
	return &fakeTreatmentRepo{treatments: make(map[int64]*model.Treatment)}
}

func (f *fakeTreatmentRepo) Create(_ context.Context, t *model.Treatment) error {
	f.seq++
	t.ID = f.seq
	t.CreatedAt = time.Now().UTC()
	cp := *t
	f.treatments[t.ID] = &cp
	return nil
}

func (f *fakeTreatmentRepo) Get(_ context.Context, id int64) (*model.Treatment, error) {
	t, ok := f.treatments[id]
	if !ok {
		return nil, apperrors.NewNotFound("treatment", nil)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTreatmentRepo) Update(_ context.Context, t *model.Treatment) error {
	if _, ok := f.treatments[t.ID]; !ok {
		return apperrors.NewNotFound("treatment", nil)
	}
	cp := *t
	f.treatments[t.ID] = &cp
	return nil
}

func (f *fakeTreatmentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.treatments[id]; !ok {
		return apperrors.NewNotFound("treatment", nil)
	}
	delete(f.treatments, id)
	return nil
}

func (f *fakeTreatmentRepo) List(_ context.Context) ([]*model.Treatment, error) {
	out := make([]*model.Treatment, 0, len(f.treatments))
	for _, t := range f.treatments {
		cp := *t
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

func newTestService() (*Service, *fakeTreatmentRepo, *emitRecorder) {
	repo := newFakeTreatmentRepo()
	events := &emitRecorder{}
	return NewService(repo, events, testLogger()), repo, events
}

func TestCreateTreatment(t *testing.T) {
	svc, _, events := newTestService()

	desc := "Fixed braces, both arches"
	created, err := svc.CreateTreatment(context.Background(), &model.CreateTreatmentRequest{
		Name:        "Orthodontic braces",
		Description: &desc,
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Orthodontic braces", created.Name)
	require.NotNil(t, created.Description)
	assert.Equal(t, desc, *created.Description)
	assert.Equal(t, []string{model.EventTreatmentCreated}, events.events)
}

func TestUpdateTreatmentKeepsCreatedAt(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTreatment(ctx, &model.CreateTreatmentRequest{Name: "Whitening"})
	require.NoError(t, err)

	updated, err := svc.UpdateTreatment(ctx, created.ID, &model.CreateTreatmentRequest{Name: "Teeth whitening"})
	require.NoError(t, err)

	assert.Equal(t, "Teeth whitening", updated.Name)
	assert.Nil(t, updated.Description)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Contains(t, events.events, model.EventTreatmentUpdated)
}

func TestDeleteTreatment(t *testing.T) {
	svc, repo, events := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTreatment(ctx, &model.CreateTreatmentRequest{Name: "Implant"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTreatment(ctx, created.ID))
	assert.Empty(t, repo.treatments)
	assert.Contains(t, events.events, model.EventTreatmentDeleted)

	err = svc.DeleteTreatment(ctx, created.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestListTreatments(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateTreatment(ctx, &model.CreateTreatmentRequest{Name: "Cleaning"})
	require.NoError(t, err)
	_, err = svc.CreateTreatment(ctx, &model.CreateTreatmentRequest{Name: "Filling"})
	require.NoError(t, err)

	list, err := svc.ListTreatments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
