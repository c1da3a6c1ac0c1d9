package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentika/clinic-api/internal/model"
)

type fakeOutboxRepo struct {
	created []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, evt *model.OutboxEvent) error {
	f.created = append(f.created, evt)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEventsWithLock(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string, *time.Time) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestEmitWritesOutboxRow(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := NewService(repo)

	err := svc.Emit(context.Background(), model.EventUserCreated, map[string]interface{}{"id": 7})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	evt := repo.created[0]
	assert.Equal(t, model.EventUserCreated, evt.EventType)
	assert.JSONEq(t, `{"id":7}`, string(evt.Payload))
}

func TestEmitRejectsUnmarshalablePayload(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := NewService(repo)

	err := svc.Emit(context.Background(), model.EventUserCreated, make(chan int))
	require.Error(t, err)
	assert.Empty(t, repo.created)

	var jsonErr *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &jsonErr)
}
