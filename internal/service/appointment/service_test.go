package appointment

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentika/clinic-api/internal/model"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

type fakeApptRepo struct {
	seq   int64
	appts map[int64]*model.Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{appts: make(map[int64]*model.Appointment)}
}

func (f *fakeApptRepo) Create(_ context.Context, a *model.Appointment) error {
	f.seq++
	a.ID = f.seq
	a.CreatedAt = time.Now().UTC()
	cp := *a
	f.appts[a.ID] = &cp
	return nil
}

func (f *fakeApptRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApptRepo) Update(_ context.Context, a *model.Appointment) error {
	if _, ok := f.appts[a.ID]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	cp := *a
	f.appts[a.ID] = &cp
	return nil
}

func (f *fakeApptRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.appts[id]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeApptRepo) List(_ context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appts {
		if filter != nil {
			if !filter.From.IsZero() && a.Date.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && !a.Date.Before(filter.To) {
				continue
			}
			if filter.PatientID != 0 && a.PatientID != filter.PatientID {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeApptRepo) CountOverlapping(_ context.Context, staffID int64, start, end time.Time, excludeID int64) (int, error) {
	count := 0
	for _, a := range f.appts {
		if a.ID == excludeID || a.StaffID == nil || *a.StaffID != staffID {
			continue
		}
		if a.Status == model.AppointmentStatusCancelled || a.Status == model.AppointmentStatusCompleted {
			continue
		}
		if a.Date.Before(end) && a.End().After(start) {
			count++
		}
	}
	return count, nil
}

type fakePatientRepo struct {
	patients map[int64]*model.Patient
}

func (f *fakePatientRepo) Create(context.Context, *model.Patient) error { return nil }

func (f *fakePatientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePatientRepo) GetByUserID(_ context.Context, _ int64) (*model.Patient, error) {
	return nil, apperrors.NewNotFound("patient", nil)
}

func (f *fakePatientRepo) Update(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(context.Context, int64) error          { return nil }

func (f *fakePatientRepo) List(context.Context) ([]*model.Patient, error) { return nil, nil }

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) Get(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NewNotFound("user", nil)
}

func (f *fakeUserRepo) Update(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) Delete(context.Context, int64) error       { return nil }

func (f *fakeUserRepo) List(context.Context, *model.UserFilter) ([]*model.User, error) {
	return nil, nil
}

type emitRecorder struct {
	events []string
}

func (r *emitRecorder) Emit(_ context.Context, eventType string, _ interface{}) error {
	r.events = append(r.events, eventType)
	return nil
}

type emailRecorder struct {
	confirmations []string
	cancellations []string
	fail          bool
}

func (r *emailRecorder) SendWelcome(context.Context, string, string) error { return nil }

func (r *emailRecorder) SendAppointmentConfirmation(_ context.Context, to, _ string, _ time.Time, _ int) error {
	if r.fail {
		return errors.New("smtp down")
	}
	r.confirmations = append(r.confirmations, to)
	return nil
}

func (r *emailRecorder) SendAppointmentCancellation(_ context.Context, to, _ string, _ time.Time) error {
	if r.fail {
		return errors.New("smtp down")
	}
	r.cancellations = append(r.cancellations, to)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newTestService() (*Service, *fakeApptRepo, *emitRecorder, *emailRecorder) {
	repo := newFakeApptRepo()
	patients := &fakePatientRepo{patients: map[int64]*model.Patient{
		1: {ID: 1, UserID: 10},
	}}
	users := &fakeUserRepo{users: map[int64]*model.User{
		10: {ID: 10, Email: "pat@example.com", FullName: "Pat Doe"},
	}}
	events := &emitRecorder{}
	mail := &emailRecorder{}
	svc := NewService(repo, patients, users, events, mail, testLogger())
	return svc, repo, events, mail
}

func apptReq(patientID int64, date time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID: patientID,
		Date:      date,
	}
}

func TestCreateAppointmentDefaults(t *testing.T) {
	svc, _, events, mail := newTestService()

	appt, err := svc.CreateAppointment(context.Background(),
		apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, model.DefaultAppointmentDuration, appt.Duration)
	assert.Equal(t, []string{model.EventAppointmentCreated}, events.events)
	assert.Empty(t, mail.confirmations)
}

func TestDoubleBookingAccepted(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	staff := int64(5)
	slot := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first := apptReq(1, slot)
	first.StaffID = &staff
	_, err := svc.CreateAppointment(ctx, first)
	require.NoError(t, err)

	second := apptReq(1, slot.Add(15*time.Minute))
	second.StaffID = &staff
	appt, err := svc.CreateAppointment(ctx, second)
	require.NoError(t, err)
	assert.NotZero(t, appt.ID)

	assert.Len(t, repo.appts, 2)
}

func TestCreateConfirmedSendsNotice(t *testing.T) {
	svc, _, _, mail := newTestService()

	req := apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	confirmed := model.AppointmentStatusConfirmed
	req.Status = &confirmed

	_, err := svc.CreateAppointment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"pat@example.com"}, mail.confirmations)
}

func TestAppointmentLifecycle(t *testing.T) {
	svc, _, _, mail := newTestService()
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx,
		apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// pending may not jump straight to completed
	skip := apptReq(1, created.Date)
	completed := model.AppointmentStatusCompleted
	skip.Status = &completed
	_, err = svc.UpdateAppointment(ctx, created.ID, skip)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code)

	confirm := apptReq(1, created.Date)
	confirmed := model.AppointmentStatusConfirmed
	confirm.Status = &confirmed
	_, err = svc.UpdateAppointment(ctx, created.ID, confirm)
	require.NoError(t, err)
	assert.Equal(t, []string{"pat@example.com"}, mail.confirmations)

	cancel := apptReq(1, created.Date)
	cancelled := model.AppointmentStatusCancelled
	cancel.Status = &cancelled
	_, err = svc.UpdateAppointment(ctx, created.ID, cancel)
	require.NoError(t, err)
	assert.Equal(t, []string{"pat@example.com"}, mail.cancellations)

	// cancelled is terminal
	reopen := apptReq(1, created.Date)
	pending := model.AppointmentStatusPending
	reopen.Status = &pending
	_, err = svc.UpdateAppointment(ctx, created.ID, reopen)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code)
}

func TestUpdateKeepsStoredValuesWhenOmitted(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	req := apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	duration := 60
	req.Duration = &duration
	created, err := svc.CreateAppointment(ctx, req)
	require.NoError(t, err)

	update := apptReq(1, created.Date.Add(time.Hour))
	updated, err := svc.UpdateAppointment(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, 60, updated.Duration)
	assert.Equal(t, model.AppointmentStatusPending, updated.Status)
	assert.Equal(t, created.Date.Add(time.Hour), updated.Date)
}

func TestNoticeFailureDoesNotFailMutation(t *testing.T) {
	svc, _, _, mail := newTestService()
	mail.fail = true
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx,
		apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	confirm := apptReq(1, created.Date)
	confirmed := model.AppointmentStatusConfirmed
	confirm.Status = &confirmed

	updated, err := svc.UpdateAppointment(ctx, created.ID, confirm)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
}

func TestListToday(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	now := time.Now()
	_, err := svc.CreateAppointment(ctx, apptReq(1, now))
	require.NoError(t, err)
	_, err = svc.CreateAppointment(ctx, apptReq(1, now.AddDate(0, 0, -1)))
	require.NoError(t, err)
	_, err = svc.CreateAppointment(ctx, apptReq(1, now.AddDate(0, 0, 2)))
	require.NoError(t, err)

	today, err := svc.ListToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.WithinDuration(t, now, today[0].Date, time.Second)
}

func TestDeleteAppointment(t *testing.T) {
	svc, repo, events, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx,
		apptReq(1, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAppointment(ctx, created.ID))
	assert.Empty(t, repo.appts)
	assert.Contains(t, events.events, model.EventAppointmentDeleted)
}
