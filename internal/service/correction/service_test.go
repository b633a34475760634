package correction

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var wib = time.FixedZone("WIB", 7*60*60)

const (
	employeeID = "0190b7a4-5e7f-7c3a-9d2e-1f2a3b4c5d6e"
	otherID    = "0190b7a4-5e7f-7c3a-9d2e-1f2a3b4c5d6f"
	reviewerID = "0190b7a4-5e7f-7c3a-9d2e-aaaaaaaaaaaa"
)

type fixture struct {
	store   *memory.Store
	service correction.CorrectionService
	day     shift.Shift
	late    shift.Shift
}

func newFixture(t *testing.T, fallback correction.ShiftFallback) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.AddEmployee(employeeID, "Budi Santoso")
	store.AddEmployee(otherID, "Siti Rahma")

	late, err := store.Shifts().Create(ctx, shift.Shift{
		Name: "Late", StartTime: "13:00", EndTime: "21:00", EarlyCheckInMinutes: 30, LateCheckoutMinutes: 30,
	})
	require.NoError(t, err)
	day, err := store.Shifts().Create(ctx, shift.Shift{
		Name: "Day", StartTime: "08:00", EndTime: "17:00", EarlyCheckInMinutes: 30, LateCheckoutMinutes: 15,
	})
	require.NoError(t, err)

	svc := NewCorrectionService(store.Corrections(), store.Attendances(), store.Shifts(), store, fallback, wib, zap.NewNop())
	return fixture{store: store, service: svc, day: day, late: late}
}

func on(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, wib)
}

func ptr[T any](v T) *T { return &v }

func (f fixture) checkIn(t *testing.T, emp string, sh shift.Shift, at time.Time, status attendance.Status, late int) attendance.Attendance {
	t.Helper()
	rec, err := f.store.Attendances().UpsertCheckIn(context.Background(), attendance.Attendance{
		EmployeeID:  emp,
		ShiftID:     sh.ID,
		Date:        attendance.DateKey(at, wib),
		CheckIn:     &at,
		Status:      status,
		LateMinutes: late,
	})
	require.NoError(t, err)
	return rec
}

func TestApprove_ForgotCheckoutCompletesRecord(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeForgotCheckOut),
		Reason:       "forgot to tap out",
		AttendanceID: &rec.ID,
		NewCheckOut:  ptr("2024-03-04T17:00:00+07:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusPending, req.Status)

	approved, err := f.service.Approve(ctx, req.ID, reviewerID, ptr("ok"), on(5, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, correction.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, reviewerID, *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)

	got, err := f.store.Attendances().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOut)
	assert.True(t, got.CheckOut.Equal(on(4, 17, 0)))
	require.NotNil(t, got.WorkHours)
	assert.Equal(t, 9.0, *got.WorkHours)
	assert.Equal(t, 0, got.EarlyMinutes)
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestApprove_CorrectionKeepsStatus(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 20), attendance.StatusLate, 20)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeCorrection),
		Reason:       "gate reader was down",
		AttendanceID: &rec.ID,
		NewCheckIn:   ptr("2024-03-04T07:55:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 0))
	require.NoError(t, err)

	got, err := f.store.Attendances().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckIn.Equal(on(4, 7, 55)))
	assert.Equal(t, 0, got.LateMinutes)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Nil(t, got.WorkHours)
}

func TestApprove_ReviewHappensOnce(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeForgotCheckOut),
		Reason:       "forgot",
		AttendanceID: &rec.ID,
		NewCheckOut:  ptr("2024-03-04T17:00:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 0))
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 5))
	assert.ErrorIs(t, err, correction.ErrInvalidState)
	_, err = f.service.Reject(ctx, req.ID, reviewerID, nil, on(5, 9, 5))
	assert.ErrorIs(t, err, correction.ErrInvalidState)

	_, err = f.service.Approve(ctx, "0190b7a4-0000-7000-8000-000000000000", reviewerID, nil, on(5, 9, 5))
	assert.ErrorIs(t, err, correction.ErrCorrectionNotFound)
}

func TestReject_LeavesAttendanceAlone(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeForgotCheckOut),
		Reason:       "forgot",
		AttendanceID: &rec.ID,
		NewCheckOut:  ptr("2024-03-04T17:00:00+07:00"),
	})
	require.NoError(t, err)

	rejected, err := f.service.Reject(ctx, req.ID, reviewerID, ptr("no proof"), on(5, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, correction.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.Notes)
	assert.Equal(t, "no proof", *rejected.Notes)

	got, err := f.store.Attendances().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CheckOut)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 5))
	assert.ErrorIs(t, err, correction.ErrInvalidState)
}

func TestApprove_ForgotCheckinCreatesRecordOnFallbackShift(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType: string(correction.TypeForgotCheckIn),
		Reason:      "phone died",
		NewCheckIn:  ptr("2024-03-06T08:10:00+07:00"),
		NewCheckOut: ptr("2024-03-06T17:00:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(7, 9, 0))
	require.NoError(t, err)

	rec, err := f.store.Attendances().GetByKey(ctx, employeeID, on(6, 12, 0), f.day.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, 10, rec.LateMinutes)
	require.NotNil(t, rec.WorkHours)
	assert.InDelta(t, 8.83, *rec.WorkHours, 0.001)
}

func TestApprove_ForgotCheckoutPairsWithDayRecord(t *testing.T) {
	f := newFixture(t, correction.FallbackNone)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.late, on(4, 13, 0), attendance.StatusPresent, 0)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:   string(correction.TypeForgotCheckOut),
		Reason:        "forgot",
		RequestedDate: ptr("2024-03-04"),
		NewCheckOut:   ptr("2024-03-04T20:30:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 0))
	require.NoError(t, err)

	got, err := f.store.Attendances().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckIn)
	assert.True(t, got.CheckIn.Equal(on(4, 13, 0)))
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, 30, got.EarlyMinutes)
	require.NotNil(t, got.WorkHours)
	assert.Equal(t, 7.5, *got.WorkHours)
}

func TestApprove_StoredDateStaysOnItsDay(t *testing.T) {
	ctx := context.Background()
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	store := memory.NewStore()
	day, err := store.Shifts().Create(ctx, shift.Shift{
		Name: "Day", StartTime: "08:00", EndTime: "17:00", EarlyCheckInMinutes: 30, LateCheckoutMinutes: 15,
	})
	require.NoError(t, err)
	svc := NewCorrectionService(store.Corrections(), store.Attendances(), store.Shifts(), store, correction.FallbackNone, auckland, zap.NewNop())

	// DATE columns come back as noon UTC, which is already the next day in NZDT.
	requested := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	in := time.Date(2024, time.January, 10, 8, 0, 0, 0, auckland)
	out := time.Date(2024, time.January, 10, 17, 0, 0, 0, auckland)
	req, err := store.Corrections().Create(ctx, correction.CorrectionRequest{
		EmployeeID:    employeeID,
		ShiftID:       &day.ID,
		RequestType:   correction.TypeForgotCheckIn,
		Reason:        "badge left at home",
		RequestedDate: &requested,
		NewCheckIn:    &in,
		NewCheckOut:   &out,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, req.ID, reviewerID, nil, out.AddDate(0, 0, 1))
	require.NoError(t, err)

	onDay, err := store.Attendances().GetByKey(ctx, employeeID, time.Date(2024, time.January, 10, 12, 0, 0, 0, auckland), day.ID)
	require.NoError(t, err)
	require.NotNil(t, onDay)
	assert.Equal(t, "2024-01-10", attendance.DateString(onDay.Date))
	assert.Zero(t, onDay.LateMinutes)
	require.NotNil(t, onDay.WorkHours)
	assert.Equal(t, 9.0, *onDay.WorkHours)

	nextDay, err := store.Attendances().GetByKey(ctx, employeeID, time.Date(2024, time.January, 11, 12, 0, 0, 0, auckland), day.ID)
	require.NoError(t, err)
	assert.Nil(t, nextDay)
}

func TestApprove_ThenCheckInKeepsWorkHoursInStep(t *testing.T) {
	f := newFixture(t, correction.FallbackNone)
	ctx := context.Background()

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:   string(correction.TypeForgotCheckOut),
		Reason:        "left through the back door",
		ShiftID:       &f.day.ID,
		RequestedDate: ptr("2024-03-04"),
		NewCheckOut:   ptr("2024-03-04T17:00:00+07:00"),
	})
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(4, 9, 0))
	require.NoError(t, err)

	pending, err := f.store.Attendances().GetByKey(ctx, employeeID, on(4, 12, 0), f.day.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, pending.CheckIn)
	assert.Nil(t, pending.WorkHours)

	// The check-in of the same day lands after the approval.
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)
	require.NotNil(t, rec.CheckOut)
	assert.True(t, rec.CheckOut.Equal(on(4, 17, 0)))
	assert.Equal(t, attendance.WorkHours(rec.CheckIn, rec.CheckOut), rec.WorkHours)
	require.NotNil(t, rec.WorkHours)
	assert.Equal(t, 9.0, *rec.WorkHours)
}

func TestApprove_WithoutShiftRollsBack(t *testing.T) {
	f := newFixture(t, correction.FallbackNone)
	ctx := context.Background()

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType: string(correction.TypeForgotCheckIn),
		Reason:      "phone died",
		NewCheckIn:  ptr("2024-03-06T08:00:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(7, 9, 0))
	assert.ErrorIs(t, err, correction.ErrShiftRequired)

	got, err := f.service.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, correction.StatusPending, got.Status)
}

func TestApprove_InvertedTimesRollBack(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, employeeID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)
	_, err := f.store.Attendances().RecordCheckOut(ctx, rec.ID, on(4, 17, 0), 0, ptr(9.0))
	require.NoError(t, err)

	req, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeCorrection),
		Reason:       "wrong time",
		AttendanceID: &rec.ID,
		NewCheckIn:   ptr("2024-03-04T18:00:00+07:00"),
	})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, reviewerID, nil, on(5, 9, 0))
	assert.ErrorIs(t, err, correction.ErrInvalidTimeRange)

	got, err := f.store.Attendances().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckIn.Equal(on(4, 8, 0)))

	pending, err := f.service.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, correction.StatusPending, pending.Status)
}

func TestCreateRequest_Rejections(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()
	rec := f.checkIn(t, otherID, f.day, on(4, 8, 0), attendance.StatusPresent, 0)

	_, err := f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType:  string(correction.TypeForgotCheckOut),
		Reason:       "not mine",
		AttendanceID: &rec.ID,
		NewCheckOut:  ptr("2024-03-04T17:00:00+07:00"),
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = f.service.CreateRequest(ctx, employeeID, correction.CreateCorrectionRequest{
		RequestType: "vacation",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "request_type")
	assert.Contains(t, verrs.ToMap(), "reason")
}

func TestListMine_OnlyOwnRequests(t *testing.T) {
	f := newFixture(t, correction.FallbackFirstShift)
	ctx := context.Background()

	for _, emp := range []string{employeeID, otherID, employeeID} {
		_, err := f.service.CreateRequest(ctx, emp, correction.CreateCorrectionRequest{
			RequestType:   string(correction.TypeForgotCheckIn),
			Reason:        "forgot",
			RequestedDate: ptr("2024-03-04"),
			NewCheckIn:    ptr("2024-03-04T08:00:00+07:00"),
		})
		require.NoError(t, err)
	}

	mine, total, err := f.service.ListMine(ctx, employeeID, correction.CorrectionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, c := range mine {
		assert.Equal(t, employeeID, c.EmployeeID)
	}

	all, total, err := f.service.ListAll(ctx, correction.CorrectionFilter{EmployeeName: ptr("siti")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, all, 1)
	assert.Equal(t, otherID, all[0].EmployeeID)
}
