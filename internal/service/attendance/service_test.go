package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var wib = time.FixedZone("WIB", 7*60*60)

const employeeID = "0190b7a4-5e7f-7c3a-9d2e-1f2a3b4c5d6e"

type fixture struct {
	store   *memory.Store
	service attendance.AttendanceService
	shift   shift.Shift
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	sh, err := store.Shifts().Create(context.Background(), shift.Shift{
		Name: "Day", StartTime: "08:00", EndTime: "17:00", EarlyCheckInMinutes: 30, LateCheckoutMinutes: 15,
	})
	require.NoError(t, err)

	return fixture{
		store:   store,
		service: NewAttendanceService(store.Attendances(), store.Shifts(), wib, zap.NewNop()),
		shift:   sh,
	}
}

func on(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, wib)
}

func TestCheckIn_OnTimeThenIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 45))
	require.NoError(t, err)
	assert.True(t, first.Outcome.Valid)
	assert.Equal(t, attendance.CodeOnTime, first.Outcome.Code)
	require.NotNil(t, first.Attendance)
	assert.Equal(t, attendance.StatusPresent, first.Attendance.Status)
	assert.Equal(t, "2024-03-04", attendance.DateString(first.Attendance.Date))

	second, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 50))
	require.NoError(t, err)
	assert.False(t, second.Outcome.Valid)
	assert.Equal(t, attendance.CodeAlreadyCheckedIn, second.Outcome.Code)
	require.NotNil(t, second.Attendance)
	assert.Equal(t, first.Attendance.ID, second.Attendance.ID)
	assert.True(t, second.Attendance.CheckIn.Equal(on(4, 7, 45)))
}

func TestCheckIn_LateRecordsMinutes(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.CheckIn(context.Background(), employeeID, f.shift.ID, on(4, 8, 20))
	require.NoError(t, err)
	assert.True(t, res.Outcome.Valid)
	assert.Equal(t, attendance.CodeLate, res.Outcome.Code)
	require.NotNil(t, res.Attendance)
	assert.Equal(t, attendance.StatusLate, res.Attendance.Status)
	assert.Equal(t, 20, res.Attendance.LateMinutes)
}

func TestCheckIn_OutsideWindowDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, now := range []time.Time{on(4, 7, 25), on(4, 8, 45)} {
		res, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, now)
		require.NoError(t, err)
		assert.False(t, res.Outcome.Valid)
		assert.Nil(t, res.Attendance)
	}

	rec, err := f.service.GetTodayAttendance(ctx, employeeID, &f.shift.ID, on(4, 9, 0))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCheckIn_UsesBusinessLocation(t *testing.T) {
	f := newFixture(t)

	// 00:50 UTC is 07:50 in WIB.
	res, err := f.service.CheckIn(context.Background(), employeeID, f.shift.ID, time.Date(2024, 3, 4, 0, 50, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, attendance.CodeOnTime, res.Outcome.Code)
	assert.Equal(t, "2024-03-04", attendance.DateString(res.Attendance.Date))
}

func TestCheckIn_OnCorrectedCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := attendance.DateKey(on(4, 0, 0), wib)

	// An approved forgot_checkout already holds the check-out of the day.
	out := on(4, 17, 0)
	_, err := f.store.Attendances().Upsert(ctx, attendance.Attendance{
		EmployeeID: employeeID, ShiftID: f.shift.ID, Date: date, CheckOut: &out, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	res, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 45))
	require.NoError(t, err)
	assert.True(t, res.Outcome.Valid)
	require.NotNil(t, res.Attendance)
	require.NotNil(t, res.Attendance.CheckOut)
	assert.True(t, res.Attendance.CheckOut.Equal(out))
	require.NotNil(t, res.Attendance.WorkHours)
	assert.Equal(t, 9.25, *res.Attendance.WorkHours)
}

func TestCheckIn_DropsCorrectedCheckOutBeforeIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := attendance.DateKey(on(4, 0, 0), wib)

	out := on(4, 7, 40)
	_, err := f.store.Attendances().Upsert(ctx, attendance.Attendance{
		EmployeeID: employeeID, ShiftID: f.shift.ID, Date: date, CheckOut: &out, EarlyMinutes: 560, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	res, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 45))
	require.NoError(t, err)
	assert.True(t, res.Outcome.Valid)
	require.NotNil(t, res.Attendance)
	assert.Nil(t, res.Attendance.CheckOut)
	assert.Zero(t, res.Attendance.EarlyMinutes)
	assert.Nil(t, res.Attendance.WorkHours)
}

func TestCheckIn_ShiftErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, employeeID, "0190b7a4-0000-7000-8000-000000000000", on(4, 8, 0))
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)

	require.NoError(t, f.store.Shifts().SoftDelete(ctx, f.shift.ID))
	_, err = f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 8, 0))
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestCheckIn_ConcurrentRequestsCreateOneRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	results := make(chan attendance.CheckInResult, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 55))
			assert.NoError(t, err)
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	valid := 0
	for res := range results {
		if res.Outcome.Valid {
			valid++
			continue
		}
		assert.Equal(t, attendance.CodeAlreadyCheckedIn, res.Outcome.Code)
	}
	assert.Equal(t, 1, valid)

	history, err := f.service.GetAttendanceHistory(ctx, employeeID, on(4, 12, 0), on(4, 12, 0))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckOut_BeforeCheckIn(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.CheckOut(context.Background(), employeeID, f.shift.ID, on(4, 17, 0))
	require.NoError(t, err)
	assert.False(t, res.Outcome.Valid)
	assert.Equal(t, attendance.CodeNotCheckedIn, res.Outcome.Code)
	assert.Nil(t, res.Attendance)
}

func TestCheckOut_ComputesWorkHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 8, 0))
	require.NoError(t, err)

	early, err := f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 16, 25))
	require.NoError(t, err)
	assert.False(t, early.Outcome.Valid)
	assert.Equal(t, attendance.CodeTooEarly, early.Outcome.Code)
	assert.Contains(t, early.Outcome.Message, "wait 5 more minutes")
	require.NotNil(t, early.Attendance)
	assert.Nil(t, early.Attendance.CheckOut)

	res, err := f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 16, 40))
	require.NoError(t, err)
	assert.True(t, res.Outcome.Valid)
	assert.Equal(t, 520, res.Outcome.WorkMinutes)
	assert.Equal(t, 20, res.Outcome.EarlyMinutes)
	require.NotNil(t, res.WorkHours)
	assert.Equal(t, 8.67, *res.WorkHours)

	require.NotNil(t, res.Attendance)
	assert.Equal(t, 20, res.Attendance.EarlyMinutes)
	require.NotNil(t, res.Attendance.WorkHours)
	assert.Equal(t, *attendance.WorkHours(res.Attendance.CheckIn, res.Attendance.CheckOut), *res.Attendance.WorkHours)

	again, err := f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 17, 0))
	require.NoError(t, err)
	assert.False(t, again.Outcome.Valid)
	assert.Equal(t, attendance.CodeAlreadyCheckedOut, again.Outcome.Code)
}

func TestCheckOut_TooLate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 8, 0))
	require.NoError(t, err)

	res, err := f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 17, 16))
	require.NoError(t, err)
	assert.False(t, res.Outcome.Valid)
	assert.Equal(t, attendance.CodeTooLate, res.Outcome.Code)
}

func TestGetTodayStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.service.GetTodayStatus(ctx, employeeID, &f.shift.ID, on(4, 7, 40))
	require.NoError(t, err)
	assert.Equal(t, attendance.NextCheckIn, status.NextAction)
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)
	require.NotNil(t, status.Shift)

	_, err = f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 7, 40))
	require.NoError(t, err)

	status, err = f.service.GetTodayStatus(ctx, employeeID, nil, on(4, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, attendance.NextCheckOut, status.NextAction)
	assert.False(t, status.CanCheckOut)
	require.NotNil(t, status.Shift)
	assert.Equal(t, f.shift.ID, status.Shift.ID)

	status, err = f.service.GetTodayStatus(ctx, employeeID, nil, on(4, 16, 45))
	require.NoError(t, err)
	assert.True(t, status.CanCheckOut)

	_, err = f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 17, 0))
	require.NoError(t, err)

	status, err = f.service.GetTodayStatus(ctx, employeeID, nil, on(4, 17, 5))
	require.NoError(t, err)
	assert.Equal(t, attendance.NextDone, status.NextAction)
	assert.False(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)
}

func TestGetTodayStatus_NoShiftKnown(t *testing.T) {
	f := newFixture(t)

	status, err := f.service.GetTodayStatus(context.Background(), employeeID, nil, on(4, 8, 0))
	require.NoError(t, err)
	assert.Nil(t, status.Shift)
	assert.Nil(t, status.Attendance)
	assert.Equal(t, attendance.NextCheckIn, status.NextAction)
	assert.False(t, status.CanCheckIn)
}

func TestGetMonthlyWorkHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late, err := f.store.Shifts().Create(ctx, shift.Shift{Name: "Late", StartTime: "13:00", EndTime: "21:00", EarlyCheckInMinutes: 10})
	require.NoError(t, err)

	// Day 4: full day shift, on time.
	_, err = f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 8, 0))
	require.NoError(t, err)
	_, err = f.service.CheckOut(ctx, employeeID, f.shift.ID, on(4, 17, 0))
	require.NoError(t, err)

	// Day 5: on time for one shift, late for another, no check-out on the second.
	_, err = f.service.CheckIn(ctx, employeeID, f.shift.ID, on(5, 8, 0))
	require.NoError(t, err)
	_, err = f.service.CheckOut(ctx, employeeID, f.shift.ID, on(5, 16, 30))
	require.NoError(t, err)
	_, err = f.service.CheckIn(ctx, employeeID, late.ID, on(5, 13, 10))
	require.NoError(t, err)

	// Next month is excluded.
	_, err = f.service.CheckIn(ctx, employeeID, f.shift.ID, time.Date(2024, 4, 1, 8, 0, 0, 0, wib))
	require.NoError(t, err)

	summary, err := f.service.GetMonthlyWorkHours(ctx, employeeID, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.AttendanceCount)
	assert.Equal(t, 17.5, summary.TotalHours)
	require.Len(t, summary.Days, 2)

	assert.Equal(t, "2024-03-04", attendance.DateString(summary.Days[0].Date))
	assert.Equal(t, attendance.StatusPresent, summary.Days[0].Status)
	assert.Equal(t, 9.0, summary.Days[0].WorkHours)

	assert.Equal(t, "2024-03-05", attendance.DateString(summary.Days[1].Date))
	assert.Equal(t, attendance.StatusLate, summary.Days[1].Status)
	assert.Equal(t, 8.5, summary.Days[1].WorkHours)

	_, err = f.service.GetMonthlyWorkHours(ctx, employeeID, 2024, 13)
	assert.ErrorIs(t, err, attendance.ErrInvalidMonth)
}

func TestGetAttendanceHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(day, 8, 0))
		require.NoError(t, err)
	}

	history, err := f.service.GetAttendanceHistory(ctx, employeeID, on(2, 12, 0), on(3, 12, 0))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2024-03-03", attendance.DateString(history[0].Date))
	assert.Equal(t, "2024-03-02", attendance.DateString(history[1].Date))

	_, err = f.service.GetAttendanceHistory(ctx, employeeID, on(3, 12, 0), on(2, 12, 0))
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)
}

func TestGetAllAttendances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := "0190b7a4-5e7f-7c3a-9d2e-aaaaaaaaaaaa"

	_, err := f.service.CheckIn(ctx, employeeID, f.shift.ID, on(4, 8, 0))
	require.NoError(t, err)
	_, err = f.service.CheckIn(ctx, other, f.shift.ID, on(4, 8, 10))
	require.NoError(t, err)

	records, total, err := f.service.GetAllAttendances(ctx, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)

	status := string(attendance.StatusLate)
	records, total, err = f.service.GetAllAttendances(ctx, attendance.AttendanceFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other, records[0].EmployeeID)

	bad := "sometimes"
	_, _, err = f.service.GetAllAttendances(ctx, attendance.AttendanceFilter{Status: &bad})
	assert.Error(t, err)
}
