package attendance

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	profiles map[string]attendance.ShiftProfile
}

func (s *stubDirectory) ListActiveProfiles(ctx context.Context, companyID string) ([]attendance.ShiftProfile, error) {
	var out []attendance.ShiftProfile
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubDirectory) GetProfile(ctx context.Context, companyID string, employeeID string) (attendance.ShiftProfile, error) {
	p, ok := s.profiles[employeeID]
	if !ok {
		return attendance.ShiftProfile{}, attendance.ErrShiftProfileNotFound
	}
	return p, nil
}

type stubBase struct {
	records []attendance.BaseRecord
}

func (s *stubBase) ComputeBase(ctx context.Context, companyID string, month, year int) ([]attendance.BaseRecord, error) {
	return s.records, nil
}

func eightHourDirectory(employeeIDs ...string) *stubDirectory {
	dir := &stubDirectory{profiles: map[string]attendance.ShiftProfile{}}
	for _, id := range employeeIDs {
		dir.profiles[id] = attendance.ShiftProfile{EmployeeID: id, StandardDailyHours: d("8"), OvertimeEligible: true}
	}
	return dir
}

func companyContext(t *testing.T, companyID string) context.Context {
	t.Helper()
	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := auth.Encode(map[string]interface{}{"company_id": companyID, "user_id": "user-1"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func summaryFor(employeeID string, fields attendance.AttendanceFields) attendance.AttendanceSummary {
	profile := attendance.ShiftProfile{EmployeeID: employeeID, StandardDailyHours: d("8"), OvertimeEligible: true}
	return attendance.NewSummary("company-1", 2, 2024, profile, fields)
}

func TestSummaryService_Recalculate_UsesDirectoryProfile(t *testing.T) {
	dir := &stubDirectory{profiles: map[string]attendance.ShiftProfile{
		"emp-9": {EmployeeID: "emp-9", StandardDailyHours: d("7"), OvertimeEligible: false},
	}}
	svc := NewSummaryService(dir, &stubBase{})

	var fields attendance.AttendanceFields
	fields.PresentDays = d("20")

	// the profile carried by the record is ignored
	record := attendance.AttendanceSummary{
		EmployeeID: "emp-9",
		Shift:      attendance.ShiftProfile{EmployeeID: "emp-9", StandardDailyHours: d("12"), OvertimeEligible: true},
		Final:      fields,
	}

	result, err := svc.Recalculate(companyContext(t, "company-1"), attendance.RecalculateRequest{
		Month:     2,
		Year:      2024,
		Record:    record,
		Overrides: attendance.RawOverrides{attendance.FieldHolidayDays: "2"},
	})
	require.NoError(t, err)

	assert.True(t, result.Final.PayableDays.Equal(d("22")))
	assert.True(t, result.Final.HolidayHours.Equal(d("14")))
	assert.True(t, result.Final.RequiredHours.Equal(d("154")))
}

func TestSummaryService_Recalculate_UnknownEmployee(t *testing.T) {
	svc := NewSummaryService(&stubDirectory{}, &stubBase{})

	_, err := svc.Recalculate(companyContext(t, "company-1"), attendance.RecalculateRequest{
		Month:     2,
		Year:      2024,
		Record:    attendance.AttendanceSummary{EmployeeID: "ghost"},
		Overrides: attendance.RawOverrides{attendance.FieldPresentDays: "3"},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestSummaryService_Recalculate_InvalidPeriod(t *testing.T) {
	svc := NewSummaryService(&stubDirectory{}, &stubBase{})

	_, err := svc.Recalculate(context.Background(), attendance.RecalculateRequest{
		Month:  13,
		Year:   2024,
		Record: summaryFor("emp-1", febRecord()),
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "month", verrs[0].Field)
}

func TestSummaryService_Finalize_RejectsWholeSet(t *testing.T) {
	svc := NewSummaryService(eightHourDirectory("emp-1", "emp-2", "emp-3"), &stubBase{})

	over := febRecord()
	over.PaidLeaveDays = d("1")
	alsoOver := febRecord()
	alsoOver.UnpaidLeaveDays = d("2")

	records := []attendance.AttendanceSummary{
		summaryFor("emp-1", febRecord()),
		summaryFor("emp-2", over),
		summaryFor("emp-3", alsoOver),
	}

	saved, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, records)
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.ErrorIs(t, err, attendance.ErrInvariantViolated)

	var violations attendance.InvariantViolations
	require.ErrorAs(t, err, &violations)
	require.Len(t, violations, 2)
	assert.Equal(t, "emp-2", violations[0].EmployeeID)
	assert.Equal(t, "emp-3", violations[1].EmployeeID)
	assert.Contains(t, err.Error(), "30")
	assert.Contains(t, err.Error(), "31")
}

func TestSummaryService_Finalize_KeepsOperatorHours(t *testing.T) {
	svc := NewSummaryService(eightHourDirectory("emp-1"), &stubBase{})

	f := febRecord()
	f.OTHours = d("6")
	f.PayableHours = d("250")

	saved, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, []attendance.AttendanceSummary{summaryFor("emp-1", f)})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	assert.True(t, saved[0].Final.OTHours.Equal(d("6")))
	assert.True(t, saved[0].Final.PayableHours.Equal(d("250")))
	assert.True(t, saved[0].Final.PayableDays.Equal(d("29")))
}

func TestSummaryService_Finalize_DuplicateEmployee(t *testing.T) {
	svc := NewSummaryService(eightHourDirectory("emp-1"), &stubBase{})

	_, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, []attendance.AttendanceSummary{
		summaryFor("emp-1", febRecord()),
		summaryFor("emp-1", febRecord()),
	})
	assert.ErrorIs(t, err, attendance.ErrDuplicateEmployee)
}

func TestSummaryService_Finalize_EmptySet(t *testing.T) {
	svc := NewSummaryService(&stubDirectory{}, &stubBase{})

	_, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, nil)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestSummaryService_Finalize_ReloadsBaseAndShift(t *testing.T) {
	var source attendance.AttendanceFields
	source.PresentDays = d("20")
	source.WeeklyOffDays = d("8")
	source.HolidayDays = d("1")
	source.WorkHours = d("160")

	dir := &stubDirectory{profiles: map[string]attendance.ShiftProfile{
		"emp-1": {EmployeeID: "emp-1", EmployeeName: "Ayu", StandardDailyHours: d("8"), OvertimeEligible: false},
	}}
	svc := NewSummaryService(dir, &stubBase{records: []attendance.BaseRecord{{EmployeeID: "emp-1", Fields: source}}})

	tampered := source
	tampered.PresentDays = d("40")
	rec := summaryFor("emp-1", febRecord())
	rec.Base = tampered
	rec.Shift.StandardDailyHours = d("12")
	rec.Shift.OvertimeEligible = true
	remarks := "two days corrected from the gate log"
	rec.Remarks = &remarks

	saved, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, []attendance.AttendanceSummary{rec})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	assert.True(t, saved[0].Base.PresentDays.Equal(d("20")))
	assert.True(t, saved[0].Base.PayableDays.Equal(d("29")))
	assert.True(t, saved[0].Shift.StandardDailyHours.Equal(d("8")))
	assert.False(t, saved[0].Shift.OvertimeEligible)
	assert.Equal(t, "Ayu", saved[0].EmployeeName)
	assert.Equal(t, "company-1", saved[0].CompanyID)
	assert.True(t, saved[0].Final.PresentDays.Equal(d("20")))
	require.NotNil(t, saved[0].Remarks)
	assert.Equal(t, remarks, *saved[0].Remarks)
}

func TestSummaryService_Finalize_UnknownEmployee(t *testing.T) {
	svc := NewSummaryService(eightHourDirectory("emp-1"), &stubBase{})

	_, err := svc.Finalize(companyContext(t, "company-1"), 2, 2024, []attendance.AttendanceSummary{
		summaryFor("emp-1", febRecord()),
		summaryFor("ghost", febRecord()),
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Contains(t, verrs[0].Message, "ghost")
}

func TestSummaryService_Prepare_FillsBaseHours(t *testing.T) {
	svc := NewSummaryService(&stubDirectory{}, &stubBase{})

	var base attendance.AttendanceFields
	base.PresentDays = d("21")
	base.WeeklyOffDays = d("8")
	base.HolidayDays = d("2")
	base.WorkHours = d("170")
	base.LateMinutes = d("35")

	profile := attendance.ShiftProfile{EmployeeID: "emp-1", EmployeeName: "Ayu", StandardDailyHours: d("8")}
	summary, err := svc.Prepare("company-1", 1, 2024, profile, attendance.BaseRecord{EmployeeID: "emp-1", Fields: base})
	require.NoError(t, err)

	assert.Equal(t, "Ayu", summary.EmployeeName)
	assert.True(t, summary.Base.PayableDays.Equal(d("31")))
	assert.True(t, summary.Base.WeeklyOffHours.Equal(d("64")))
	assert.True(t, summary.Base.HolidayHours.Equal(d("16")))
	assert.True(t, summary.Base.LateMinutes.Equal(d("35")))
	assert.Equal(t, summary.Base, summary.Final)
}
