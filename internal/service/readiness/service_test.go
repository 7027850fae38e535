package readiness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFunc func(ctx context.Context, companyID string, month, year int) (readiness.Report, error)

func (f checkerFunc) Validate(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
	return f(ctx, companyID, month, year)
}

func companyContext(t *testing.T) context.Context {
	t.Helper()
	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := auth.Encode(map[string]interface{}{"company_id": "company-1"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestEvaluate_NormalizesReport(t *testing.T) {
	svc := NewService(checkerFunc(func(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
		assert.Equal(t, "company-1", companyID)
		return readiness.Report{
			Checks: map[string]readiness.CheckResult{
				"work_schedule": {Status: "passed", Count: -3},
				"base_salary":   {Status: "warning"},
				"bpjs":          {Status: "skipped"},
			},
			TotalEmployees:  10,
			PassedEmployees: 14,
		}, nil
	}), time.Second)

	report, err := svc.Evaluate(companyContext(t), 2, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Month)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, readiness.CheckStatusPassed, report.Checks["work_schedule"].Status)
	assert.Zero(t, report.Checks["work_schedule"].Count)
	assert.Equal(t, readiness.CheckStatusWarning, report.Checks["base_salary"].Status)
	assert.Equal(t, readiness.CheckStatusPending, report.Checks["bpjs"].Status)
	assert.Equal(t, 10, report.PassedEmployees)
	// pending check with no overall status from the checker
	assert.Equal(t, readiness.OverallNotReady, report.OverallStatus)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestNormalize_DerivesOverall(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		checks map[string]readiness.CheckResult
		given  readiness.OverallStatus
		want   readiness.OverallStatus
	}{
		{"all passed", map[string]readiness.CheckResult{"a": {Status: "PASSED"}}, "", readiness.OverallReady},
		{"warning", map[string]readiness.CheckResult{"a": {Status: "PASSED"}, "b": {Status: "Warning"}}, "", readiness.OverallReadyWithWarnings},
		{"failed", map[string]readiness.CheckResult{"a": {Status: "FAILED"}, "b": {Status: "WARNING"}}, "", readiness.OverallNotReady},
		{"lower case given", map[string]readiness.CheckResult{"a": {Status: "FAILED"}}, "ready", readiness.OverallReady},
		{"unknown given", map[string]readiness.CheckResult{"a": {Status: "PASSED"}}, "GREEN", readiness.OverallReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(readiness.Report{Checks: tt.checks, OverallStatus: tt.given}, 2, 2024, now)
			assert.Equal(t, tt.want, got.OverallStatus)
			assert.Equal(t, now, got.GeneratedAt)
		})
	}
}

func TestEvaluate_CheckerFailureBecomesErrorReport(t *testing.T) {
	svc := NewService(checkerFunc(func(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
		return readiness.Report{}, errors.New("connection refused")
	}), time.Second)

	report, err := svc.Evaluate(companyContext(t), 2, 2024)
	require.NoError(t, err)

	assert.Equal(t, readiness.OverallError, report.OverallStatus)
	assert.Zero(t, report.TotalEmployees)
	assert.Zero(t, report.PassedEmployees)
	assert.Contains(t, report.Error, "connection refused")
	assert.False(t, report.Ready())
}

func TestEvaluate_Timeout(t *testing.T) {
	svc := NewService(checkerFunc(func(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
		<-ctx.Done()
		return readiness.Report{}, ctx.Err()
	}), 20*time.Millisecond)

	report, err := svc.Evaluate(companyContext(t), 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, readiness.OverallError, report.OverallStatus)
	assert.Contains(t, report.Error, "timed out")
}

func TestEvaluate_InvalidPeriod(t *testing.T) {
	svc := NewService(checkerFunc(func(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
		t.Fatal("checker must not be called")
		return readiness.Report{}, nil
	}), time.Second)

	_, err := svc.Evaluate(companyContext(t), 0, 2024)
	require.Error(t, err)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "company-1", r.URL.Query().Get("company_id"))
		assert.Equal(t, "2", r.URL.Query().Get("month"))
		assert.Equal(t, "2024", r.URL.Query().Get("year"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"checks":{"work_schedule":{"status":"PASSED","count":0}},"total_employees":4,"passed_employees":4,"overall_status":"READY"}}`))
	}))
	defer srv.Close()

	report, err := NewHTTPChecker(srv.URL+"/readiness", srv.Client()).Validate(context.Background(), "company-1", 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, readiness.OverallReady, report.OverallStatus)
	assert.Equal(t, 4, report.TotalEmployees)
}

func TestHTTPChecker_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"MAINTENANCE","message":"checks are being rebuilt"}}`))
	}))
	defer srv.Close()

	_, err := NewHTTPChecker(srv.URL, srv.Client()).Validate(context.Background(), "company-1", 2, 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, readiness.ErrCheckerStatus)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "checks are being rebuilt")
}
