package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "must be between 1 and 12"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"clean not confirmed", payroll.ErrCleanNotConfirmed, http.StatusBadRequest, string(workflow.KindInvalidInput)},
		{"invariant", &attendance.InvariantError{EmployeeID: "emp-1", Field: attendance.FieldPayableDays, Computed: decimal.NewFromInt(30), Ceiling: decimal.NewFromInt(29), Month: 2, Year: 2024}, http.StatusUnprocessableEntity, string(workflow.KindInvariantViolated)},
		{"period not found", payroll.ErrPeriodNotFound, http.StatusNotFound, string(workflow.KindPeriodNotFound)},
		{"already completed", payroll.ErrPeriodAlreadyCompleted, http.StatusConflict, string(workflow.KindPeriodAlreadyCompleted)},
		{"run conflict", payroll.ErrRunConflict, http.StatusConflict, string(workflow.KindPeriodNotProcessable)},
		{"period exists", payroll.ErrPeriodAlreadyExists, http.StatusConflict, string(workflow.KindPeriodAlreadyExists)},
		{"stage gate", &workflow.StageError{Stage: workflow.StagePayrollProcessing, Required: workflow.StageAttendanceProcessing, Status: workflow.StatusActive}, http.StatusConflict, string(workflow.KindStageUnavailable)},
		{"upstream", &payroll.UpstreamError{Message: "tax table missing"}, http.StatusBadGateway, string(workflow.KindUpstreamComputation)},
		{"readiness", fmt.Errorf("evaluate: %w", readiness.ErrReadinessUnavailable), http.StatusServiceUnavailable, string(workflow.KindReadinessUnavailable)},
		{"missing company", jwt.ErrMissingCompany, http.StatusUnauthorized, string(workflow.KindUnauthorized)},
		{"invalid token", jwt.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"role", jwt.ErrInsufficientRole, http.StatusForbidden, "FORBIDDEN"},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, c.err)

			assert.Equal(t, c.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, c.code, body.Error.Code)
		})
	}
}

func TestHandleError_UpstreamMessageVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, &payroll.UpstreamError{Message: "tax table for 2024 is not loaded"})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tax table for 2024 is not loaded", body.Error.Message)
}

func TestHandleError_InternalHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Error.Message, "10.0.0.5")
}

func TestHandleErrorWithData_AttachesState(t *testing.T) {
	rec := httptest.NewRecorder()
	st := workflow.NewState(2, 2024)
	HandleErrorWithData(rec, payroll.ErrPeriodNotFound, st)

	var body struct {
		Data  workflow.WorkflowState `json:"data"`
		Error *ErrorDetail           `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Period)
	assert.Equal(t, 2, body.Data.Period.Month)
	assert.Len(t, body.Data.Stages, 4)
}
