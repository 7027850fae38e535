package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const (
	OpOpen              = "open"
	OpValidate          = "validate"
	OpProcessAttendance = "process_attendance"
	OpRecalculate       = "recalculate"
	OpSaveAttendance    = "save_attendance"
	OpProcessPayroll    = "process_payroll"
	OpClean             = "clean"
)

type ServiceImpl struct {
	readiness readiness.Service
	lifecycle payroll.LifecycleService
	summaries attendance.SummaryService
	publisher workflow.Publisher
	now       func() time.Time
}

// NewService builds the stage orchestrator. publisher may be nil.
func NewService(
	readinessService readiness.Service,
	lifecycle payroll.LifecycleService,
	summaries attendance.SummaryService,
	publisher workflow.Publisher,
) workflow.Service {
	return &ServiceImpl{
		readiness: readinessService,
		lifecycle: lifecycle,
		summaries: summaries,
		publisher: publisher,
		now:       time.Now,
	}
}

// finish records the outcome of operation, re-derives stages and notifies
// the period's subscribers.
func (s *ServiceImpl) finish(ctx context.Context, st workflow.WorkflowState, operation string, err error) workflow.WorkflowState {
	out := workflow.OutcomeOf(operation, err)
	out.At = s.now().UTC()
	st.LastOutcome = out
	st = st.WithStages()
	s.publish(ctx, st)
	return st
}

func (s *ServiceImpl) publish(ctx context.Context, st workflow.WorkflowState) {
	if s.publisher == nil || st.Period == nil {
		return
	}
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return
	}
	s.publisher.Publish(companyID, workflow.StageEvent{
		Period:      *st.Period,
		Stages:      workflow.DeriveStages(st),
		InFlight:    st.InFlight,
		LastOutcome: st.LastOutcome,
	})
}

func requirePeriod(st workflow.WorkflowState) error {
	if st.Period == nil {
		return workflow.ErrNoPeriodSelected
	}
	return nil
}

// Open implements workflow.Service. It restores a session from what is
// persisted for the period: the readiness verdict, the saved attendance set
// and the latest run are loaded concurrently.
func (s *ServiceImpl) Open(ctx context.Context, req workflow.OpenRequest) (workflow.WorkflowState, error) {
	if err := req.Validate(); err != nil {
		return s.finish(ctx, workflow.WorkflowState{}, OpOpen, err), err
	}

	st := workflow.NewState(req.Month, req.Year)

	var (
		report   readiness.Report
		period   payroll.PeriodResponse
		noPeriod bool
		saved    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.readiness.Evaluate(gctx, req.Month, req.Year)
		return err
	})
	g.Go(func() error {
		var err error
		period, err = s.lifecycle.GetPeriod(gctx, req.Month, req.Year)
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			noPeriod = true
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = s.lifecycle.CountSavedSummaries(gctx, req.Month, req.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.finish(ctx, st, OpOpen, err), err
	}

	st.Readiness = workflow.SummarizeReport(report)
	if saved > 0 {
		st.Attendance.Processed = true
		st.Attendance.Saved = true
		st.Attendance.RecordCount = saved
	}
	if !noPeriod {
		applyPeriod(&st, period)
	}

	return s.finish(ctx, st, OpOpen, nil), nil
}

func applyPeriod(st *workflow.WorkflowState, resp payroll.PeriodResponse) {
	if resp.Period != nil {
		st.PeriodStatus = resp.Period.Status
	}
	st.LatestRun = nil
	st.InFlight = false
	if resp.LatestRun != nil {
		st.LatestRun = workflow.SummarizeRun(*resp.LatestRun)
		st.InFlight = resp.LatestRun.Status == payroll.RunStatusInProgress
	}
}

// Validate implements workflow.Service.
func (s *ServiceImpl) Validate(ctx context.Context, req workflow.StateRequest) (workflow.ValidateResponse, error) {
	st, err := s.gate(ctx, req.State, workflow.StagePreChecks)
	if err != nil {
		return workflow.ValidateResponse{State: s.finish(ctx, st, OpValidate, err)}, err
	}

	report, err := s.readiness.Evaluate(ctx, st.Period.Month, st.Period.Year)
	if err != nil {
		return workflow.ValidateResponse{State: s.finish(ctx, st, OpValidate, err)}, err
	}
	st.Readiness = workflow.SummarizeReport(report)

	// An unreachable checker is not an operation failure; the report itself
	// carries the ERROR verdict and stage 2 fails on it.
	var outcomeErr error
	if report.OverallStatus == readiness.OverallError {
		outcomeErr = &unavailable{msg: report.Error}
	}
	st = s.finish(ctx, st, OpValidate, outcomeErr)

	slog.Info("readiness evaluated", "month", st.Period.Month, "year", st.Period.Year, "overall_status", report.OverallStatus)
	return workflow.ValidateResponse{State: st, Report: report}, nil
}

type unavailable struct {
	msg string
}

func (e *unavailable) Error() string { return e.msg }

func (e *unavailable) Is(target error) bool {
	return target == readiness.ErrReadinessUnavailable
}

// gate checks that a period is selected and that stage may run. From
// attendance processing on, the readiness verdict and the saved attendance
// set are re-read before the check; the copies carried by the caller's state
// are replaced, never trusted.
func (s *ServiceImpl) gate(ctx context.Context, st workflow.WorkflowState, stage workflow.Stage) (workflow.WorkflowState, error) {
	if err := requirePeriod(st); err != nil {
		return st, err
	}
	if stage >= workflow.StageAttendanceProcessing {
		var err error
		if st, err = s.refresh(ctx, st); err != nil {
			return st, err
		}
	}
	return st, workflow.Gate(st, stage)
}

// refresh replaces the gating facts of st with what the readiness service
// and the summary store report now.
func (s *ServiceImpl) refresh(ctx context.Context, st workflow.WorkflowState) (workflow.WorkflowState, error) {
	var (
		report readiness.Report
		saved  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.readiness.Evaluate(gctx, st.Period.Month, st.Period.Year)
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = s.lifecycle.CountSavedSummaries(gctx, st.Period.Month, st.Period.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		return st, err
	}

	st.Readiness = workflow.SummarizeReport(report)
	st.Attendance.Saved = saved > 0
	if saved > 0 {
		st.Attendance.Processed = true
		st.Attendance.RecordCount = saved
	}
	return st, nil
}

// ProcessAttendance implements workflow.Service.
func (s *ServiceImpl) ProcessAttendance(ctx context.Context, req workflow.StateRequest) (workflow.AttendanceResponse, error) {
	st, err := s.gate(ctx, req.State, workflow.StageAttendanceProcessing)
	if err != nil {
		return workflow.AttendanceResponse{State: s.finish(ctx, st, OpProcessAttendance, err)}, err
	}

	result, err := s.lifecycle.ProcessAttendance(ctx, st.Period.Month, st.Period.Year)
	if err != nil {
		return workflow.AttendanceResponse{State: s.finish(ctx, st, OpProcessAttendance, err)}, err
	}

	st.Attendance = workflow.AttendanceState{
		Processed:   true,
		Saved:       result.Saved,
		RecordCount: len(result.Records),
		DaysInMonth: result.DaysInMonth,
	}
	if result.Saved {
		st.PendingOverrides = nil
	}

	return workflow.AttendanceResponse{
		State:   s.finish(ctx, st, OpProcessAttendance, nil),
		Records: result.Records,
	}, nil
}

// Recalculate implements workflow.Service. Accepted overrides are kept in the
// state until the set is saved; an invalid derivation is returned to the
// caller and recorded as the outcome, not as an error.
func (s *ServiceImpl) Recalculate(ctx context.Context, req workflow.RecalculateRequest) (workflow.RecalculateResponse, error) {
	st, err := s.gate(ctx, req.State, workflow.StageAttendanceProcessing)
	if err != nil {
		return workflow.RecalculateResponse{State: s.finish(ctx, st, OpRecalculate, err)}, err
	}

	derivation, err := s.summaries.Recalculate(ctx, attendance.RecalculateRequest{
		Month:     st.Period.Month,
		Year:      st.Period.Year,
		Record:    req.Record,
		Overrides: req.Overrides,
	})
	if err != nil {
		return workflow.RecalculateResponse{State: s.finish(ctx, st, OpRecalculate, err)}, err
	}

	st.PendingOverrides = mergeOverrides(st.PendingOverrides, derivation.EmployeeID, req.Overrides)

	var outcomeErr error
	if derivation.Violation != nil {
		outcomeErr = derivation.Violation
	}
	return workflow.RecalculateResponse{
		State:      s.finish(ctx, st, OpRecalculate, outcomeErr),
		Derivation: derivation,
	}, nil
}

func mergeOverrides(pending map[string]attendance.RawOverrides, employeeID string, overrides attendance.RawOverrides) map[string]attendance.RawOverrides {
	out := make(map[string]attendance.RawOverrides, len(pending)+1)
	for id, o := range pending {
		out[id] = o
	}
	if len(overrides) == 0 {
		return out
	}
	merged := make(attendance.RawOverrides, len(out[employeeID])+len(overrides))
	for f, v := range out[employeeID] {
		merged[f] = v
	}
	for f, v := range overrides {
		merged[f] = v
	}
	out[employeeID] = merged
	return out
}

// SaveAttendance implements workflow.Service.
func (s *ServiceImpl) SaveAttendance(ctx context.Context, req workflow.SaveAttendanceRequest) (workflow.AttendanceResponse, error) {
	st, err := s.gate(ctx, req.State, workflow.StageAttendanceProcessing)
	if err != nil {
		return workflow.AttendanceResponse{State: s.finish(ctx, st, OpSaveAttendance, err)}, err
	}

	result, err := s.lifecycle.SaveAttendanceSummary(ctx, attendance.SaveSummaryRequest{
		Month:   st.Period.Month,
		Year:    st.Period.Year,
		Records: req.Records,
	})
	if err != nil {
		return workflow.AttendanceResponse{State: s.finish(ctx, st, OpSaveAttendance, err)}, err
	}

	st.PeriodStatus = result.Period.Status
	st.Attendance.Processed = true
	st.Attendance.Saved = true
	st.Attendance.RecordCount = result.RecordsSaved
	st.PendingOverrides = nil

	return workflow.AttendanceResponse{
		State:   s.finish(ctx, st, OpSaveAttendance, nil),
		Records: req.Records,
	}, nil
}

// ProcessPayroll implements workflow.Service. Subscribers see the stage go
// in flight before the calculator is called.
func (s *ServiceImpl) ProcessPayroll(ctx context.Context, req workflow.ProcessPayrollRequest) (workflow.PayrollResponse, error) {
	st, err := s.gate(ctx, req.State, workflow.StagePayrollProcessing)
	if err != nil {
		return workflow.PayrollResponse{State: s.finish(ctx, st, OpProcessPayroll, err)}, err
	}

	st.InFlight = true
	s.publish(ctx, st.WithStages())

	run, runErr := s.lifecycle.ProcessPayroll(ctx, payroll.ProcessPayrollRequest{
		Month:       st.Period.Month,
		Year:        st.Period.Year,
		ProcessType: req.ProcessType,
		EmployeeIDs: req.EmployeeIDs,
	})
	st.InFlight = false

	resp := workflow.PayrollResponse{}
	if run.ID != "" {
		resp.Run = &run
		st.LatestRun = workflow.SummarizeRun(run)
	}

	period, err := s.lifecycle.GetPeriod(ctx, st.Period.Month, st.Period.Year)
	if err == nil {
		applyPeriod(&st, period)
	} else {
		slog.Warn("failed to refresh payroll period", "month", st.Period.Month, "year", st.Period.Year, "error", err)
	}

	resp.State = s.finish(ctx, st, OpProcessPayroll, runErr)
	return resp, runErr
}

// Clean implements workflow.Service. It is never gated; the session returns
// to the state of a freshly selected period.
func (s *ServiceImpl) Clean(ctx context.Context, req workflow.CleanRequest) (workflow.CleanResponse, error) {
	st := req.State
	if err := requirePeriod(st); err != nil {
		return workflow.CleanResponse{State: s.finish(ctx, st, OpClean, err)}, err
	}

	result, err := s.lifecycle.CleanPeriod(ctx, payroll.CleanPeriodRequest{
		Month:   st.Period.Month,
		Year:    st.Period.Year,
		Confirm: req.Confirm,
	})
	if err != nil {
		return workflow.CleanResponse{State: s.finish(ctx, st, OpClean, err)}, err
	}

	st = workflow.NewState(st.Period.Month, st.Period.Year)
	return workflow.CleanResponse{
		State:  s.finish(ctx, st, OpClean, nil),
		Result: result,
	}, nil
}
