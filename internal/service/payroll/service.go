package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type LifecycleServiceImpl struct {
	tx             database.TxManager
	periodRepo     payroll.PeriodRepository
	runRepo        payroll.RunRepository
	summaryRepo    attendance.SummaryRepository
	baseSource     attendance.BaseSource
	directory      attendance.ShiftDirectory
	summaryService attendance.SummaryService
	calculator     payroll.Calculator
}

func NewLifecycleService(
	tx database.TxManager,
	periodRepo payroll.PeriodRepository,
	runRepo payroll.RunRepository,
	summaryRepo attendance.SummaryRepository,
	baseSource attendance.BaseSource,
	directory attendance.ShiftDirectory,
	summaryService attendance.SummaryService,
	calculator payroll.Calculator,
) payroll.LifecycleService {
	return &LifecycleServiceImpl{
		tx:             tx,
		periodRepo:     periodRepo,
		runRepo:        runRepo,
		summaryRepo:    summaryRepo,
		baseSource:     baseSource,
		directory:      directory,
		summaryService: summaryService,
		calculator:     calculator,
	}
}

func periodValid(month, year int) error {
	if errs := validator.PeriodErrors(month, year); len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== PERIODS ==========

func (s *LifecycleServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PayrollPeriod, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPeriod{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	period, err := s.periodRepo.Create(ctx, payroll.PayrollPeriod{
		CompanyID: companyID,
		Month:     req.Month,
		Year:      req.Year,
		Status:    payroll.PeriodStatusDraft,
	})
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	slog.Info("payroll period created", "company_id", companyID, "month", req.Month, "year", req.Year)
	return period, nil
}

func (s *LifecycleServiceImpl) GetPeriod(ctx context.Context, month, year int) (payroll.PeriodResponse, error) {
	if err := periodValid(month, year); err != nil {
		return payroll.PeriodResponse{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.periodRepo.GetByPeriod(ctx, companyID, month, year)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	resp := payroll.PeriodResponse{Period: &period}
	run, err := s.runRepo.GetLatest(ctx, companyID, month, year)
	switch {
	case err == nil:
		resp.LatestRun = &run
	case !errors.Is(err, payroll.ErrRunNotFound):
		return payroll.PeriodResponse{}, fmt.Errorf("failed to get latest run: %w", err)
	}
	return resp, nil
}

func (s *LifecycleServiceImpl) ListRuns(ctx context.Context, month, year int) ([]payroll.ProcessingRun, error) {
	if err := periodValid(month, year); err != nil {
		return nil, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return s.runRepo.ListByPeriod(ctx, companyID, month, year)
}

// ========== ATTENDANCE ==========

// ProcessAttendance implements payroll.LifecycleService.
func (s *LifecycleServiceImpl) ProcessAttendance(ctx context.Context, month, year int) (attendance.ProcessResult, error) {
	if err := periodValid(month, year); err != nil {
		return attendance.ProcessResult{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ProcessResult{}, err
	}

	result := attendance.ProcessResult{
		Month:       month,
		Year:        year,
		DaysInMonth: attendance.DaysInMonth(month, year),
	}

	saved, err := s.summaryRepo.ListByPeriod(ctx, companyID, month, year)
	if err != nil {
		return attendance.ProcessResult{}, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	if len(saved) > 0 {
		result.Saved = true
		result.Records = saved
		return result, nil
	}

	var (
		profiles []attendance.ShiftProfile
		base     []attendance.BaseRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.directory.ListActiveProfiles(gctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list shift profiles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		base, err = s.baseSource.ComputeBase(gctx, companyID, month, year)
		if err != nil {
			return fmt.Errorf("failed to compute base attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return attendance.ProcessResult{}, err
	}

	baseByEmployee := make(map[string]attendance.BaseRecord, len(base))
	for _, b := range base {
		baseByEmployee[b.EmployeeID] = b
	}

	result.Records = make([]attendance.AttendanceSummary, 0, len(profiles))
	for _, profile := range profiles {
		b, ok := baseByEmployee[profile.EmployeeID]
		if !ok {
			b = attendance.BaseRecord{EmployeeID: profile.EmployeeID}
		}
		summary, err := s.summaryService.Prepare(companyID, month, year, profile, b)
		if err != nil {
			return attendance.ProcessResult{}, err
		}
		result.Records = append(result.Records, summary)
	}

	return result, nil
}

func (s *LifecycleServiceImpl) CountSavedSummaries(ctx context.Context, month, year int) (int, error) {
	if err := periodValid(month, year); err != nil {
		return 0, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	return s.summaryRepo.CountByPeriod(ctx, companyID, month, year)
}

// SaveAttendanceSummary implements payroll.LifecycleService.
func (s *LifecycleServiceImpl) SaveAttendanceSummary(ctx context.Context, req attendance.SaveSummaryRequest) (payroll.SaveSummaryResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.SaveSummaryResult{}, err
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SaveSummaryResult{}, err
	}

	records, err := s.summaryService.Finalize(ctx, req.Month, req.Year, req.Records)
	if err != nil {
		return payroll.SaveSummaryResult{}, err
	}

	var result payroll.SaveSummaryResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		period, err := s.periodRepo.GetOrCreate(ctx, companyID, req.Month, req.Year)
		if err != nil {
			return err
		}
		if period.Status != payroll.PeriodStatusDraft {
			return payroll.ErrPeriodLocked
		}

		if err := s.summaryRepo.ReplaceForPeriod(ctx, companyID, req.Month, req.Year, records); err != nil {
			return fmt.Errorf("failed to save attendance summaries: %w", err)
		}

		result = payroll.SaveSummaryResult{Period: period, RecordsSaved: len(records)}
		return nil
	})
	if err != nil {
		return payroll.SaveSummaryResult{}, err
	}

	slog.Info("attendance summary saved", "company_id", companyID, "month", req.Month, "year", req.Year, "records", len(records))
	return result, nil
}

// ========== RUNS ==========

// ProcessPayroll implements payroll.LifecycleService.
func (s *LifecycleServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessingRun, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessingRun{}, err
	}

	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ProcessingRun{}, err
	}

	period, err := s.periodRepo.GetByPeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return payroll.ProcessingRun{}, err
	}
	switch period.Status {
	case payroll.PeriodStatusCompleted:
		return payroll.ProcessingRun{}, payroll.ErrPeriodAlreadyCompleted
	case payroll.PeriodStatusProcessing:
		return payroll.ProcessingRun{}, payroll.ErrRunConflict
	}

	summaries, err := s.summaryRepo.ListByPeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return payroll.ProcessingRun{}, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	if len(summaries) == 0 {
		return payroll.ProcessingRun{}, payroll.ErrAttendanceNotSaved
	}

	if req.ProcessType == payroll.ProcessTypePartial {
		summaries, err = selectEmployees(summaries, req.EmployeeIDs)
		if err != nil {
			return payroll.ProcessingRun{}, err
		}
	}

	run := payroll.ProcessingRun{
		CompanyID:   companyID,
		Month:       req.Month,
		Year:        req.Year,
		ProcessType: req.ProcessType,
		EmployeeIDs: req.EmployeeIDs,
		StartedAt:   time.Now().UTC(),
	}
	if userID != "" {
		run.StartedBy = &userID
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.periodRepo.TransitionStatus(ctx, companyID, req.Month, req.Year, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing); err != nil {
			return err
		}
		created, err := s.runRepo.Create(ctx, run)
		if err != nil {
			return err
		}
		run = created
		return nil
	})
	if err != nil {
		return payroll.ProcessingRun{}, err
	}

	slog.Info("payroll run started", "company_id", companyID, "run_id", run.ID, "month", req.Month, "year", req.Year, "process_type", req.ProcessType, "employees", len(summaries))

	result, calcErr := s.calculator.Calculate(ctx, payroll.CalculationInput{
		CompanyID: companyID,
		Month:     req.Month,
		Year:      req.Year,
		Summaries: summaries,
	})
	if calcErr == nil && len(result.Lines) == 0 && len(result.Errors) > 0 {
		calcErr = &payroll.UpstreamError{Source: "calculator", Message: result.Errors[0].Message}
	}
	if calcErr != nil {
		return s.failRun(ctx, run, calcErr)
	}

	return s.completeRun(ctx, run, result)
}

func selectEmployees(summaries []attendance.AttendanceSummary, employeeIDs []string) ([]attendance.AttendanceSummary, error) {
	byEmployee := make(map[string]attendance.AttendanceSummary, len(summaries))
	for _, sum := range summaries {
		byEmployee[sum.EmployeeID] = sum
	}

	var errs validator.ValidationErrors
	selected := make([]attendance.AttendanceSummary, 0, len(employeeIDs))
	seen := make(map[string]bool, len(employeeIDs))
	for i, id := range employeeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		sum, ok := byEmployee[id]
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids[" + validator.Itoa(i) + "]",
				Message: "employee has no saved attendance summary",
			})
			continue
		}
		selected = append(selected, sum)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return selected, nil
}

// failRun records the calculator failure and puts the period back to DRAFT.
// The returned error always carries the calculator's message unchanged.
func (s *LifecycleServiceImpl) failRun(ctx context.Context, run payroll.ProcessingRun, calcErr error) (payroll.ProcessingRun, error) {
	var upstream *payroll.UpstreamError
	if !errors.As(calcErr, &upstream) {
		upstream = &payroll.UpstreamError{Source: "calculator", Message: calcErr.Error()}
	}

	now := time.Now().UTC()
	run.Status = payroll.RunStatusFailed
	run.ErrorMessage = &upstream.Message
	run.CompletedAt = &now

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.runRepo.Finish(ctx, run); err != nil {
			return err
		}
		return s.periodRepo.TransitionStatus(ctx, run.CompanyID, run.Month, run.Year, payroll.PeriodStatusProcessing, payroll.PeriodStatusDraft)
	})
	if err != nil {
		slog.Error("failed to record failed payroll run", "run_id", run.ID, "error", err)
		return payroll.ProcessingRun{}, fmt.Errorf("failed to record failed run: %w", err)
	}

	slog.Error("payroll run failed", "company_id", run.CompanyID, "run_id", run.ID, "error", upstream.Message)
	return run, upstream
}

func (s *LifecycleServiceImpl) completeRun(ctx context.Context, run payroll.ProcessingRun, result payroll.CalculationResult) (payroll.ProcessingRun, error) {
	gross := decimal.Zero
	deductions := decimal.Zero
	net := decimal.Zero
	for _, line := range result.Lines {
		gross = gross.Add(line.Gross)
		deductions = deductions.Add(line.Deductions)
		net = net.Add(line.Net)
	}

	now := time.Now().UTC()
	run.Status = payroll.RunStatusCompleted
	if len(result.Errors) > 0 {
		run.Status = payroll.RunStatusCompletedWithErrors
	}
	run.EmployeesProcessed = len(result.Lines)
	run.GrossPay = gross
	run.Deductions = deductions
	run.NetPay = net
	run.Lines = result.Lines
	run.Errors = result.Errors
	run.CompletedAt = &now

	next := payroll.PeriodStatusDraft
	if run.ProcessType == payroll.ProcessTypeFull {
		next = payroll.PeriodStatusCompleted
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.runRepo.Finish(ctx, run); err != nil {
			return err
		}
		return s.periodRepo.TransitionStatus(ctx, run.CompanyID, run.Month, run.Year, payroll.PeriodStatusProcessing, next)
	})
	if err != nil {
		return payroll.ProcessingRun{}, fmt.Errorf("failed to record completed run: %w", err)
	}

	slog.Info("payroll run completed",
		"company_id", run.CompanyID, "run_id", run.ID, "status", run.Status,
		"employees_processed", run.EmployeesProcessed, "errors", len(run.Errors), "net_pay", run.NetPay.String())
	return run, nil
}

// ========== CLEAN ==========

// CleanPeriod implements payroll.LifecycleService.
func (s *LifecycleServiceImpl) CleanPeriod(ctx context.Context, req payroll.CleanPeriodRequest) (payroll.CleanResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.CleanResult{}, err
	}

	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.CleanResult{}, err
	}

	result := payroll.CleanResult{Month: req.Month, Year: req.Year}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if result.SummariesDeleted, err = s.summaryRepo.DeleteByPeriod(ctx, companyID, req.Month, req.Year); err != nil {
			return fmt.Errorf("failed to delete attendance summaries: %w", err)
		}
		if result.RunsDeleted, err = s.runRepo.DeleteByPeriod(ctx, companyID, req.Month, req.Year); err != nil {
			return fmt.Errorf("failed to delete processing runs: %w", err)
		}
		if result.PeriodsDeleted, err = s.periodRepo.Delete(ctx, companyID, req.Month, req.Year); err != nil {
			return fmt.Errorf("failed to delete payroll period: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.CleanResult{}, err
	}

	slog.Warn("payroll period cleaned",
		"company_id", companyID, "user_id", userID, "month", req.Month, "year", req.Year,
		"summaries", result.SummariesDeleted, "runs", result.RunsDeleted, "periods", result.PeriodsDeleted)
	return result, nil
}
