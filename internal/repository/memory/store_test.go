package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	store := NewStore()
	periods := NewPeriodRepository(store)
	summaries := NewSummaryRepository(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		_, err := periods.Create(ctx, payroll.PayrollPeriod{CompanyID: "c1", Month: 3, Year: 2024})
		require.NoError(t, err)
		require.NoError(t, summaries.ReplaceForPeriod(ctx, "c1", 3, 2024, []attendance.AttendanceSummary{{EmployeeID: "e1"}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = periods.GetByPeriod(ctx, "c1", 3, 2024)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
	count, err := summaries.CountByPeriod(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_WithinTx_Nested(t *testing.T) {
	store := NewStore()
	periods := NewPeriodRepository(store)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return store.WithinTx(ctx, func(ctx context.Context) error {
			_, err := periods.Create(ctx, payroll.PayrollPeriod{CompanyID: "c1", Month: 3, Year: 2024})
			return err
		})
	})
	require.NoError(t, err)

	p, err := periods.GetByPeriod(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, p.Status)
}

func TestStore_WriteOutsideTxSurvivesRollback(t *testing.T) {
	store := NewStore()
	periods := NewPeriodRepository(store)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTx(ctx, func(ctx context.Context) error {
			_, err := periods.Create(ctx, payroll.PayrollPeriod{CompanyID: "c1", Month: 3, Year: 2024})
			close(started)
			if err != nil {
				return err
			}
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	writeDone := make(chan error, 1)
	go func() {
		_, err := periods.Create(ctx, payroll.PayrollPeriod{CompanyID: "c1", Month: 4, Year: 2024})
		writeDone <- err
	}()
	close(release)

	assert.Error(t, <-txDone)
	require.NoError(t, <-writeDone)

	_, err := periods.GetByPeriod(ctx, "c1", 3, 2024)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
	_, err = periods.GetByPeriod(ctx, "c1", 4, 2024)
	assert.NoError(t, err)
}

func TestPeriodRepository_GetOrCreate(t *testing.T) {
	store := NewStore()
	periods := NewPeriodRepository(store)
	ctx := context.Background()

	created, err := periods.GetOrCreate(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, created.Status)

	again, err := periods.GetOrCreate(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestPeriodRepository_GuardedTransition(t *testing.T) {
	store := NewStore()
	periods := NewPeriodRepository(store)
	ctx := context.Background()

	_, err := periods.Create(ctx, payroll.PayrollPeriod{CompanyID: "c1", Month: 3, Year: 2024})
	require.NoError(t, err)

	require.NoError(t, periods.TransitionStatus(ctx, "c1", 3, 2024, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing))
	err = periods.TransitionStatus(ctx, "c1", 3, 2024, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotProcessable)

	err = periods.TransitionStatus(ctx, "c1", 4, 2024, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestRunRepository_SingleRunInProgress(t *testing.T) {
	store := NewStore()
	runs := NewRunRepository(store)
	ctx := context.Background()

	first, err := runs.Create(ctx, payroll.ProcessingRun{CompanyID: "c1", Month: 3, Year: 2024, ProcessType: payroll.ProcessTypeFull})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusInProgress, first.Status)

	_, err = runs.Create(ctx, payroll.ProcessingRun{CompanyID: "c1", Month: 3, Year: 2024, ProcessType: payroll.ProcessTypeFull})
	assert.ErrorIs(t, err, payroll.ErrRunConflict)

	first.Status = payroll.RunStatusFailed
	require.NoError(t, runs.Finish(ctx, first))
	assert.ErrorIs(t, runs.Finish(ctx, first), payroll.ErrRunConflict)

	second, err := runs.Create(ctx, payroll.ProcessingRun{CompanyID: "c1", Month: 3, Year: 2024, ProcessType: payroll.ProcessTypeFull})
	require.NoError(t, err)

	latest, err := runs.GetLatest(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	list, err := runs.ListByPeriod(ctx, "c1", 3, 2024)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}
