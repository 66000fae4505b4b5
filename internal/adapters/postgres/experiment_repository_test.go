package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

func TestExperimentRepository_TransitionStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &ExperimentRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	mock.ExpectExec("UPDATE creative_experiments").
		WithArgs(models.StatusRunning, "exp_1", models.StatusDraft).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx := setupMockContext(mock)
	if err := repo.TransitionStatus(ctx, "exp_1", models.StatusDraft, models.StatusRunning); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestExperimentRepository_TransitionStatusConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &ExperimentRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	// The CAS update misses because another writer already concluded the
	// experiment; the repository reports the conflict with the current
	// status.
	mock.ExpectExec("UPDATE creative_experiments").
		WithArgs(models.StatusAnalyzing, "exp_1", models.StatusRunning).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM creative_experiments").
		WithArgs("exp_1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.StatusConcluded))

	ctx := setupMockContext(mock)
	err = repo.TransitionStatus(ctx, "exp_1", models.StatusRunning, models.StatusAnalyzing)
	if !errors.Is(err, domain.ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestExperimentRepository_TransitionStatusInvalid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &ExperimentRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	// Terminal states are final: no SQL should run at all.
	ctx := setupMockContext(mock)
	err = repo.TransitionStatus(ctx, "exp_1", models.StatusConcluded, models.StatusRunning)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestExperimentRepository_UpdateArmStatsRejectsBadCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &ExperimentRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	arm := &models.ExperimentArm{ID: "arm_1", Impressions: 10, Conversions: 20}

	ctx := setupMockContext(mock)
	err = repo.UpdateArmStats(ctx, arm)
	if !errors.Is(err, domain.ErrConversionsExceeded) {
		t.Errorf("expected ErrConversionsExceeded, got %v", err)
	}
}

func TestExperimentRepository_RecordConclusion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &ExperimentRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	winner := "arm_2"
	mock.ExpectExec("UPDATE creative_experiments").
		WithArgs(&winner, "A", pgxmock.AnyArg(), "exp_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx := setupMockContext(mock)
	if err := repo.RecordConclusion(ctx, "exp_1", &winner, "A", time.Now()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
