package postgres

import (
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

func TestBeliefRepository_ListScores(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &BeliefRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "brand_id", "name", "value", "alpha", "beta", "observations", "updated_at"}).
		AddRow("es_1", "brand_1", "color_mode", "warm", 7.0, 3.0, 8, now).
		AddRow("es_2", "brand_1", "hook_type", "curiosity", 6.0, 4.0, 8, now)

	mock.ExpectQuery("SELECT id, brand_id, name, value, alpha, beta, observations, updated_at").
		WithArgs("brand_1").
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	scores, err := repo.ListScores(ctx, "brand_1")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].Name != "color_mode" || scores[0].Alpha != 7.0 {
		t.Errorf("unexpected first score: %+v", scores[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBeliefRepository_UpsertScore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &BeliefRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	score := &models.ElementScore{
		ID:           "es_1",
		BrandID:      "brand_1",
		Name:         "hook_type",
		Value:        "curiosity",
		Alpha:        8,
		Beta:         2,
		Observations: 8,
		UpdatedAt:    time.Now(),
	}

	mock.ExpectExec("INSERT INTO creative_element_scores").
		WithArgs(
			score.ID, score.BrandID, score.Name, score.Value,
			score.Alpha, score.Beta, score.Observations, pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := setupMockContext(mock)
	if err := repo.UpsertScore(ctx, score); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBeliefRepository_IncrementComboUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &BeliefRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	usedAt := time.Now()
	mock.ExpectExec("INSERT INTO creative_combo_usage").
		WithArgs("brand_1", "color_mode=warm|hook_type=curiosity", usedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := setupMockContext(mock)
	err = repo.IncrementComboUsage(ctx, "brand_1", "color_mode=warm|hook_type=curiosity", usedAt)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBeliefRepository_ListComboUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &BeliefRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	lastUsed := time.Now()
	rows := pgxmock.NewRows([]string{"brand_id", "combo_key", "count", "last_used_at"}).
		AddRow("brand_1", "color_mode=warm|hook_type=curiosity", 4, &lastUsed)

	mock.ExpectQuery("SELECT brand_id, combo_key, count, last_used_at").
		WithArgs("brand_1").
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	usage, err := repo.ListComboUsage(ctx, "brand_1")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("expected 1 usage row, got %d", len(usage))
	}
	if usage[0].Count != 4 || usage[0].LastUsedAt == nil {
		t.Errorf("unexpected usage row: %+v", usage[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
