package postgres

import (
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

func TestLineageRepository_InsertEdge(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &LineageRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	edge := &models.AdLineage{
		ID:              "lin_1",
		BrandID:         "brand_1",
		RootAdID:        "ad_root",
		ParentAdID:      "ad_root",
		ChildAdID:       "ad_child",
		Mode:            models.ModeIterateVariable,
		VariableChanged: models.DimHookType,
		Round:           1,
		CreatedAt:       time.Now(),
	}

	mock.ExpectExec("INSERT INTO creative_ad_lineage").
		WithArgs(
			edge.ID, edge.BrandID, edge.RootAdID, edge.ParentAdID, edge.ChildAdID,
			edge.Mode, edge.VariableChanged, edge.Round, pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := setupMockContext(mock)
	if err := repo.InsertEdge(ctx, edge); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLineageRepository_ListEdges(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &LineageRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "brand_id", "root_ad_id", "parent_ad_id", "child_ad_id",
		"mode", "variable_changed", "round", "created_at",
	}).
		AddRow("lin_1", "brand_1", "ad_root", "ad_root", "ad_2",
			models.ModeIterateVariable, models.DimHookType, 1, now).
		AddRow("lin_2", "brand_1", "ad_root", "ad_2", "ad_3",
			models.ModeVisualRefresh, "", 2, now)

	mock.ExpectQuery("SELECT id, brand_id, root_ad_id").
		WithArgs("ad_root").
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	edges, err := repo.ListEdges(ctx, "ad_root")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].ChildAdID != "ad_2" || edges[1].Round != 2 {
		t.Errorf("unexpected edge ordering: %+v", edges)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLineageRepository_CountIterations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &LineageRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("ad_root").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	ctx := setupMockContext(mock)
	count, err := repo.CountIterations(ctx, "ad_root")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 iterations, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLineageRepository_ListWinners(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &LineageRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	rows := pgxmock.NewRows([]string{"id", "brand_id", "root_ad_id", "elements", "reward", "impressions", "round"}).
		AddRow("ad_1", "brand_1", "ad_1", []byte(`{"hook_type":"curiosity"}`), 0.8, int64(5000), 2)

	mock.ExpectQuery("SELECT a.id, a.brand_id").
		WithArgs("brand_1", 0.6, int64(1000)).
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	winners, err := repo.ListWinners(ctx, "brand_1", 0.6, 1000)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(winners))
	}
	w := winners[0]
	if w.AdID != "ad_1" || w.Round != 2 || w.Elements["hook_type"] != "curiosity" {
		t.Errorf("unexpected winner: %+v", w)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
