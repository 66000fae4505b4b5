package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// setURLParam adds a URL parameter to the request context (chi router style)
func setURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testTemplates(brandID string, n int) []*models.Template {
	templates := make([]*models.Template, 0, n)
	for i := 0; i < n; i++ {
		templates = append(templates, &models.Template{
			ID:       fmt.Sprintf("tmpl_%d", i),
			BrandID:  brandID,
			IsUnused: true,
		})
	}
	return templates
}

type stubIDs struct{ counter int }

func (s *stubIDs) Generate(prefix string) string {
	s.counter++
	return fmt.Sprintf("%s_test_%d", prefix, s.counter)
}

type stubTx struct{}

func (stubTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubTemplates struct {
	templates []*models.Template
}

func (s *stubTemplates) GetByID(_ context.Context, id string) (*models.Template, error) {
	for _, t := range s.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubTemplates) ListByBrand(context.Context, string) ([]*models.Template, error) {
	return s.templates, nil
}

func (s *stubTemplates) MarkUsed(context.Context, string, time.Time) error { return nil }

type stubBeliefs struct{}

func (stubBeliefs) ListScores(context.Context, string) ([]*models.ElementScore, error) {
	return nil, nil
}
func (stubBeliefs) UpsertScore(context.Context, *models.ElementScore) error { return nil }
func (stubBeliefs) ListInteractions(context.Context, string) ([]*models.ElementInteraction, error) {
	return nil, nil
}
func (stubBeliefs) UpsertInteraction(context.Context, *models.ElementInteraction) error { return nil }
func (stubBeliefs) ListComboUsage(context.Context, string) ([]*models.ComboUsage, error) {
	return nil, nil
}
func (stubBeliefs) IncrementComboUsage(context.Context, string, string, time.Time) error {
	return nil
}

type stubVisuals struct {
	clusters []*models.VisualStyleCluster
}

func (s *stubVisuals) SaveEmbedding(context.Context, *models.VisualEmbedding) error { return nil }

func (s *stubVisuals) ListEmbeddings(context.Context, string) ([]*models.VisualEmbedding, error) {
	return nil, nil
}

func (s *stubVisuals) ListRewards(context.Context, string) ([]*models.AdReward, error) {
	return nil, nil
}

func (s *stubVisuals) InsertClusterGeneration(context.Context, string, int64, []*models.VisualStyleCluster) error {
	return nil
}

func (s *stubVisuals) SetCurrentClusterGeneration(context.Context, string, int64) error { return nil }

func (s *stubVisuals) DeleteClusterGenerationsBefore(context.Context, string, int64) error {
	return nil
}

func (s *stubVisuals) CurrentClusterGeneration(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *stubVisuals) ListCurrentClusters(context.Context, string) ([]*models.VisualStyleCluster, error) {
	return s.clusters, nil
}

type stubLineage struct {
	edges []*models.AdLineage
}

func (s *stubLineage) InsertEdge(_ context.Context, edge *models.AdLineage) error {
	s.edges = append(s.edges, edge)
	return nil
}

func (s *stubLineage) CountIterations(context.Context, string) (int, error) { return 0, nil }

func (s *stubLineage) MaxRound(context.Context, string) (int, error) { return 0, nil }

func (s *stubLineage) ListEdges(_ context.Context, rootAdID string) ([]*models.AdLineage, error) {
	var out []*models.AdLineage
	for _, e := range s.edges {
		if e.RootAdID == rootAdID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubLineage) ListWinners(context.Context, string, float64, int64) ([]*models.WinnerAd, error) {
	return nil, nil
}
