// Package cluster groups ad visuals into style clusters with DBSCAN over
// cosine distance, and checks candidate visuals against existing cluster
// centroids for diversity.
package cluster

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

const (
	// Eps is the cosine-distance neighborhood radius.
	Eps = 0.3
	// MinSamples is the density threshold for a core point.
	MinSamples = 3
	// SimilarityThreshold above which a candidate visual is considered a
	// near-duplicate of an existing cluster.
	SimilarityThreshold = 0.90

	topDescriptors = 3
)

// Clusterer is stateless; one value can serve concurrent runs.
type Clusterer struct{}

func NewClusterer() *Clusterer {
	return &Clusterer{}
}

// Cluster groups embeddings into visual style clusters. Noise points are
// reported separately as ad IDs. Rewards, when supplied, are averaged
// over the members that have one.
func (c *Clusterer) Cluster(brandID string, embeddings []*models.VisualEmbedding, rewards []*models.AdReward) ([]*models.VisualStyleCluster, []string, error) {
	if len(embeddings) == 0 {
		return nil, nil, nil
	}
	normalized, err := normalizeAll(embeddings)
	if err != nil {
		return nil, nil, err
	}

	labels := dbscan(distanceMatrix(normalized), Eps, MinSamples)

	rewardByAd := make(map[string]float64, len(rewards))
	for _, r := range rewards {
		rewardByAd[r.AdID] = r.Reward
	}

	byLabel := make(map[int][]int)
	var noiseAds []string
	for i, label := range labels {
		if label == models.NoiseLabel {
			noiseAds = append(noiseAds, embeddings[i].AdID)
			continue
		}
		byLabel[label] = append(byLabel[label], i)
	}

	clusters := make([]*models.VisualStyleCluster, 0, len(byLabel))
	for label := 0; label < len(byLabel); label++ {
		members := byLabel[label]
		clusters = append(clusters, buildCluster(brandID, label, members, embeddings, normalized, rewardByAd))
	}
	return clusters, noiseAds, nil
}

// CheckDiversity compares a candidate embedding against cluster
// centroids. It returns the label of the most similar cluster and
// whether the candidate clears the similarity threshold; ok is true when
// the candidate is diverse enough to keep.
func (c *Clusterer) CheckDiversity(vector []float32, clusters []*models.VisualStyleCluster) (label int, similarity float64, ok bool, err error) {
	normalized, err := normalize(vector)
	if err != nil {
		return 0, 0, false, err
	}

	label = models.NoiseLabel
	best := math.Inf(-1)
	for _, cl := range clusters {
		centroid, err := normalize(cl.Centroid)
		if err != nil {
			return 0, 0, false, err
		}
		if len(centroid) != len(normalized) {
			return 0, 0, false, fmt.Errorf("%w: candidate has %d dimensions, centroid has %d", domain.ErrDimensionMismatch, len(normalized), len(centroid))
		}
		if sim := dot(normalized, centroid); sim > best {
			best = sim
			label = cl.Label
		}
	}
	if math.IsInf(best, -1) {
		return models.NoiseLabel, 0, true, nil
	}
	return label, best, best < SimilarityThreshold, nil
}

func buildCluster(brandID string, label int, members []int, embeddings []*models.VisualEmbedding, normalized [][]float64, rewardByAd map[string]float64) *models.VisualStyleCluster {
	dim := len(normalized[members[0]])
	centroid := make([]float64, dim)
	adIDs := make([]string, 0, len(members))
	descriptorCounts := make(map[string]map[string]int)

	var rewardSum float64
	rewarded := 0
	for _, i := range members {
		for d, v := range normalized[i] {
			centroid[d] += v
		}
		adIDs = append(adIDs, embeddings[i].AdID)
		for key, value := range embeddings[i].Descriptors {
			if descriptorCounts[key] == nil {
				descriptorCounts[key] = make(map[string]int)
			}
			descriptorCounts[key][value]++
		}
		if r, ok := rewardByAd[embeddings[i].AdID]; ok {
			rewardSum += r
			rewarded++
		}
	}

	for d := range centroid {
		centroid[d] /= float64(len(members))
	}

	cl := &models.VisualStyleCluster{
		BrandID:     brandID,
		Label:       label,
		Centroid:    toFloat32(centroid),
		Size:        len(members),
		MemberAdIDs: adIDs,
		Descriptors: topValues(descriptorCounts, topDescriptors),
	}
	if rewarded > 0 {
		avg := rewardSum / float64(rewarded)
		cl.AvgReward = &avg
	}
	return cl
}

// topValues keeps the most frequent values per descriptor key, ties
// broken alphabetically for determinism.
func topValues(counts map[string]map[string]int, limit int) map[string][]string {
	out := make(map[string][]string, len(counts))
	for key, values := range counts {
		type vc struct {
			value string
			count int
		}
		ranked := make([]vc, 0, len(values))
		for v, n := range values {
			ranked = append(ranked, vc{v, n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].value < ranked[j].value
		})
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		top := make([]string, len(ranked))
		for i, r := range ranked {
			top[i] = r.value
		}
		out[key] = top
	}
	return out
}

// distanceMatrix computes pairwise cosine distances, one goroutine per
// row. Vectors must already be L2-normalized so distance is 1 - dot.
func distanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	dist := make([][]float64, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			row := make([]float64, n)
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				row[j] = 1 - dot(vectors[i], vectors[j])
			}
			dist[i] = row
		}(i)
	}
	wg.Wait()
	return dist
}

func normalizeAll(embeddings []*models.VisualEmbedding) ([][]float64, error) {
	dim := len(embeddings[0].Vector)
	out := make([][]float64, len(embeddings))
	for i, e := range embeddings {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: ad %s has %d dimensions, expected %d", domain.ErrDimensionMismatch, e.AdID, len(e.Vector), dim)
		}
		v, err := normalize(e.Vector)
		if err != nil {
			return nil, fmt.Errorf("ad %s: %w", e.AdID, err)
		}
		out[i] = v
	}
	return out, nil
}

func normalize(vector []float32) ([]float64, error) {
	if len(vector) == 0 {
		return nil, domain.ErrEmptyEmbedding
	}
	out := make([]float64, len(vector))
	var norm float64
	for i, v := range vector {
		out[i] = float64(v)
		norm += out[i] * out[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, domain.ErrEmptyEmbedding
	}
	for i := range out {
		out[i] /= norm
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
