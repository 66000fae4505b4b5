package dto

type DiversityCheckRequest struct {
	BrandID string    `json:"brand_id"`
	Vector  []float32 `json:"vector"`
}

type SaveEmbeddingRequest struct {
	BrandID     string            `json:"brand_id"`
	AdID        string            `json:"ad_id"`
	Vector      []float32         `json:"vector"`
	Descriptors map[string]string `json:"descriptors,omitempty"`
}
