package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate returns a prefixed nanoid, e.g. "ce_exp_V1StGXR8_Z5jdHi6B-myT".
func (g *Generator) Generate(prefix string) string {
	id, err := gonanoid.New(21)
	if err != nil {
		return prefix + "_fallback"
	}
	return prefix + "_" + id
}

func (g *Generator) GenerateScoreID() string {
	return g.Generate("ces")
}

func (g *Generator) GenerateInteractionID() string {
	return g.Generate("cei")
}

func (g *Generator) GenerateWhitespaceID() string {
	return g.Generate("cws")
}

func (g *Generator) GenerateClusterID() string {
	return g.Generate("cvc")
}

func (g *Generator) GenerateEmbeddingID() string {
	return g.Generate("cve")
}

func (g *Generator) GenerateExperimentID() string {
	return g.Generate("cex")
}

func (g *Generator) GenerateArmID() string {
	return g.Generate("cea")
}

func (g *Generator) GenerateLineageID() string {
	return g.Generate("clin")
}
