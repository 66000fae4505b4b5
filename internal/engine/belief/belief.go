// Package belief holds the read-only view of element performance beliefs
// that every engine computation receives explicitly. Components never
// query shared state on their own; the caller builds one Snapshot per run
// and passes it in.
package belief

import (
	"sort"
	"strings"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// Posterior is a Beta(α,β) belief about a success rate.
type Posterior struct {
	Alpha        float64
	Beta         float64
	Observations int
}

// UniformPrior is the Beta(1,1) prior assigned to brand-new elements.
func UniformPrior() Posterior {
	return Posterior{Alpha: 1, Beta: 1}
}

// Mean returns α/(α+β).
func (p Posterior) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

// Variance returns αβ/((α+β)²(α+β+1)).
func (p Posterior) Variance() float64 {
	sum := p.Alpha + p.Beta
	return (p.Alpha * p.Beta) / (sum * sum * (sum + 1))
}

// Update folds successes and failures into the posterior, returning the
// delta-applied copy. The caller persists the result.
func (p Posterior) Update(successes, failures int) Posterior {
	return Posterior{
		Alpha:        p.Alpha + float64(successes),
		Beta:         p.Beta + float64(failures),
		Observations: p.Observations + successes + failures,
	}
}

// ComboKey canonicalizes an element combination: "name=value" parts
// sorted alphabetically by name, joined with "|". An empty combination
// yields the empty string. Every place that compares combo identity
// must go through this function.
func ComboKey(parts map[string]string) string {
	if len(parts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(parts))
	for name, value := range parts {
		rendered = append(rendered, name+"="+value)
	}
	sort.Strings(rendered)
	return strings.Join(rendered, "|")
}

type elementKey struct {
	name  string
	value string
}

type pairKey struct {
	a elementKey
	b elementKey
}

func orderedPair(nameA, valueA, nameB, valueB string) pairKey {
	a := elementKey{nameA, valueA}
	b := elementKey{nameB, valueB}
	if b.name < a.name || (b.name == a.name && b.value < a.value) {
		a, b = b, a
	}
	return pairKey{a, b}
}

type comboInfo struct {
	count    int
	lastUsed *time.Time
}

// Snapshot is an immutable read of belief state taken at the start of a
// run: element posteriors, pairwise interactions and combo usage.
type Snapshot struct {
	posteriors   map[elementKey]Posterior
	interactions map[pairKey]*models.ElementInteraction
	combos       map[string]comboInfo
}

// NewSnapshot builds a Snapshot from persisted records.
func NewSnapshot(scores []*models.ElementScore, interactions []*models.ElementInteraction, usage []*models.ComboUsage) *Snapshot {
	s := &Snapshot{
		posteriors:   make(map[elementKey]Posterior, len(scores)),
		interactions: make(map[pairKey]*models.ElementInteraction, len(interactions)),
		combos:       make(map[string]comboInfo, len(usage)),
	}
	for _, sc := range scores {
		s.posteriors[elementKey{sc.Name, sc.Value}] = Posterior{
			Alpha:        sc.Alpha,
			Beta:         sc.Beta,
			Observations: sc.Observations,
		}
	}
	for _, in := range interactions {
		s.interactions[orderedPair(in.NameA, in.ValueA, in.NameB, in.ValueB)] = in
	}
	for _, u := range usage {
		s.combos[u.ComboKey] = comboInfo{count: u.Count, lastUsed: u.LastUsedAt}
	}
	return s
}

// Posterior returns the belief for an element value. Unknown elements get
// the uniform prior and ok=false.
func (s *Snapshot) Posterior(name, value string) (Posterior, bool) {
	p, ok := s.posteriors[elementKey{name, value}]
	if !ok {
		return UniformPrior(), false
	}
	return p, true
}

// Interaction returns the recorded interaction between two element
// values, in either order, or nil when none is recorded.
func (s *Snapshot) Interaction(nameA, valueA, nameB, valueB string) *models.ElementInteraction {
	return s.interactions[orderedPair(nameA, valueA, nameB, valueB)]
}

// ComboCount returns how often the canonical combo key has been used.
func (s *Snapshot) ComboCount(key string) int {
	return s.combos[key].count
}

// ComboLastUsed returns when the combo was last used, or nil.
func (s *Snapshot) ComboLastUsed(key string) *time.Time {
	return s.combos[key].lastUsed
}

// Elements iterates all known (name, value) pairs in deterministic order.
func (s *Snapshot) Elements() []ElementBelief {
	out := make([]ElementBelief, 0, len(s.posteriors))
	for k, p := range s.posteriors {
		out = append(out, ElementBelief{Name: k.name, Value: k.value, Posterior: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// ElementBelief pairs an element value with its posterior.
type ElementBelief struct {
	Name      string
	Value     string
	Posterior Posterior
}
