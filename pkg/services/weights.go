// Package services implements the recommendation generation engine.
package services

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
)

// Network topology for the quick scorer. The input vector is padded to a
// fixed width; the first four outputs are consumed (success, risk, cultural
// sensitivity, complexity), the last two are reserved for timeline and cost
// factors.
var scorerLayers = []int{50, 30, 20, 6}

// FeatureVectorSize is the padded input width of the quick scorer.
const FeatureVectorSize = 50

// WeightSnapshot is an immutable weight artifact for the quick scorer
// network. It is loaded once at process start; picking up a new artifact
// requires a fresh load, not a hot reload.
type WeightSnapshot struct {
	Version string        `json:"version"`
	Layers  []int         `json:"layers"`
	Weights [][][]float64 `json:"weights"`
	Biases  [][]float64   `json:"biases"`
}

// LoadWeightSnapshot reads a weight artifact from disk and validates its
// topology.
func LoadWeightSnapshot(path string) (*WeightSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weight snapshot: %w", err)
	}

	var snapshot WeightSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse weight snapshot: %w", err)
	}

	if err := snapshot.validate(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// NewRandomSnapshot builds a snapshot with weights and biases drawn uniformly
// from [-1, 1). Used for cold starts when no artifact exists.
func NewRandomSnapshot(rng *rand.Rand) *WeightSnapshot {
	snapshot := &WeightSnapshot{
		Version: "cold-start",
		Layers:  append([]int(nil), scorerLayers...),
	}

	for i := 0; i < len(scorerLayers)-1; i++ {
		layerWeights := make([][]float64, scorerLayers[i+1])
		layerBiases := make([]float64, scorerLayers[i+1])
		for j := range layerWeights {
			nodeWeights := make([]float64, scorerLayers[i])
			for k := range nodeWeights {
				nodeWeights[k] = rng.Float64()*2 - 1
			}
			layerWeights[j] = nodeWeights
			layerBiases[j] = rng.Float64()*2 - 1
		}
		snapshot.Weights = append(snapshot.Weights, layerWeights)
		snapshot.Biases = append(snapshot.Biases, layerBiases)
	}

	return snapshot
}

// Save writes the snapshot to disk, creating the parent directory if needed.
func (s *WeightSnapshot) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode weight snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write weight snapshot: %w", err)
	}
	return nil
}

func (s *WeightSnapshot) validate() error {
	if len(s.Layers) != len(scorerLayers) {
		return fmt.Errorf("weight snapshot has %d layers, want %d", len(s.Layers), len(scorerLayers))
	}
	for i, n := range scorerLayers {
		if s.Layers[i] != n {
			return fmt.Errorf("weight snapshot layer %d has width %d, want %d", i, s.Layers[i], n)
		}
	}
	if len(s.Weights) != len(scorerLayers)-1 || len(s.Biases) != len(scorerLayers)-1 {
		return fmt.Errorf("weight snapshot is missing weight or bias matrices")
	}
	for i := 0; i < len(scorerLayers)-1; i++ {
		if len(s.Weights[i]) != scorerLayers[i+1] || len(s.Biases[i]) != scorerLayers[i+1] {
			return fmt.Errorf("weight snapshot matrix %d does not match topology", i)
		}
		for _, node := range s.Weights[i] {
			if len(node) != scorerLayers[i] {
				return fmt.Errorf("weight snapshot matrix %d does not match topology", i)
			}
		}
	}
	return nil
}

// run performs a forward pass with sigmoid activations.
func (s *WeightSnapshot) run(input []float64) []float64 {
	current := input
	for i := range s.Weights {
		next := make([]float64, len(s.Weights[i]))
		for j, nodeWeights := range s.Weights[i] {
			sum := s.Biases[i][j]
			for k, v := range current {
				sum += v * nodeWeights[k]
			}
			next[j] = sigmoid(sum)
		}
		current = next
	}
	return current
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
