package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/augeps/internal/ir"
)

// marshalVector encodes a vector column as canonical JSON.
func marshalVector(v any) (string, error) {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal vector: %w", err)
	}
	return string(b), nil
}

func unmarshalFloats(column, data string) ([]float64, error) {
	var out []float64
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", column, err)
	}
	if out == nil {
		out = []float64{}
	}
	return out, nil
}

func unmarshalVectors(column, data string) ([]ir.ObjectiveVector, error) {
	var out []ir.ObjectiveVector
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", column, err)
	}
	if out == nil {
		out = []ir.ObjectiveVector{}
	}
	return out, nil
}

func unmarshalInts(column, data string) ([]int, error) {
	var out []int
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", column, err)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
