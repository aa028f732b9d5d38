package instance

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes inst as YAML, creating parent directories.
func Save(path string, inst *Instance) error {
	if err := inst.Validate(); err != nil {
		return fmt.Errorf("save instance: %w", err)
	}
	data, err := yaml.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create instance dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	return nil
}

// Load reads and validates an instance file.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}
	inst, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// Decode parses YAML strictly: unknown fields are rejected.
func Decode(data []byte) (*Instance, error) {
	var inst Instance
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&inst); err != nil {
		return nil, fmt.Errorf("parse instance YAML: %w", err)
	}
	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}
	return &inst, nil
}
