// Package config stores ES9038Q2M device configurations and register
// snapshots, and applies them to codecs. Files are JSON, or CBOR when the
// file name ends in ".cbor".
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// IsCBOR reports whether path selects the CBOR encoding
func IsCBOR(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cbor")
}

func marshal(v interface{}, path string) ([]byte, error) {
	if IsCBOR(path) {
		return encMode.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

func unmarshal(data []byte, v interface{}, path string) error {
	if IsCBOR(path) {
		return decMode.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func save(v interface{}, path string) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := marshal(v, path)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func load(v interface{}, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := unmarshal(data, v, path); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return nil
}

// SaveToFile writes a device file
func SaveToFile(configuration *File, path string) error {
	return save(configuration, path)
}

// LoadFromFile reads a device file
func LoadFromFile(path string) (*File, error) {
	var configuration File
	if err := load(&configuration, path); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// SaveSnapshot writes a register snapshot
func SaveSnapshot(snapshot *Snapshot, path string) error {
	return save(snapshot, path)
}

// LoadSnapshot reads a register snapshot
func LoadSnapshot(path string) (*Snapshot, error) {
	var snapshot Snapshot
	if err := load(&snapshot, path); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetConfigPath returns the default location of a named file
func GetConfigPath(name string) string {
	return filepath.Join("etc", "gosabre", fmt.Sprintf("%s.json", name))
}
