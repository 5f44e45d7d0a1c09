// Package profiles provides pre-defined stream profiles for the ES9038Q2M.
// Each profile is a sample rate, width and encoding that the chip can be
// configured for, such as CD audio or DSD128.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/format"
)

// ErrUnknownProfile indicates a profile name that is not registered
var ErrUnknownProfile = errors.New("unknown profile")

// Profile represents a complete stream configuration
type Profile struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	RateHz      uint32              `json:"rate_hz"`
	Width       uint32              `json:"width"`
	Format      format.SampleFormat `json:"format"`
}

// Settings are the register values a profile programs for a master clock
type Settings struct {
	SerialLength uint8   `json:"serial_length"`
	DSD          bool    `json:"dsd"`
	NCO          uint32  `json:"nco"`
	NCOBytes     [4]byte `json:"nco_bytes"`
}

// ProfileConfig is the JSON format for storing profile configurations
type ProfileConfig struct {
	Profile   Profile   `json:"profile"`
	MCLKHz    uint32    `json:"mclk_hz"`
	Settings  Settings  `json:"settings"`
	Timestamp time.Time `json:"timestamp"`
}

// ToSettings derives the serial length and master-mode NCO word
func (p *Profile) ToSettings(mclkHz uint32) (*Settings, error) {
	length, dsd, err := format.Translate(p.Format)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	nco, err := clock.NCO(p.RateHz, mclkHz)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return &Settings{
		SerialLength: uint8(length),
		DSD:          dsd,
		NCO:          nco,
		NCOBytes:     clock.NCOBytes(nco),
	}, nil
}

// SaveToFile saves a profile configuration to a JSON file
func (p *Profile) SaveToFile(path string, mclkHz uint32) error {
	settings, err := p.ToSettings(mclkHz)
	if err != nil {
		return err
	}

	config := ProfileConfig{
		Profile:   *p,
		MCLKHz:    mclkHz,
		Settings:  *settings,
		Timestamp: time.Now(),
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// LoadProfileFromFile loads a profile configuration from a JSON file
func LoadProfileFromFile(path string) (*ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var config ProfileConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &config, nil
}

// EnsureDir ensures the directory for a file path exists
func EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0755)
}

// List returns every registered profile, PCM first, in ascending rate
func List() []*Profile {
	all := append(PCMProfiles(), DSDProfiles()...)
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Format.IsDSD() != b.Format.IsDSD() {
			return !a.Format.IsDSD()
		}
		return a.RateHz < b.RateHz
	})
	return all
}

// Names returns the registered profile names
func Names() []string {
	var names []string
	for _, p := range List() {
		names = append(names, p.Name)
	}
	return names
}

// Get returns the profile called name
func Get(name string) (*Profile, error) {
	for _, p := range List() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// GenerateProfiles writes every registered profile, computed for mclkHz,
// to basePath/<name>.json.
func GenerateProfiles(basePath string, mclkHz uint32) error {
	if err := EnsureDir(filepath.Join(basePath, "dummy")); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, p := range List() {
		filename := filepath.Join(basePath, p.Name+".json")
		if err := p.SaveToFile(filename, mclkHz); err != nil {
			return fmt.Errorf("failed to save profile %s: %w", p.Name, err)
		}
	}

	return nil
}

// formatRate formats a sample rate for use in descriptions
func formatRate(rate uint32) string {
	switch {
	case rate >= 1000000:
		return fmt.Sprintf("%.4gM", float64(rate)/1e6)
	case rate >= 1000:
		return fmt.Sprintf("%.4gk", float64(rate)/1e3)
	default:
		return fmt.Sprintf("%d", rate)
	}
}
