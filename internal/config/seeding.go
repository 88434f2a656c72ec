package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trackseed/internal/fsutil"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical seeding defaults file.
const DefaultConfigPath = "config/seeding.defaults.json"

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// ErrConfigShape is wrapped by every array length inconsistency.
var ErrConfigShape = errors.New("seeding config shape mismatch")

var validate = validator.New()

// SeedingConfig is the on-disk seeding configuration. Per-algorithm values
// are parallel arrays indexed by algorithm; the sub-detector lists are
// flattened across algorithms with an explicit per-algorithm count.
type SeedingConfig struct {
	SeedingAlgo  []string  `json:"seeding_algo" yaml:"seeding_algo" validate:"required,min=1,dive,required"`
	PtMin        []float64 `json:"pt_min" yaml:"pt_min" validate:"dive,gte=0"`
	MinRecHits   []uint    `json:"min_rec_hits" yaml:"min_rec_hits"`
	MaxD0        []float64 `json:"max_d0" yaml:"max_d0" validate:"dive,gte=0"`
	MaxZ0        []float64 `json:"max_z0" yaml:"max_z0" validate:"dive,gte=0"`
	NumberOfHits []uint    `json:"number_of_hits" yaml:"number_of_hits" validate:"dive,oneof=2 3"`
	SeedCleaning *bool     `json:"seed_cleaning,omitempty" yaml:"seed_cleaning,omitempty"`

	FirstHitSubDetectorNumber  []uint   `json:"first_hit_sub_detector_number" yaml:"first_hit_sub_detector_number" validate:"dive,min=1"`
	FirstHitSubDetectors       []uint32 `json:"first_hit_sub_detectors" yaml:"first_hit_sub_detectors"`
	SecondHitSubDetectorNumber []uint   `json:"second_hit_sub_detector_number" yaml:"second_hit_sub_detector_number" validate:"dive,min=1"`
	SecondHitSubDetectors      []uint32 `json:"second_hit_sub_detectors" yaml:"second_hit_sub_detectors"`
	ThirdHitSubDetectorNumber  []uint   `json:"third_hit_sub_detector_number" yaml:"third_hit_sub_detector_number"`
	ThirdHitSubDetectors       []uint32 `json:"third_hit_sub_detectors" yaml:"third_hit_sub_detectors"`

	OriginRadius     []float64 `json:"origin_radius" yaml:"origin_radius" validate:"dive,gte=0"`
	OriginHalfLength []float64 `json:"origin_half_length" yaml:"origin_half_length" validate:"dive,gte=0"`
	OriginPtMin      []float64 `json:"origin_pt_min" yaml:"origin_pt_min" validate:"dive,gte=0"`

	ErrorInflation *float64 `json:"error_inflation,omitempty" yaml:"error_inflation,omitempty" validate:"omitempty,gt=0"`
}

// LoadSeedingConfig loads a SeedingConfig from a .json, .yaml or .yml file
// and validates it. A config that fails validation is never returned.
func LoadSeedingConfig(fsys fsutil.FileSystem, path string) (*SeedingConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	data, err := fsutil.ReadBounded(fsys, cleanPath, maxConfigFileSize)
	if err != nil {
		return nil, err
	}

	cfg := &SeedingConfig{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical seeding defaults from
// DefaultConfigPath, searching the current directory and its parents.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SeedingConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSeedingConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks scalar ranges and the shape of every array. Any array
// whose length disagrees with the algorithm count is an ErrConfigShape.
func (c *SeedingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	n := len(c.SeedingAlgo)
	seen := make(map[string]bool, n)
	for _, name := range c.SeedingAlgo {
		if seen[name] {
			return fmt.Errorf("duplicate seeding algorithm %q", name)
		}
		seen[name] = true
	}

	lengths := []struct {
		field string
		got   int
	}{
		{"pt_min", len(c.PtMin)},
		{"min_rec_hits", len(c.MinRecHits)},
		{"max_d0", len(c.MaxD0)},
		{"max_z0", len(c.MaxZ0)},
		{"number_of_hits", len(c.NumberOfHits)},
		{"first_hit_sub_detector_number", len(c.FirstHitSubDetectorNumber)},
		{"second_hit_sub_detector_number", len(c.SecondHitSubDetectorNumber)},
		{"third_hit_sub_detector_number", len(c.ThirdHitSubDetectorNumber)},
		{"origin_radius", len(c.OriginRadius)},
		{"origin_half_length", len(c.OriginHalfLength)},
		{"origin_pt_min", len(c.OriginPtMin)},
	}
	for _, l := range lengths {
		if l.got != n {
			return fmt.Errorf("%w: %s has %d entries, want %d", ErrConfigShape, l.field, l.got, n)
		}
	}

	flattened := []struct {
		field  string
		counts []uint
		got    int
	}{
		{"first_hit_sub_detectors", c.FirstHitSubDetectorNumber, len(c.FirstHitSubDetectors)},
		{"second_hit_sub_detectors", c.SecondHitSubDetectorNumber, len(c.SecondHitSubDetectors)},
		{"third_hit_sub_detectors", c.ThirdHitSubDetectorNumber, len(c.ThirdHitSubDetectors)},
	}
	for _, f := range flattened {
		var want uint
		for _, k := range f.counts {
			want += k
		}
		if uint(f.got) != want {
			return fmt.Errorf("%w: %s has %d entries (should be %d)", ErrConfigShape, f.field, f.got, want)
		}
	}

	for i, hits := range c.NumberOfHits {
		if hits == 3 && c.ThirdHitSubDetectorNumber[i] == 0 {
			return fmt.Errorf("algorithm %q needs 3 hits but lists no third-hit sub-detectors", c.SeedingAlgo[i])
		}
	}
	return nil
}

// formatValidationError turns validator errors into a readable message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (value %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// GetSeedCleaning returns the seed_cleaning value or the default.
func (c *SeedingConfig) GetSeedCleaning() bool {
	if c.SeedCleaning == nil {
		return true // default
	}
	return *c.SeedCleaning
}

// GetErrorInflation returns the error_inflation value or the default.
func (c *SeedingConfig) GetErrorInflation() float64 {
	if c.ErrorInflation == nil {
		return 10 // default
	}
	return *c.ErrorInflation
}

// Hash returns a stable digest of the configuration, used to tag stored
// seeding runs.
func (c *SeedingConfig) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
