// Package profile holds the analysis settings for a record file.
package profile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ChainSafe/asmflow/cfg"
)

const (
	DefaultArch      = "riscv64"
	DefaultLoopBound = 1
	DefaultMaxHeat   = 32
	DefaultMaxPaths  = 1024
)

// Profile represents the configuration of one analysis run.
type Profile struct {
	Name string `yaml:"name" json:"name"`
	Arch string `yaml:"arch" json:"arch"`
	// Entry is the label of the block paths start from. Empty selects the
	// first block of the fragment.
	Entry string `yaml:"entry" json:"entry,omitempty"`
	// LoopBound is how many extra iterations of a loop a path may take.
	LoopBound int `yaml:"loop_bound" json:"loop_bound"`
	MaxHeat   int `yaml:"max_heat" json:"max_heat"`
	// MaxPaths caps the enumeration; zero or less means no cap.
	MaxPaths        int    `yaml:"max_paths" json:"max_paths"`
	ReturnRule      string `yaml:"return_rule" json:"return_rule"`
	CallFallthrough bool   `yaml:"call_fallthrough" json:"call_fallthrough"`
	ExternalCalls   bool   `yaml:"external_calls" json:"external_calls"`
}

// Default returns the profile used when no profile file is given.
func Default() *Profile {
	return &Profile{
		Name:       "default",
		Arch:       DefaultArch,
		LoopBound:  DefaultLoopBound,
		MaxHeat:    DefaultMaxHeat,
		MaxPaths:   DefaultMaxPaths,
		ReturnRule: "convention",
	}
}

// LoadProfile loads a profile from a YAML (or JSON) file. Fields missing from
// the file keep their default value.
func LoadProfile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	prof := Default()
	if err := yaml.Unmarshal(data, prof); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", filename, err)
	}
	return prof, nil
}

// Validate checks the settings are usable.
func (p *Profile) Validate() error {
	var errs []error
	if p.LoopBound < 0 {
		errs = append(errs, fmt.Errorf("loop_bound must not be negative, got %d", p.LoopBound))
	}
	if p.MaxHeat <= 0 {
		errs = append(errs, fmt.Errorf("max_heat must be positive, got %d", p.MaxHeat))
	}
	if _, err := cfg.ReturnRuleFor(p.ReturnRule); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GraphOptions returns the CFG construction options of the profile.
func (p *Profile) GraphOptions() (cfg.Options, error) {
	rule, err := cfg.ReturnRuleFor(p.ReturnRule)
	if err != nil {
		return cfg.Options{}, err
	}
	return cfg.Options{
		ReturnRule:      rule,
		CallFallthrough: p.CallFallthrough,
		ExternalCalls:   p.ExternalCalls,
	}, nil
}

// MaxVisits converts the loop bound into a per-block visit bound.
func (p *Profile) MaxVisits() int {
	return p.LoopBound + 1
}
