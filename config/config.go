// Package config loads CompilerOptions — the externalized defaults for
// the CompilerState policy flags (spec.md §3.6) — from a yaml document,
// so a host application ships one options file instead of hard-coding
// flag values at every embedding site.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/diag"
)

// CompilerOptions is the serialized form of a CompilerState's policy
// flags plus the language-specific extension map.
type CompilerOptions struct {
	// Language names the front end these options configure.
	Language string `yaml:"language"`

	// Checked enables overflow-trapping integer arithmetic.
	Checked bool `yaml:"checked"`

	// PromoteOnOverflow widens integers instead of trapping when
	// Checked is also set.
	PromoteOnOverflow bool `yaml:"promote_on_overflow"`

	// Optimize enables the Optimize/Optimized pipeline stages' work
	// (constant folding and client passes).
	Optimize bool `yaml:"optimize"`

	// Debug keeps one frame slot per named local for symbol info.
	Debug bool `yaml:"debug"`

	// TreatWarningsAsErrors promotes Warning diagnostics to Error.
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors"`

	// Extensions carries language-specific flags the core never reads
	// (allow_redefinition, optimistic_operator_inlining, ...).
	Extensions map[string]interface{} `yaml:"extensions,omitempty"`
}

// Default returns the options a host gets with no configuration file:
// checked arithmetic, optimization on, everything else off.
func Default() CompilerOptions {
	return CompilerOptions{
		Checked:  true,
		Optimize: true,
	}
}

// Load parses a yaml document into CompilerOptions, starting from
// Default so absent keys keep their default values.
func Load(data []byte) (CompilerOptions, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return CompilerOptions{}, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// LoadFile reads and parses an options file.
func LoadFile(path string) (CompilerOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CompilerOptions{}, fmt.Errorf("config: %w", err)
	}
	return Load(data)
}

// NewState materializes a CompilerState from the options with a fresh
// message sink.
func (o CompilerOptions) NewState() *decorate.CompilerState {
	ext := make(map[string]interface{}, len(o.Extensions))
	for k, v := range o.Extensions {
		ext[k] = v
	}
	return &decorate.CompilerState{
		Language:              o.Language,
		Sink:                  diag.NewSink(),
		Checked:               o.Checked,
		PromoteOnOverflow:     o.PromoteOnOverflow,
		Optimize:              o.Optimize,
		Debug:                 o.Debug,
		TreatWarningsAsErrors: o.TreatWarningsAsErrors,
		Extensions:            ext,
	}
}

// Apply overwrites an existing state's policy flags in place, keeping
// its sink and language binding.
func (o CompilerOptions) Apply(state *decorate.CompilerState) {
	state.Checked = o.Checked
	state.PromoteOnOverflow = o.PromoteOnOverflow
	state.Optimize = o.Optimize
	state.Debug = o.Debug
	state.TreatWarningsAsErrors = o.TreatWarningsAsErrors
	if state.Extensions == nil {
		state.Extensions = make(map[string]interface{}, len(o.Extensions))
	}
	for k, v := range o.Extensions {
		state.Extensions[k] = v
	}
}
