// Package kernelconfig loads the kernel's numeric constants from an optional
// YAML file, falling back to the reference values when the file is absent or
// a field is left unset.
package kernelconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable constant the kernel core depends on.
type Config struct {
	// InstructionMaxLen is L: the maximum length, in runes, of a single
	// instruction line.
	InstructionMaxLen int `yaml:"instruction_max_len"`

	// PageSize is P: the number of instruction slots per page/frame.
	PageSize int `yaml:"page_size"`

	// RAMFrames is F: the number of frames in simulated RAM.
	RAMFrames int `yaml:"ram_frames"`

	// Quantum is Q: the number of instructions a PCB runs per scheduler turn.
	Quantum int `yaml:"quantum"`

	// ScriptStackDepth bounds nested run/exec recursion.
	ScriptStackDepth int `yaml:"script_stack_depth"`

	// ShellMemoryCapacity bounds the number of variables set/print can hold.
	ShellMemoryCapacity int `yaml:"shell_memory_capacity"`

	// BackingStoreDir names the directory paginated scripts are written to.
	BackingStoreDir string `yaml:"backing_store_dir"`

	// DiagnosticsInterval is how often the diagnostics reporter logs a
	// summary line while a kernel session is alive. Zero disables it.
	DiagnosticsInterval time.Duration `yaml:"diagnostics_interval"`
}

// Default returns the reference constants: L=1000, P=4, F=10, Q=2, a
// 200-deep script stack, and a 1000-entry shell memory.
func Default() Config {
	return Config{
		InstructionMaxLen:   1000,
		PageSize:            4,
		RAMFrames:           10,
		Quantum:             2,
		ScriptStackDepth:    200,
		ShellMemoryCapacity: 1000,
		BackingStoreDir:     "BackingStore",
		DiagnosticsInterval: 2 * time.Second,
	}
}

// RAMSize returns F*P, the total number of instruction slots in RAM.
func (c Config) RAMSize() int { return c.RAMFrames * c.PageSize }

// Load reads a YAML config file at path and overlays it onto Default().
// A missing file is not an error: Load simply returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read kernel config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse kernel config %q: %w", path, err)
	}
	return cfg, nil
}
