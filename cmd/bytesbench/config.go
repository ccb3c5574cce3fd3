package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Profile holds the benchmark run configuration, loadable from a
// JSON-with-comments file and overridable by flags — the same
// defaults-then-overlay shape the teacher's root config.go uses for tk's
// own config, adapted from a single ticket directory setting to a list of
// benchmark parameters.
type Profile struct {
	Scenarios []string `json:"scenarios,omitempty"`
	Counts    []int    `json:"counts,omitempty"`
	Warmup    int      `json:"warmup,omitempty"`
	Runs      int      `json:"runs,omitempty"`
	OutDir    string   `json:"out_dir,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// DefaultProfile mirrors the teacher's DefaultConfig: sensible values a
// bare invocation can run with no file at all.
func DefaultProfile() Profile {
	return Profile{
		Scenarios: allScenarioNames(),
		Counts:    []int{1_000, 100_000},
		Warmup:    3,
		Runs:      10,
		OutDir:    ".bytesbench",
	}
}

// LoadProfile reads a JSONC profile file, standardizing it to JSON before
// unmarshalling (spec's ambient config-loading convention: hujson.Standardize
// then encoding/json, as the teacher's config.go does for .tk.json).
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Profile{}, fmt.Errorf("invalid JSONC in %q: %w", path, err)
	}

	var p Profile

	if err := json.Unmarshal(standardized, &p); err != nil {
		return Profile{}, fmt.Errorf("invalid JSON in %q: %w", path, err)
	}

	return p, nil
}

// mergeProfile overlays non-zero fields of overlay onto base, the same
// last-one-wins merge the teacher's mergeConfig uses for tk's config
// precedence (defaults, then file, then flags).
func mergeProfile(base, overlay Profile) Profile {
	if len(overlay.Scenarios) > 0 {
		base.Scenarios = overlay.Scenarios
	}

	if len(overlay.Counts) > 0 {
		base.Counts = overlay.Counts
	}

	if overlay.Warmup > 0 {
		base.Warmup = overlay.Warmup
	}

	if overlay.Runs > 0 {
		base.Runs = overlay.Runs
	}

	if overlay.OutDir != "" {
		base.OutDir = overlay.OutDir
	}

	return base
}
