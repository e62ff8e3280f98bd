// Package rules loads the declarative cleaning and KPI rule set.
//
// The rule set is declared in CUE so that constraints (closed region
// enumeration, positive window sizes) are checked before any record is
// touched. The embedded default set matches the production cleaning
// rules; a user file unifies against it, so partial overrides keep the
// remaining defaults and invalid overrides fail loudly at load time.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/ledgerline/orderpulse/internal/canon"
)

//go:embed rules.cue
var defaultRulesCUE []byte

// Set is the decoded, immutable rule set for one run.
type Set struct {
	Cleaning Cleaning `json:"cleaning"`
	KPI      KPI      `json:"kpi"`
}

// Cleaning configures the Canonicalizer.
type Cleaning struct {
	MobileLength int               `json:"mobileLength"`
	MobilePrefix string            `json:"mobilePrefix"`
	DateFormats  []string          `json:"dateFormats"`
	Regions      map[string]string `json:"regions"`
}

// KPI configures the windowed KPI parameters.
type KPI struct {
	WindowDays int `json:"windowDays"`
	TopLimit   int `json:"topLimit"`
}

// Default returns the embedded rule set.
func Default() (Set, error) {
	return decode(nil)
}

// Load returns the embedded rule set unified with the CUE file at path.
func Load(path string) (Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read rules file: %w", err)
	}
	return LoadBytes(path, b)
}

// LoadBytes is Load for in-memory rule sources. filename is used in
// error positions only.
func LoadBytes(filename string, b []byte) (Set, error) {
	return decode(func(ctx *cue.Context) (cue.Value, error) {
		v := ctx.CompileBytes(b, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("compile rules %s: %w", filename, err)
		}
		return v, nil
	})
}

func decode(overlay func(*cue.Context) (cue.Value, error)) (Set, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(defaultRulesCUE, cue.Filename("rules.cue"))
	if err := v.Err(); err != nil {
		return Set{}, fmt.Errorf("compile embedded rules: %w", err)
	}

	if overlay != nil {
		user, err := overlay(ctx)
		if err != nil {
			return Set{}, err
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Set{}, fmt.Errorf("validate rules: %w", err)
	}

	var set Set
	if err := v.Decode(&set); err != nil {
		return Set{}, fmt.Errorf("decode rules: %w", err)
	}
	return set, nil
}

// CanonConfig converts the cleaning section into the Canonicalizer's
// config, rejecting synonym targets outside the canonical enumeration.
// The CUE constraints already enforce this for files that load; the check
// here keeps hand-constructed Sets honest too.
func (s Set) CanonConfig() (canon.Config, error) {
	regions := make(map[string]canon.Region, len(s.Cleaning.Regions))
	for synonym, target := range s.Cleaning.Regions {
		r := canon.Region(target)
		if !canon.IsKnownRegion(r) || r == canon.RegionUnknown {
			return canon.Config{}, fmt.Errorf("region synonym %q maps to unknown region %q", synonym, target)
		}
		regions[synonym] = r
	}
	if s.Cleaning.MobileLength <= 0 {
		return canon.Config{}, fmt.Errorf("mobile length must be positive, got %d", s.Cleaning.MobileLength)
	}
	if len(s.Cleaning.DateFormats) == 0 {
		return canon.Config{}, fmt.Errorf("at least one date format is required")
	}
	return canon.Config{
		MobileLength: s.Cleaning.MobileLength,
		MobilePrefix: s.Cleaning.MobilePrefix,
		DateFormats:  append([]string(nil), s.Cleaning.DateFormats...),
		Regions:      regions,
	}, nil
}
