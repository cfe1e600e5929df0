package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/odoo2mod/internal/projection"
	"github.com/hupe1980/odoo2mod/internal/record"
	"github.com/hupe1980/odoo2mod/internal/version"
)

// DefaultHeader is the header block placed after the XML declaration when
// the config file does not set one.
const DefaultHeader = "<!-- This file was generated automatically -->"

// ProjectionConfig holds the pipeline sections of the config file
// (.odoo2mod.yaml).
type ProjectionConfig struct {
	// Requires is a semver constraint on the odoo2mod version.
	Requires string `json:"requires,omitempty"`

	// Header is the header block of view artifacts. Nil means DefaultHeader,
	// an empty string disables the header.
	Header *string `json:"header,omitempty"`

	// MenuHeader is the header block of the menu artifact. Nil falls back
	// to Header.
	MenuHeader *string `json:"menuHeader,omitempty"`

	// Projection overrides the built-in view and action policies.
	Projection PolicyOverrides `json:"projection,omitempty"`
}

// PolicyOverrides replaces the built-in policy of a record type when set.
type PolicyOverrides struct {
	Views   *projection.Policy `json:"views,omitempty"`
	Actions *projection.Policy `json:"actions,omitempty"`
}

// ParseProjectionConfig parses the pipeline sections from raw config file
// bytes. Global keys such as log-level are ignored.
func ParseProjectionConfig(data []byte) (*ProjectionConfig, error) {
	var cfg ProjectionConfig

	if err := sigsyaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing projection config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.CheckVersion(version.Current().Version); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadProjectionConfig reads path and parses it. An empty path yields the
// built-in defaults.
func LoadProjectionConfig(path string) (*ProjectionConfig, error) {
	if path == "" {
		return &ProjectionConfig{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config file
	if err != nil {
		return nil, fmt.Errorf("reading projection config %q: %w", path, err)
	}

	return ParseProjectionConfig(data)
}

// Validate checks the projection config for correctness.
func (c *ProjectionConfig) Validate() error {
	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			return fmt.Errorf("invalid requires constraint %q: %w", c.Requires, err)
		}
	}

	for name, p := range map[string]*projection.Policy{
		"views":   c.Projection.Views,
		"actions": c.Projection.Actions,
	} {
		if p == nil {
			continue
		}

		if err := validatePolicy(p); err != nil {
			return fmt.Errorf("projection.%s: %w", name, err)
		}
	}

	return nil
}

func validatePolicy(p *projection.Policy) error {
	for i, name := range p.Order {
		if name == "" {
			return fmt.Errorf("order[%d]: field name must not be empty", i)
		}
	}

	for i, name := range p.Exclude {
		if name == "" {
			return fmt.Errorf("exclude[%d]: field name must not be empty", i)
		}
	}

	return nil
}

// errDevBuild marks builds without a release version.
var errDevBuild = errors.New("development build")

// CheckVersion verifies current against the Requires constraint.
// Development builds always pass.
func (c *ProjectionConfig) CheckVersion(current string) error {
	if c.Requires == "" {
		return nil
	}

	v, err := releaseVersion(current)
	if errors.Is(err, errDevBuild) {
		return nil
	}

	if err != nil {
		return err
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", c.Requires, err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("config requires odoo2mod %s, running %s", c.Requires, current)
	}

	return nil
}

func releaseVersion(current string) (*semver.Version, error) {
	if current == "" || current == version.Dev {
		return nil, errDevBuild
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		return nil, fmt.Errorf("invalid odoo2mod version %q: %w", current, err)
	}

	return v, nil
}

// Policies returns the built-in policies with the configured overrides
// applied.
func (c *ProjectionConfig) Policies() projection.Policies {
	ps := projection.DefaultPolicies()

	if c.Projection.Views != nil {
		ps[record.TypeView] = *c.Projection.Views
	}

	if c.Projection.Actions != nil {
		ps[record.TypeAction] = *c.Projection.Actions
	}

	return ps
}

// ViewHeader returns the header block of view artifacts.
func (c *ProjectionConfig) ViewHeader() string {
	if c.Header == nil {
		return DefaultHeader
	}

	return *c.Header
}

// MenuHeaderText returns the header block of the menu artifact.
func (c *ProjectionConfig) MenuHeaderText() string {
	if c.MenuHeader == nil {
		return c.ViewHeader()
	}

	return *c.MenuHeader
}
