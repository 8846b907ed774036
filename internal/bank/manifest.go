package bank

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/marubatsu/internal/source"
)

// ManifestFile is the optional manifest at the root of a question source.
const ManifestFile = "bank.yaml"

// Manifest declares the tiers and modes a question source offers.
type Manifest struct {
	Tiers []Tier `yaml:"tiers"`
	Modes []Mode `yaml:"modes"`
}

// DefaultManifest returns the built-in two-tier layout.
func DefaultManifest() Manifest {
	return Manifest{
		Tiers: []Tier{FirstTier, SecondTier},
		Modes: []Mode{Provisional, Full},
	}
}

// LoadManifest reads ManifestFile through f. A missing manifest yields
// DefaultManifest.
func LoadManifest(ctx context.Context, f source.Fetcher) (Manifest, error) {
	data, err := f.Fetch(ctx, ManifestFile)
	if errors.Is(err, source.ErrNotFound) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest and validates it. Sections left empty
// fall back to the built-in defaults.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	def := DefaultManifest()
	if len(m.Tiers) == 0 {
		m.Tiers = def.Tiers
	}
	if len(m.Modes) == 0 {
		m.Modes = def.Modes
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks that names are unique and every mode references a
// known tier.
func (m Manifest) Validate() error {
	tiers := make(map[string]bool, len(m.Tiers))
	for _, t := range m.Tiers {
		if t.Name == "" {
			return errors.New("manifest: tier without name")
		}
		if t.Dir == "" {
			return fmt.Errorf("manifest: tier %q has no dir", t.Name)
		}
		if tiers[t.Name] {
			return fmt.Errorf("manifest: duplicate tier %q", t.Name)
		}
		tiers[t.Name] = true
	}

	modes := make(map[string]bool, len(m.Modes))
	for _, md := range m.Modes {
		if md.Key == "" {
			return errors.New("manifest: mode without key")
		}
		if modes[md.Key] {
			return fmt.Errorf("manifest: duplicate mode %q", md.Key)
		}
		modes[md.Key] = true
		if md.QuestionCount < 0 {
			return fmt.Errorf("manifest: mode %q has negative question_count", md.Key)
		}
		if md.PassRate < 0 || md.PassRate > 100 {
			return fmt.Errorf("manifest: mode %q pass_rate must be within 0-100", md.Key)
		}
		for _, name := range md.Tiers {
			if !tiers[name] {
				return fmt.Errorf("manifest: mode %q references unknown tier %q", md.Key, name)
			}
		}
	}
	return nil
}

// Mode looks up a mode by key.
func (m Manifest) Mode(key string) (Mode, bool) {
	for _, md := range m.Modes {
		if md.Key == key {
			return md, true
		}
	}
	return Mode{}, false
}

// Tier looks up a tier by name.
func (m Manifest) Tier(name string) (Tier, bool) {
	for _, t := range m.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}
