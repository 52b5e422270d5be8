package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/models"
	"github.com/dpshade/pocket-meta/internal/packs"
	"github.com/dpshade/pocket-meta/internal/validation"
)

// DefaultTemplate is the meta prompt used when no seed provides one.
const DefaultTemplate = `You are the controller for a synthetic document image generator.

Generate {{count}} images for {{pack_name}}.
Every image must follow the pack directives below exactly.
Output style: {{style}}.
Return one JSON object per image with the fields "file_name" and "prompt".`

// Seed is the starting state of a session.
type Seed struct {
	Template  string              `yaml:"template"`
	Variables map[string]string   `yaml:"variables"`
	Packs     []models.PackRecord `yaml:"packs"`

	// Warnings lists validation findings that did not stop the load.
	Warnings []string `yaml:"-"`
}

// DefaultSeed returns the built-in template and packs with no variables set.
func DefaultSeed() Seed {
	return Seed{
		Template:  DefaultTemplate,
		Variables: map[string]string{},
		Packs:     packs.DefaultSeed(),
	}
}

// LoadSeed reads a seed file. Sections the file leaves out fall back to DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	seed := DefaultSeed()
	if path == "" {
		return seed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, apperrors.ConfigError("read seed file", err).WithContext("path", path)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML over the defaults.
func ParseSeed(data []byte) (Seed, error) {
	var file struct {
		Template  *string             `yaml:"template"`
		Variables map[string]string   `yaml:"variables"`
		Packs     []models.PackRecord `yaml:"packs"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Seed{}, apperrors.ConfigError("parse seed file", err)
	}

	result := validation.ValidateSeed(file.Variables, file.Packs)
	if !result.Valid {
		return Seed{}, result.ToAppError()
	}

	seed := DefaultSeed()
	seed.Warnings = result.WarningMessages()
	if file.Template != nil {
		seed.Template = *file.Template
	}
	if file.Variables != nil {
		seed.Variables = file.Variables
	}
	if file.Packs != nil {
		seed.Packs = file.Packs
	}
	return seed, nil
}

// Registry builds the pack registry for the seed.
func (s Seed) Registry() (*packs.Registry, error) {
	r, err := packs.NewRegistry(s.Packs)
	if err != nil {
		return nil, fmt.Errorf("invalid seed packs: %w", err)
	}
	return r, nil
}

// Marshal renders the seed as YAML, for `pocket-meta seed` to print a starting file.
func (s Seed) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, apperrors.ConfigError("marshal seed", err)
	}
	return data, nil
}
