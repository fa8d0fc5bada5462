package registry

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/parchment-ai/skillreg/pkg/logger"
)

const (
	// DefaultMaxTotalBytes bounds the summed body size of one payload.
	DefaultMaxTotalBytes = 32 * 1024
	// DefaultMaxItems bounds the number of skills in one payload.
	DefaultMaxItems = 5
)

// Config controls the registry. The byte and item budgets are design
// defaults, not hard requirements; callers tune them to their consumer's
// context window.
type Config struct {
	MaxTotalBytes int `mapstructure:"max_total_bytes" json:"max_total_bytes" yaml:"max_total_bytes"`
	MaxItems      int `mapstructure:"max_items" json:"max_items" yaml:"max_items"`

	// SkillDirs overrides the scanner's default skill directories.
	SkillDirs []string `mapstructure:"skill_dirs" json:"skill_dirs" yaml:"skill_dirs"`
	// IncludeBuiltin appends the embedded default skills after on-disk
	// documents; on-disk skills with the same id win.
	IncludeBuiltin bool `mapstructure:"include_builtin" json:"include_builtin" yaml:"include_builtin"`

	// Allowed restricts the registry to the listed skill ids.
	Allowed []string `mapstructure:"allowed" json:"allowed" yaml:"allowed"`
	// ToolPatterns drops skills whose allowed-tools request capabilities
	// outside these glob patterns.
	ToolPatterns []string `mapstructure:"tool_patterns" json:"tool_patterns" yaml:"tool_patterns"`

	// Profiles holds named overrides, e.g. a tighter budget for subagents.
	Profiles map[string]ProfileConfig `mapstructure:"profiles" json:"profiles" yaml:"profiles"`
}

// ProfileConfig overrides a subset of Config. Only the keys present in the
// profile are applied; everything else keeps the base value.
type ProfileConfig map[string]interface{}

// DefaultConfig returns the registry defaults.
func DefaultConfig() Config {
	return Config{
		MaxTotalBytes:  DefaultMaxTotalBytes,
		MaxItems:       DefaultMaxItems,
		IncludeBuiltin: true,
	}
}

// LoadConfigFromViper reads the "skills" configuration section, falling
// back to defaults when the section is absent or malformed.
func LoadConfigFromViper(ctx context.Context) Config {
	config := DefaultConfig()

	if viper.IsSet("skills") {
		if err := viper.UnmarshalKey("skills", &config); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to load skills config, using defaults")
			return DefaultConfig()
		}
	}

	return config.withDefaults()
}

// WithProfile applies the named profile's overrides on top of the base
// configuration. An unknown profile name is an error.
func (c Config) WithProfile(name string) (Config, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return c, errors.Errorf("skills profile %q not found", name)
	}

	merged := c
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &merged,
		WeaklyTypedInput: true,
		ZeroFields:       false, // don't overwrite with zero values
	})
	if err != nil {
		return c, errors.Wrap(err, "failed to create profile decoder")
	}
	if err := decoder.Decode(profile); err != nil {
		return c, errors.Wrapf(err, "failed to apply skills profile %q", name)
	}

	return merged.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.MaxTotalBytes <= 0 {
		c.MaxTotalBytes = DefaultMaxTotalBytes
	}
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	return c
}
