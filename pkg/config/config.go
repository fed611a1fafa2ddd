package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pressroomhq/scrubpress/pkg/safeio"
)

// ScrubRule is one ordered literal find/replace pair. Rules apply
// left-to-right; later rules see the output of earlier ones.
type ScrubRule struct {
	Find    string `mapstructure:"find" json:"find"`
	Replace string `mapstructure:"replace" json:"replace"`
}

// Markers configures the paired delimiters for private-region stripping.
type Markers struct {
	Begin string `mapstructure:"begin" json:"begin"`
	End   string `mapstructure:"end" json:"end"`
}

// PublishConfig is the operator-authored pipeline configuration. It is
// immutable for the duration of a run.
type PublishConfig struct {
	ScrubRules          []ScrubRule `mapstructure:"scrub_rules" json:"scrub_rules"`
	ExcludePaths        []string    `mapstructure:"exclude_paths" json:"exclude_paths"`
	ResetToTemplates    []string    `mapstructure:"reset_to_templates" json:"reset_to_templates"`
	ValidationBlocklist []string    `mapstructure:"validation_blocklist" json:"validation_blocklist"`
	Remote              string      `mapstructure:"remote" json:"remote"`
	Branch              string      `mapstructure:"branch" json:"branch"`
	Markers             Markers     `mapstructure:"markers" json:"markers"`
	TemplateCatalog     string      `mapstructure:"template_catalog" json:"template_catalog"`
	Project             string      `mapstructure:"project" json:"project"`
}

// Error marks configuration problems so the CLI can map them to the
// configuration-error exit code.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

const (
	defaultBeginMarker = "PRIVATE:BEGIN"
	defaultEndMarker   = "PRIVATE:END"
)

// Load reads the publish configuration. When file is non-empty it is used
// directly; otherwise scrubpress.{yaml,json} is searched for in targetDir.
// The loaded document is schema-validated before unmarshalling.
func Load(file, targetDir string) (*PublishConfig, error) {
	v := viper.New()

	v.SetDefault("markers.begin", defaultBeginMarker)
	v.SetDefault("markers.end", defaultEndMarker)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("scrubpress")
		v.AddConfigPath(targetDir)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Reason: "failed to read config", Err: err}
	}

	if err := validateSchema(v.AllSettings()); err != nil {
		return nil, err
	}

	var cfg PublishConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Reason: "failed to parse config", Err: err}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize cleans operator-supplied paths and enforces semantic constraints
// the schema cannot express.
func (c *PublishConfig) normalize() error {
	if strings.TrimSpace(c.Remote) == "" {
		return &Error{Reason: "remote must be set"}
	}
	if strings.TrimSpace(c.Branch) == "" {
		return &Error{Reason: "branch must be set"}
	}
	if c.Markers.Begin == "" || c.Markers.End == "" {
		return &Error{Reason: "marker tokens must be non-empty"}
	}
	if c.Markers.Begin == c.Markers.End {
		return &Error{Reason: "begin and end marker tokens must differ"}
	}
	for i, rule := range c.ScrubRules {
		if rule.Find == "" {
			return &Error{Reason: fmt.Sprintf("scrub_rules[%d].find must be non-empty", i)}
		}
	}
	for _, term := range c.ValidationBlocklist {
		if term == "" {
			return &Error{Reason: "validation_blocklist terms must be non-empty"}
		}
	}

	cleaned := make([]string, 0, len(c.ExcludePaths))
	for _, p := range c.ExcludePaths {
		cp, err := safeio.CleanRepoPath(p)
		if err != nil {
			return &Error{Reason: fmt.Sprintf("invalid exclude path %q", p), Err: err}
		}
		cleaned = append(cleaned, cp)
	}
	c.ExcludePaths = cleaned

	cleaned = make([]string, 0, len(c.ResetToTemplates))
	for _, p := range c.ResetToTemplates {
		cp, err := safeio.CleanRepoPath(p)
		if err != nil {
			return &Error{Reason: fmt.Sprintf("invalid reset_to_templates path %q", p), Err: err}
		}
		cleaned = append(cleaned, cp)
	}
	c.ResetToTemplates = cleaned
	return nil
}
