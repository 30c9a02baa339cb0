// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGlslangBinary is the validator binary name inside glslang.path.
	DefaultGlslangBinary = "glslangValidator"
	// DefaultPlatform is the pre-build platform folder prefix.
	DefaultPlatform = "x64"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the palette used for rendered Markdown help.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the kbuild configuration.
	Config struct {
		// Glslang locates the external shader validator.
		Glslang GlslangConfig `json:"glslang" mapstructure:"glslang"`
		// Shaders tunes shader discovery.
		Shaders ShadersConfig `json:"shaders" mapstructure:"shaders"`
		// PreBuild configures the pre-build driver.
		PreBuild PreBuildConfig `json:"prebuild" mapstructure:"prebuild"`
		// UI configures output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// GlslangConfig locates glslangValidator.
	GlslangConfig struct {
		// Path is the installation directory. Empty disables shader validation.
		Path string `json:"path" mapstructure:"path"`
		// Binary is the executable name inside Path.
		Binary string `json:"binary" mapstructure:"binary"`
	}

	// ShadersConfig tunes shader discovery.
	ShadersConfig struct {
		IncludeDirs []string `json:"include_dirs" mapstructure:"include_dirs"`
		Exclude     []string `json:"exclude" mapstructure:"exclude"`
	}

	// PreBuildConfig configures the pre-build driver.
	PreBuildConfig struct {
		Platform string `json:"platform" mapstructure:"platform"`
	}

	// UIConfig configures output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Glslang: GlslangConfig{
			Binary: DefaultGlslangBinary,
		},
		Shaders: ShadersConfig{
			IncludeDirs: []string{},
			Exclude:     []string{},
		},
		PreBuild: PreBuildConfig{
			Platform: DefaultPlatform,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// String returns the string form of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether cs is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle maps the scheme to a glamour standard style name.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid checks the fields CUE cannot see: values that arrived through
// environment overrides.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.Glslang.Binary) == "" {
		errs = append(errs, errors.New("glslang.binary must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
