package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. PHONEBOOK_LOG_LEVEL
const EnvPrefix = "PHONEBOOK_"

type Config struct {
	// Version is reported when the binary carries no build-time version
	Version   string `koanf:"version"`
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	Assistant AssistantConfig `koanf:"assistant"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type AssistantConfig struct {
	Prompt   string `koanf:"prompt"`
	Greeting string `koanf:"greeting" validate:"required"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Endpoint      string        `koanf:"endpoint" validate:"required_if=Enabled true"`
	ServiceName   string        `koanf:"service_name" validate:"required"`
	SamplingRate  float64       `koanf:"sampling_rate" validate:"min=0,max=1"`
	ExportTimeout time.Duration `koanf:"export_timeout" validate:"gt=0"`
	BatchTimeout  time.Duration `koanf:"batch_timeout" validate:"gt=0"`
}

// Defaults returns the configuration used when no file or env override is present
func Defaults() *Config {
	return &Config{
		Version:   "dev",
		LogLevel:  "warn",
		LogFormat: "console",
		Assistant: AssistantConfig{
			Prompt:   "Enter a command: ",
			Greeting: "Welcome to the assistant bot!",
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			ServiceName:   "phonebook",
			SamplingRate:  1.0,
			ExportTimeout: 10 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
	}
}

// Load reads defaults, then the YAML file at path if it exists, then
// PHONEBOOK_ environment variables. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps PHONEBOOK_TELEMETRY_SAMPLING_RATE to telemetry.sampling_rate.
// The first underscore after the prefix separates the section from the key
// for sectioned settings; top-level keys keep their underscores.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"assistant_", "telemetry_"} {
		if strings.HasPrefix(key, section) {
			return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
		}
	}
	return key
}

var validate = newValidator()

// newValidator reports fields by their koanf key so errors name the setting
// as it is written in the file or environment.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints declared in struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
