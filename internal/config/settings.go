package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REDUZER_DATABASE_PATH.
const EnvPrefix = "REDUZER"

// DefaultDatabasePath is where projects are stored unless configured.
const DefaultDatabasePath = "$HOME/.local/share/reduzer/reduzer.db"

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Logging  LoggingSettings
	Database DatabaseSettings
	Ingest   IngestSettings
	Compare  CompareSettings
}

// LoggingSettings configures slog.
type LoggingSettings struct {
	Level  string
	Format string
}

// DatabaseSettings locates the project database.
type DatabaseSettings struct {
	Path string
}

// IngestSettings controls file reading. A nil NoiseTokens keeps the
// built-in tokens; an empty list disables noise tagging.
type IngestSettings struct {
	Sheet       string
	NoiseTokens []string
}

// CompareSettings is the default scenario pair.
type CompareSettings struct {
	Base   model.Scenario
	Target model.Scenario
	Top    int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("compare.base", string(model.ScenarioA))
	v.SetDefault("compare.target", string(model.ScenarioC))
	v.SetDefault("compare.top", 3)
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database: DatabaseSettings{Path: ExpandPath(v.GetString("database.path"))},
		Ingest:   IngestSettings{Sheet: v.GetString("ingest.sheet")},
	}

	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return nil, err
	}
	if s.Database.Path == "" {
		s.Database.Path = ExpandPath(DefaultDatabasePath)
	}

	if v.IsSet("ingest.noise_tokens") {
		tokens, err := noiseTokens(v.Get("ingest.noise_tokens"))
		if err != nil {
			return nil, err
		}
		s.Ingest.NoiseTokens = tokens
	}

	var err error
	if s.Compare.Base, err = scenario(v, "compare.base"); err != nil {
		return nil, err
	}
	if s.Compare.Target, err = scenario(v, "compare.target"); err != nil {
		return nil, err
	}
	if s.Compare.Top, err = cast.ToIntE(v.Get("compare.top")); err != nil || s.Compare.Top < 0 {
		return nil, fmt.Errorf("%w: compare.top must be a non-negative integer, got %v", common.ErrInvalidConfig, v.Get("compare.top"))
	}

	return s, nil
}

// noiseTokens accepts a YAML list or a comma separated string (the form
// environment variables take).
func noiseTokens(raw any) ([]string, error) {
	if str, ok := raw.(string); ok {
		raw = strings.Split(str, ",")
	}
	list, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: ingest.noise_tokens: %w", common.ErrInvalidConfig, err)
	}
	tokens := make([]string, 0, len(list))
	for _, t := range list {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

func scenario(v *viper.Viper, key string) (model.Scenario, error) {
	raw := v.GetString(key)
	s, ok := model.ParseScenario(raw)
	if !ok {
		return "", fmt.Errorf("%w: %s: unknown scenario %q", common.ErrInvalidConfig, key, raw)
	}
	return s, nil
}

// Configure points v at the config file (cfgFile, or config.yaml in the
// reduzer config directory or the working directory), enables REDUZER_*
// environment overrides and reads the file. A missing file is not an error.
func Configure(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		dir, err := Dir()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}
