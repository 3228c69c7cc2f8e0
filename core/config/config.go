package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"tinyflow/core/access"
	"tinyflow/core/database"
	"tinyflow/core/klayout"
	"tinyflow/core/logger"
	"tinyflow/core/server"
	"tinyflow/core/storage"
	"tinyflow/core/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the base name of the optional configuration file
// (tinyflow.yaml, tinyflow.toml, tinyflow.json...).
const FileName = "tinyflow"

var (
	// ErrConfigMissing reports that neither a .env file nor a configuration
	// file was found. LoadConfig tolerates it and falls back to defaults.
	ErrConfigMissing = errors.New("configuration missing")
	// ErrConfigMalformed reports a source that exists but cannot be parsed,
	// or a value that fails validation.
	ErrConfigMalformed = errors.New("configuration malformed")
)

// Config holds all configuration for the application.
// It is built once at startup and must not be modified afterwards; share it
// by pointer and read it through its methods.
type Config struct {
	// Server holds the API and utility server endpoints.
	Server server.Config `mapstructure:"server"`
	// Access holds the superuser set and the CI token.
	Access access.Config `mapstructure:"access"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run history database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the report archive (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Klayout holds the sign-off tool settings.
	Klayout klayout.Config `mapstructure:"klayout"`

	sources []string
}

// Default returns the configuration built from the struct tag defaults only.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// Defaults are compiled in; failing here is a programming error.
		panic(err)
	}
	return cfg
}

// LoadConfig loads configuration from the .env file and tinyflow.* file in
// path, then from environment variables. Missing files are not an error.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	var sources []string

	envPath := filepath.Join(path, ".env")
	if err := godotenv.Overload(envPath); err == nil {
		sources = append(sources, envPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigMalformed, envPath, err)
	}

	v.SetConfigName(FileName)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err == nil {
		sources = append(sources, v.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
		}
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// KLAYOUT is the variable the sign-off scripts have always honored.
	_ = v.BindEnv("klayout.binary", "KLAYOUT_BINARY", "KLAYOUT")

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigStrict behaves like LoadConfig but returns ErrConfigMissing when
// no .env or configuration file exists in path.
func LoadConfigStrict(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if len(cfg.sources) == 0 {
		return nil, fmt.Errorf("%w: no .env or %s.* in %s", ErrConfigMissing, FileName, path)
	}
	return cfg, nil
}

// Superusers returns the superuser identifiers in configured order.
// The returned slice is a copy; modifying it does not affect the Config.
func (c *Config) Superusers() []string {
	return utils.Normalize(c.Access.Superusers)
}

// SuperuserSet returns the superusers as a membership set.
func (c *Config) SuperuserSet() access.Set {
	return access.NewSet(c.Access.Superusers)
}

// IsSuperuser reports whether id belongs to the superuser set.
func (c *Config) IsSuperuser(id string) bool {
	return id != "" && slices.Contains(c.Superusers(), id)
}

// Sources lists the files the configuration was read from, if any.
func (c *Config) Sources() []string {
	return slices.Clone(c.sources)
}

// Validate checks the invariants every consumer relies on.
func (c *Config) Validate() error {
	if !server.ValidPort(c.Server.Port) {
		return fmt.Errorf("%w: server.port %d out of range", ErrConfigMalformed, c.Server.Port)
	}
	if !server.ValidPort(c.Server.UtilsPort) {
		return fmt.Errorf("%w: server.utils_port %d out of range", ErrConfigMalformed, c.Server.UtilsPort)
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("%w: server.address is empty", ErrConfigMalformed)
	}
	if len(c.Superusers()) == 0 {
		return fmt.Errorf("%w: access.superusers is empty", ErrConfigMalformed)
	}
	if !c.Database.IsValidDriver() {
		return fmt.Errorf("%w: database.driver %q is not supported", ErrConfigMalformed, c.Database.Driver)
	}
	return nil
}

// Redacted returns a copy safe for display: secrets are masked and slices
// are not shared with c.
func (c *Config) Redacted() Config {
	out := *c
	out.Access.Superusers = c.Superusers()
	out.Server.ApiKey = access.Redact(c.Server.ApiKey)
	out.Access.Token = access.Redact(c.Access.Token)
	out.Database.Password = access.Redact(c.Database.Password)
	out.Storage.SecretKey = access.Redact(c.Storage.SecretKey)
	out.Klayout.SkipCells = slices.Clone(c.Klayout.SkipCells)
	out.sources = slices.Clone(c.sources)
	return out
}

func newViper() *viper.Viper {
	v := viper.New()
	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	cfg.Access.Superusers = utils.Normalize(cfg.Access.Superusers)
	cfg.Klayout.SkipCells = utils.Normalize(cfg.Klayout.SkipCells)
	return &cfg, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip unexported and untagged fields
		if tag == "" || !field.IsExported() {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Lists are written comma separated in tags and env vars alike.
		if field.Type.Kind() == reflect.Slice {
			list := utils.SplitList(defaultValue)
			if list == nil {
				list = []string{}
			}
			v.SetDefault(key, list)
			continue
		}
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
