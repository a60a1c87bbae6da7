package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/stowgate"
	stowgatehttp "github.com/sagarc03/stowgate/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for stowgate.
type Config struct {
	Env       string                  `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Server    ServerConfig            `mapstructure:"server"`
	Gateway   GatewayConfig           `mapstructure:"gateway"`
	Locations []LocationConfig        `mapstructure:"locations" validate:"dive"`
	CORS      stowgatehttp.CORSConfig `mapstructure:"cors"`
	Log       LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	MetricsPath  string        `mapstructure:"metrics_path" validate:"omitempty,startswith=/"`
}

// GatewayConfig holds options shared by every location.
type GatewayConfig struct {
	// ChunkSize is the per-read buffer size, e.g. "1MiB".
	ChunkSize       string `mapstructure:"chunk_size" validate:"required"`
	IfModifiedSince string `mapstructure:"if_modified_since" validate:"required,oneof=off exact before"`
}

// IMSMode parses IfModifiedSince.
func (g GatewayConfig) IMSMode() (stowgate.IMSMode, error) {
	return stowgate.ParseIMSMode(g.IfModifiedSince)
}

// ChunkSizeBytes parses ChunkSize.
func (g GatewayConfig) ChunkSizeBytes() (int, error) {
	n, err := humanize.ParseBytes(g.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("parse chunk size %q: %w", g.ChunkSize, err)
	}
	if n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("parse chunk size %q: must be between 1B and 1GiB", g.ChunkSize)
	}
	return int(n), nil
}

// LocationConfig maps a URL prefix to a storage pool.
type LocationConfig struct {
	Prefix string `mapstructure:"prefix" validate:"required,startswith=/"`
	// Enabled defaults to true when omitted.
	Enabled  *bool  `mapstructure:"enabled"`
	Pool     string `mapstructure:"pool" validate:"required"`
	Driver   string `mapstructure:"driver" validate:"required"`
	Conf     string `mapstructure:"conf" validate:"required"`
	Throttle string `mapstructure:"throttle"`
}

// IsEnabled reports whether the location should be served.
func (l LocationConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// Location converts l into the gateway's location binding.
func (l LocationConfig) Location() (stowgate.Location, error) {
	rate, err := stowgate.ParseRate(l.Throttle)
	if err != nil {
		return stowgate.Location{}, fmt.Errorf("location %s: %w", l.Prefix, err)
	}
	return stowgate.Location{Prefix: l.Prefix, Pool: l.Pool, Rate: rate}, nil
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// EnabledLocations returns the locations to serve, in configuration order.
func (c *Config) EnabledLocations() []LocationConfig {
	var enabled []LocationConfig
	for _, loc := range c.Locations {
		if loc.IsEnabled() {
			enabled = append(enabled, loc)
		}
	}
	return enabled
}

// PoolConfigs returns one registry entry per enabled location. The registry
// itself collapses repeated pool names.
func (c *Config) PoolConfigs() []stowgate.PoolConfig {
	locs := c.EnabledLocations()
	pools := make([]stowgate.PoolConfig, 0, len(locs))
	for _, loc := range locs {
		pools = append(pools, stowgate.PoolConfig{Name: loc.Pool, Driver: loc.Driver, ConfPath: loc.Conf})
	}
	return pools
}

// GatewayLocations converts the enabled locations into gateway bindings.
func (c *Config) GatewayLocations() ([]stowgate.Location, error) {
	locs := c.EnabledLocations()
	out := make([]stowgate.Location, 0, len(locs))
	for _, lc := range locs {
		loc, err := lc.Location()
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

// FindLocation returns the enabled location with the given prefix.
func (c *Config) FindLocation(prefix string) (LocationConfig, bool) {
	for _, loc := range c.EnabledLocations() {
		if loc.Prefix == prefix {
			return loc, true
		}
	}
	return LocationConfig{}, false
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":              "server.port",
	"metrics-path":      "server.metrics_path",
	"chunk-size":        "gateway.chunk_size",
	"if-modified-since": "gateway.if_modified_since",
	"log-level":         "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5780)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s") // streams may run long under throttling
	v.SetDefault("server.metrics_path", "/metrics")

	v.SetDefault("gateway.chunk_size", "1MiB")
	v.SetDefault("gateway.if_modified_since", string(stowgate.IMSExact))

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("STOWGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// 7. Values the validator cannot parse
	if err := cfg.validateValues(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validateValues() error {
	if _, err := c.Gateway.ChunkSizeBytes(); err != nil {
		return err
	}

	if _, err := c.Gateway.IMSMode(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Locations))
	pools := make(map[string]LocationConfig, len(c.Locations))
	for i, loc := range c.Locations {
		if _, err := loc.Location(); err != nil {
			return fmt.Errorf("locations[%d]: %w", i, err)
		}
		if seen[loc.Prefix] {
			return fmt.Errorf("locations[%d]: duplicate prefix %s", i, loc.Prefix)
		}
		seen[loc.Prefix] = true

		// A pool name identifies one connection, whichever location reaches it.
		if first, ok := pools[loc.Pool]; ok && (first.Driver != loc.Driver || first.Conf != loc.Conf) {
			return fmt.Errorf("locations[%d]: pool %s already bound to driver %q with conf %s by %s",
				i, loc.Pool, first.Driver, first.Conf, first.Prefix)
		}
		if _, ok := pools[loc.Pool]; !ok {
			pools[loc.Pool] = loc
		}
	}

	return nil
}
