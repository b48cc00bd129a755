package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "1MB"
	defaultServiceName        = "transit"
	defaultLogOutput          = "stdout"
	defaultBusWaitTime        = 6
	defaultBusVelocity        = 40
	defaultRouteTTL           = 5 * time.Minute
	defaultCleanupInterval    = 10 * time.Minute
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port" validate:"gte=0,lte=65535"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Routing holds the router's cost model
	Routing RoutingConfig `json:"routing" yaml:"routing"`

	// Catalogue configures the dataset loaded at startup
	Catalogue CatalogueConfig `json:"catalogue" yaml:"catalogue"`

	// Cache configures the route query cache
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	// Output is stdout or stderr
	Output string `json:"output" yaml:"output" validate:"omitempty,oneof=stdout stderr"`
}

// RoutingConfig defines the transport router cost model
type RoutingConfig struct {
	// Minutes spent waiting at a stop for every boarding
	BusWaitTime int `json:"busWaitTime" yaml:"busWaitTime" validate:"gte=0,lte=1000"`

	// Bus speed in km/h
	BusVelocity float64 `json:"busVelocity" yaml:"busVelocity" validate:"gt=0,lte=1000"`
}

// CatalogueConfig defines where the transit dataset comes from
type CatalogueConfig struct {
	// Path to a CSV dataset directory or a JSON request document. Empty starts
	// the service without a catalogue until one is posted.
	DataPath string `json:"dataPath" yaml:"dataPath"`

	// Register placeholder stops for names referenced before definition
	ImplicitStops bool `json:"implicitStops" yaml:"implicitStops"`
}

// CacheConfig defines route cache expiry
type CacheConfig struct {
	RouteTTL        time.Duration `json:"routeTTL" yaml:"routeTTL" validate:"gte=0"`
	CleanupInterval time.Duration `json:"cleanupInterval" yaml:"cleanupInterval" validate:"gte=0"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			if filepath.IsAbs(path) {
				searchPaths = append(searchPaths, path)

				continue
			}
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Only TRANSIT_ prefixed variables override the file
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// Example: TRANSIT_CACHE_ROUTETTL -> cache.routeTTL
			key := canonicalizeEnvKey(strings.TrimPrefix(k, envPrefix), existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

const envPrefix = "TRANSIT_"

func New() (*Config, error) {
	return Load("config", "../config", "../../config")
}

// Load reads config.yaml from the first search path that has one, applies
// environment overrides and defaults, and validates the result
func Load(configPath ...string) (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", configPath...)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration usable without any config file
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Env.ServiceName) == "" {
		c.Env.ServiceName = defaultServiceName
	}

	if strings.TrimSpace(c.Env.Log.Level) == "" {
		c.Env.Log.Level = "info"
	}

	if strings.TrimSpace(c.Env.Log.Output) == "" {
		c.Env.Log.Output = defaultLogOutput
	}

	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Routing.BusVelocity == 0 {
		c.Routing.BusVelocity = defaultBusVelocity
		if c.Routing.BusWaitTime == 0 {
			c.Routing.BusWaitTime = defaultBusWaitTime
		}
	}

	if c.Cache.RouteTTL == 0 {
		c.Cache.RouteTTL = defaultRouteTTL
	}

	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = defaultCleanupInterval
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
