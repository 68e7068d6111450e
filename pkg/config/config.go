package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = "production"
)

type Config struct {
	Environment string `koanf:"environment" default:"development" validate:"oneof=development test production"`
	Hostname    string `koanf:"-"`

	ServerHost string `koanf:"server_host" default:"0.0.0.0"`
	ServerPort int    `koanf:"server_port" default:"5000" validate:"min=0,max=65535"`

	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5" validate:"min=1"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" default:"/data/moviemate.sqlite"`

	TMDBAPIKey          string        `koanf:"tmdb_api_key"`
	TMDBBaseURL         string        `koanf:"tmdb_base_url" default:"https://api.themoviedb.org/3" validate:"url"`
	TMDBTimeout         time.Duration `koanf:"tmdb_timeout" default:"10s" validate:"gt=0"`
	TMDBRetryMax        int           `koanf:"tmdb_retry_max" default:"3" validate:"min=0"`
	TMDBRetryWaitMin    time.Duration `koanf:"tmdb_retry_wait_min" default:"500ms"`
	TMDBRetryWaitMax    time.Duration `koanf:"tmdb_retry_wait_max" default:"5s"`
	TMDBRateLimit       float64       `koanf:"tmdb_rate_limit" default:"40" validate:"gt=0"`
	TMDBRateBurst       int           `koanf:"tmdb_rate_burst" default:"20" validate:"min=1"`
	TMDBBreakerFailures int           `koanf:"tmdb_breaker_failures" default:"5" validate:"min=1"`
	TMDBBreakerTimeout  time.Duration `koanf:"tmdb_breaker_timeout" default:"30s"`

	CacheTTL        time.Duration `koanf:"cache_ttl" default:"5m"`
	CacheMaxEntries int           `koanf:"cache_max_entries" default:"1000" validate:"min=0"`

	WorkerEnabled           bool          `koanf:"worker_enabled" default:"true"`
	CachePruneInterval      time.Duration `koanf:"cache_prune_interval" default:"10m"`
	TrendingRefreshInterval time.Duration `koanf:"trending_refresh_interval" default:"1h"`
	PopularRefreshInterval  time.Duration `koanf:"popular_refresh_interval" default:"24h"`
}

const (
	configFileENV   = "CONFIG_FILE"
	environmentENV  = "ENVIRONMENT"
	defaultFilePath = "/config/moviemate.yaml"
)

// requiredOutsideTest are the keys that must be set by the file or the
// environment unless running the test suite.
var requiredOutsideTest = []string{"tmdb_api_key"}

// New loads the configuration from, in increasing order of precedence, the
// built-in defaults for the current ENVIRONMENT, the YAML file at CONFIG_FILE,
// and environment variables.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	environment := os.Getenv(environmentENV)
	if environment == "" {
		environment = EnvironmentDevelopment
	}

	base := defaultConfig()
	base.Environment = environment
	applyProfile(base)

	k := koanf.New(".")
	if err := k.Load(structs.Provider(base, "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultFilePath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	known := k.All()
	transform := func(key string) string {
		key = strings.ToLower(key)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}
	if err := k.Load(env.Provider("", ".", transform), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	if k.String("environment") != EnvironmentTest {
		var missing []string
		for _, key := range requiredOutsideTest {
			if k.String(key) == "" {
				missing = append(missing, fmt.Sprintf("%s (%s)", strings.ToUpper(key), key))
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.Hostname = hostname

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns the test profile without reading files or the
// environment.
func NewForTest() *Config {
	cfg := defaultConfig()
	cfg.Environment = EnvironmentTest
	applyProfile(cfg)
	cfg.Hostname = "test"
	return cfg
}

// defaultConfig returns a Config filled from its default tags.
func defaultConfig() *Config {
	cfg := &Config{}
	defaults.MustSet(cfg)
	return cfg
}

func (cfg *Config) validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("invalid config: %s (%s) failed %q validation", strings.ToUpper(fe.Field()), fe.Field(), fe.Tag())
		}
		return errors.WithStack(err)
	}
	return nil
}
