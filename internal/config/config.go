package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/classscheduler/pkg/classsearch"

	"github.com/mitchellh/mapstructure"
)

// Department table cache selection.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// Config covers process level configuration read from environment variables and an optional JSON file.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int

	// Class search
	ClassSearchURL    string
	Term              string // Empty means the most recent term offered by the site
	Division          string
	Campus            string
	RequestsPerSecond float64
	RequestBurst      int
	RequestTimeout    time.Duration

	// Department table cache
	CacheBackend  CacheBackend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// API limits
	MaxCourses   int
	MaxSchedules int
}

// Load reads environment variables, applies defaults, overlays SCHEDULER_CONFIG_FILE when set and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvAny([]string{"SCHEDULER_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"SCHEDULER_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"SCHEDULER_HTTP_PORT"}, 8080),

		ClassSearchURL:    getEnvAny([]string{"SCHEDULER_CLASS_SEARCH_URL"}, "https://class-search.nd.edu/reg/srch/ClassSearchServlet"),
		Term:              getEnvAny([]string{"SCHEDULER_TERM"}, ""),
		Division:          getEnvAny([]string{"SCHEDULER_DIVISION"}, "A"),
		Campus:            getEnvAny([]string{"SCHEDULER_CAMPUS"}, "M"),
		RequestsPerSecond: getEnvFloatAny([]string{"SCHEDULER_REQUESTS_PER_SECOND"}, 2),
		RequestBurst:      getEnvIntAny([]string{"SCHEDULER_REQUEST_BURST"}, 4),
		RequestTimeout:    getEnvDurationAny([]string{"SCHEDULER_REQUEST_TIMEOUT"}, 15*time.Second),

		CacheBackend:  CacheBackend(strings.ToLower(getEnvAny([]string{"SCHEDULER_CACHE_BACKEND"}, string(CacheMemory)))),
		RedisAddr:     getEnvAny([]string{"SCHEDULER_REDIS_ADDR", "REDIS_ADDR"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"SCHEDULER_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"SCHEDULER_REDIS_DB", "REDIS_DB"}, 0),
		CacheTTL:      getEnvDurationAny([]string{"SCHEDULER_CACHE_TTL"}, time.Hour),

		MaxCourses:   getEnvIntAny([]string{"SCHEDULER_MAX_COURSES"}, 10),
		MaxSchedules: getEnvIntAny([]string{"SCHEDULER_MAX_SCHEDULES"}, 500),
	}

	if file := os.Getenv("SCHEDULER_CONFIG_FILE"); file != "" {
		if err := overlayFile(cfg, file); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.CacheBackend != CacheMemory && c.CacheBackend != CacheRedis && c.CacheBackend != CacheNone {
		return fmt.Errorf("unsupported cache backend %q", c.CacheBackend)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %v", c.HTTPPort)
	}
	if c.MaxCourses <= 0 || c.MaxSchedules <= 0 {
		return fmt.Errorf("max courses and max schedules must be positive")
	}
	if c.RequestsPerSecond <= 0 || c.RequestBurst <= 0 {
		return fmt.Errorf("request rate and burst must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// ClassSearch returns the scraper client settings.
func (c *Config) ClassSearch() classsearch.ClientConfig {
	return classsearch.ClientConfig{
		SearchURL:         c.ClassSearchURL,
		Division:          c.Division,
		Campus:            c.Campus,
		RequestsPerSecond: c.RequestsPerSecond,
		RequestBurst:      c.RequestBurst,
		RequestTimeout:    c.RequestTimeout,
	}
}

// Redis returns the shared table store settings.
func (c *Config) Redis() classsearch.RedisConfig {
	return classsearch.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		TTL:      c.CacheTTL,
	}
}

// overlayFile decodes a JSON object whose keys match Config field names (case-insensitive). Durations are strings such as "30s"
// or bare numbers of seconds.
func overlayFile(cfg *Config, file string) error {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("cannot read config file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return fmt.Errorf("cannot parse config file: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       durationHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return fmt.Errorf("cannot decode config file: %w", err)
	}
	cfg.CacheBackend = CacheBackend(strings.ToLower(string(cfg.CacheBackend)))
	return nil
}

// durationHook reads durations the way getEnvDurationAny does
func durationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}

	switch value := data.(type) {
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	case string:
		value = strings.TrimSpace(value)
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second, nil
		}
		return time.ParseDuration(value)
	}
	return data, nil
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvDurationAny accepts Go durations ("90s") or a bare number of seconds.
func getEnvDurationAny(keys []string, def time.Duration) time.Duration {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
			if seconds, err := strconv.Atoi(v); err == nil {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return def
}
