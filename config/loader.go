package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BILLINGLOGIX"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	UserHomeDir() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches the
// standard locations.
func (r *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.findFirst(r.configSearchPaths())
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.findFirst([]string{"./.env.billinglogix", "./.env"})
	}
	return resolved
}

func (r *Resolver) configSearchPaths() []string {
	paths := []string{
		"./billinglogix.yml",
		"./billinglogix.yaml",
		"./config/billinglogix.yml",
	}
	if home, err := r.FileSystem.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".billinglogix.yml"))
	}
	return paths
}

func (r *Resolver) findFirst(paths []string) string {
	for _, path := range paths {
		if r.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	Flags      *pflag.FlagSet
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithFlags binds flags registered by RegisterFlags. Changed flags take
// precedence over every other source; --config and --env-file select files.
func WithFlags(fs *pflag.FlagSet) LoaderOption {
	return func(lc *LoaderConfig) {
		lc.Flags = fs
		if path, err := fs.GetString(FlagConfig); err == nil && path != "" {
			lc.ConfigFile = path
		}
		if path, err := fs.GetString(FlagEnvFile); err == nil && path != "" {
			lc.EnvFile = path
		}
	}
}

// envBindings maps config keys to the environment variables read for them,
// in priority order.
var envBindings = map[string][]string{
	"account":               {EnvPrefix + "_ACCOUNT", "ACCOUNT_SUB"},
	"access_key":            {EnvPrefix + "_ACCESS_KEY", "ACCESS_KEY"},
	"secret_key":            {EnvPrefix + "_SECRET_KEY", "SECRET_KEY"},
	"version":               {EnvPrefix + "_VERSION"},
	"timeout":               {EnvPrefix + "_TIMEOUT"},
	"debug":                 {EnvPrefix + "_DEBUG"},
	"log.level":             {EnvPrefix + "_LOG_LEVEL"},
	"log.format":            {EnvPrefix + "_LOG_FORMAT"},
	"log.output":            {EnvPrefix + "_LOG_OUTPUT"},
	"log.no_color":          {EnvPrefix + "_LOG_NO_COLOR"},
	"tls.ca_file":           {EnvPrefix + "_TLS_CA_FILE"},
	"tls.cert_file":         {EnvPrefix + "_TLS_CERT_FILE"},
	"tls.key_file":          {EnvPrefix + "_TLS_KEY_FILE"},
	"tls.skip_verify":       {EnvPrefix + "_TLS_SKIP_VERIFY"},
	"telemetry.enabled":     {EnvPrefix + "_TELEMETRY_ENABLED"},
	"telemetry.endpoint":    {EnvPrefix + "_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.insecure":    {EnvPrefix + "_TELEMETRY_INSECURE"},
	"telemetry.sample_rate": {EnvPrefix + "_TELEMETRY_SAMPLE_RATE"},
}

// Load resolves configuration from flags, environment, .env and YAML,
// applies defaults and validates the result.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	cfg, err := loadFromResolvedFiles(files, lc)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(files ResolvedFiles, lc LoaderConfig) (*Config, error) {
	v := viper.New()

	// 1. YAML base configuration
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return nil, fmt.Errorf("config: file not found: %s", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", files.ConfigFile, err)
		}
	}

	// 2. .env into the process environment, before variables are bound
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", files.EnvFile, err)
		}
	}

	// 3. Environment variables
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	// 4. Flags
	if lc.Flags != nil {
		if err := bindFlags(v, lc.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// millisecondsHook decodes bare numbers into time.Duration as
// milliseconds, matching the API's timeout unit.
func millisecondsHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		durationType := reflect.TypeOf(time.Duration(0))
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Millisecond, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Millisecond, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Millisecond)), nil
		case reflect.String:
			s := strings.TrimSpace(data.(string))
			if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
				return time.Duration(ms) * time.Millisecond, nil
			}
			return s, nil
		}
		return data, nil
	}
}
