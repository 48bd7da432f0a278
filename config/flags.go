package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig       = "config"
	FlagEnvFile      = "env-file"
	FlagAccount      = "account"
	FlagAccessKey    = "access-key"
	FlagSecretKey    = "secret-key"
	FlagTimeout      = "timeout"
	FlagHeader       = "header"
	FlagDebug        = "debug"
	FlagLogLevel     = "log-level"
	FlagLogFormat    = "log-format"
	FlagTelemetry    = "telemetry"
	FlagOTLPEndpoint = "otlp-endpoint"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	FlagAccount:      "account",
	FlagAccessKey:    "access_key",
	FlagSecretKey:    "secret_key",
	FlagTimeout:      "timeout",
	FlagHeader:       "headers",
	FlagDebug:        "debug",
	FlagLogLevel:     "log.level",
	FlagLogFormat:    "log.format",
	FlagTelemetry:    "telemetry.enabled",
	FlagOTLPEndpoint: "telemetry.endpoint",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "path to a YAML config file")
	fs.String(FlagEnvFile, "", "path to a .env file")
	fs.String(FlagAccount, "", "account subdomain")
	fs.String(FlagAccessKey, "", "API access key")
	fs.String(FlagSecretKey, "", "API secret key")
	fs.Duration(FlagTimeout, 0, "default request timeout (1s-60s)")
	fs.StringToString(FlagHeader, nil, "default header sent with every request (Name=value, repeatable)")
	fs.Bool(FlagDebug, false, "log every request step")
	fs.String(FlagLogLevel, "", "log level (trace, debug, info, warn, error, disabled)")
	fs.String(FlagLogFormat, "", "log format (console, json)")
	fs.Bool(FlagTelemetry, false, "export traces and metrics over OTLP/HTTP")
	fs.String(FlagOTLPEndpoint, "", "OTLP/HTTP endpoint host:port")
}

// viperBinder is the subset of *viper.Viper used to bind flags.
type viperBinder interface {
	BindPFlag(key string, flag *pflag.Flag) error
}

func bindFlags(v viperBinder, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("config: bind flag --%s: %w", name, err)
		}
	}
	return nil
}
