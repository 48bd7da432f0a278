// Package config loads BillingLogix client settings for programs such as
// blx.
//
// Values are resolved with Viper, highest precedence first: command-line
// flags, environment variables, a YAML config file, then defaults. A .env
// file is loaded into the environment before variables are read.
//
//	cfg, err := config.Load(config.WithFlags(flags))
//	if err != nil {
//		return err
//	}
//	client, err := billinglogix.New(cfg.Account, cfg.AccessKey, cfg.SecretKey, cfg.ClientOptions())
//
// Environment variables use the BILLINGLOGIX_ prefix (BILLINGLOGIX_ACCOUNT,
// BILLINGLOGIX_TIMEOUT, BILLINGLOGIX_LOG_LEVEL, ...). ACCOUNT_SUB,
// ACCESS_KEY and SECRET_KEY are accepted as fallbacks. Timeouts accept Go
// duration strings ("5s") or integer milliseconds ("5000").
package config
