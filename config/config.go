// Package config loads the settings of the pts tool.
//
// Settings come, by increasing priority, from defaults, a config file, a .env
// file and PTS_* environment variables. Command line flags are applied on top
// by the commands themselves.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/etnz/papertrade"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read, e.g. PTS_LISTEN_ADDR.
const EnvPrefix = "PTS"

// Config stores all configuration of the tool.
type Config struct {
	ListenAddr   string   `mapstructure:"listen_addr"`   // HTTP API address.
	Currency     string   `mapstructure:"currency"`      // Currency of new accounts and of file prices.
	PricesFile   string   `mapstructure:"prices_file"`   // JSON price document, the reference table if empty.
	PricesPath   string   `mapstructure:"prices_path"`   // JSONPath template locating a price in PricesFile.
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Events are not published if empty.
	KafkaTopic   string   `mapstructure:"kafka_topic"`
	LogLevel     string   `mapstructure:"log_level"`
	LogFormat    string   `mapstructure:"log_format"` // text or json
}

// defaults are also the list of known keys.
var defaults = map[string]any{
	"listen_addr":   ":8080",
	"currency":      papertrade.DefaultCurrency,
	"prices_file":   "",
	"prices_path":   papertrade.DefaultPricesPath,
	"kafka_brokers": []string{},
	"kafka_topic":   "papertrade.transactions",
	"log_level":     "info",
	"log_format":    "text",
}

// Load reads the configuration.
//
// If file is empty an optional papertrade.{yaml,json,toml} is looked up in
// the working directory, otherwise file must exist.
func Load(file string) (Config, error) {
	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("cannot load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("cannot read config file %q: %w", file, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("papertrade")
		if err := v.ReadInConfig(); err != nil {
			// If the config file is not found, it's not an error,
			// as we can rely on environment variables.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("cannot read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be checked by their consumer later on.
func (c Config) Validate() error {
	var errs []error
	if err := papertrade.ValidateCurrency(c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("currency: %w", err))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format: must be text or json, got %q", c.LogFormat))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("kafka_topic: required when kafka_brokers is set"))
	}
	return errors.Join(errs...)
}

// ConfigureLogger sets up the standard logrus logger.
func (c Config) ConfigureLogger(out io.Writer) error {
	fieldMap := logrus.FieldMap{
		logrus.FieldKeyLevel: "severity",
		logrus.FieldKeyMsg:   "message",
	}

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap: fieldMap,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			FieldMap:      fieldMap,
		})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("could not parse log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(out)
	return nil
}

// Oracle returns the price oracle described by the configuration. A
// prices_file starting with http:// or https:// is fetched once.
func (c Config) Oracle(ctx context.Context) (papertrade.PriceOracle, error) {
	switch {
	case c.PricesFile == "":
		return papertrade.DefaultPrices(), nil
	case strings.HasPrefix(c.PricesFile, "http://"), strings.HasPrefix(c.PricesFile, "https://"):
		return papertrade.FetchJSONPrices(ctx, nil, c.PricesFile, c.PricesPath, c.Currency)
	default:
		return papertrade.LoadJSONPrices(c.PricesFile, c.PricesPath, c.Currency)
	}
}
