package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pior/momento"
	"github.com/pior/momento/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type settings struct {
	Profile      string        `mapstructure:"profile"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	Cache        string        `mapstructure:"cache"`
	APIKeyEnv    string        `mapstructure:"api_key_env"`
	EndpointEnv  string        `mapstructure:"endpoint_env"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	OTLPEndpoint string        `mapstructure:"otlp_endpoint"`
}

// app is the state shared by the commands once the root command ran.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings settings
	logger   zerolog.Logger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	return newRoot(&app{v: viper.New()})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "momento",
		Short:         "Work with Momento caches, topics and tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.momento/config.yaml)")
	flags.String("profile", "laptop", "configuration preset: laptop, in-region, low-latency or lambda")
	flags.Duration("timeout", 0, "per call timeout, overrides the preset")
	flags.Duration("default-ttl", time.Minute, "TTL of items written without one")
	flags.StringP("cache", "c", "", "cache name")
	flags.String("api-key-env", "MOMENTO_API_KEY", "environment variable holding the API key")
	flags.String("endpoint-env", "MOMENTO_ENDPOINT", "environment variable holding the endpoint of a v2 API key")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.String("otlp-endpoint", "", "OTLP/HTTP traces URL; tracing is off when empty")

	for _, name := range []string{"profile", "timeout", "default-ttl", "cache", "api-key-env", "endpoint-env", "log-level", "log-format", "otlp-endpoint"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	root.AddCommand(
		newCacheCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newDeleteCmd(a),
		newTopicCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	if err := a.loadSettings(); err != nil {
		return err
	}
	a.logger = newLogger(a.settings.LogLevel, a.settings.LogFormat)

	shutdown, err := telemetry.Setup(ctx, "momento-cli", a.settings.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.shutdown = shutdown
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(context.WithoutCancel(ctx))
}

func (a *app) loadSettings() error {
	a.v.SetEnvPrefix("MOMENTO_CLI")
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".momento"))
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	return nil
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}

	if format == "json" {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

func (a *app) credentials() (momento.CredentialProvider, error) {
	if os.Getenv(a.settings.EndpointEnv) != "" {
		return momento.FromEnvVarV2(a.settings.APIKeyEnv, a.settings.EndpointEnv)
	}
	return momento.FromEnvVar(a.settings.APIKeyEnv)
}

func (a *app) configuration() (momento.Configuration, error) {
	var base momento.Configuration
	switch a.settings.Profile {
	case "laptop", "":
		base = momento.Laptop()
	case "in-region":
		base = momento.InRegion()
	case "low-latency":
		base = momento.LowLatency()
	case "lambda":
		base = momento.Lambda()
	default:
		return momento.Configuration{}, fmt.Errorf("unknown profile %q", a.settings.Profile)
	}

	cfg, err := momento.ConfigurationFromEnv(base)
	if err != nil {
		return momento.Configuration{}, err
	}
	if a.settings.Timeout > 0 {
		cfg = cfg.WithClientTimeout(a.settings.Timeout)
	}
	return cfg, nil
}

func (a *app) cacheName() (string, error) {
	if a.settings.Cache == "" {
		return "", fmt.Errorf("a cache name is required: use --cache or set cache in the config file")
	}
	return a.settings.Cache, nil
}

func (a *app) cacheClient() (*momento.CacheClient, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	cfg, err := a.configuration()
	if err != nil {
		return nil, err
	}
	return momento.NewCacheClient(creds, cfg, a.settings.DefaultTTL, momento.WithLogger(a.logger))
}

func (a *app) topicClient() (*momento.TopicClient, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	cfg, err := a.configuration()
	if err != nil {
		return nil, err
	}
	return momento.NewTopicClient(creds, cfg, momento.WithLogger(a.logger))
}

func (a *app) authClient() (*momento.AuthClient, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	cfg, err := a.configuration()
	if err != nil {
		return nil, err
	}
	return momento.NewAuthClient(creds, cfg, momento.WithLogger(a.logger))
}
