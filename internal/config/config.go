// Package config resolves the CLI configuration from, in increasing order of
// precedence: defaults, a .crudgen.yaml file, the environment (.env files
// included) and command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-crudgen/internal/logging"
	"github.com/goliatone/go-crudgen/pkg/apidoc"
	"github.com/goliatone/go-crudgen/pkg/provider"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "CRUDGEN"

// FileName is the config file looked up in the working directory, the home
// directory and ~/.config/crudgen.
const FileName = ".crudgen"

// HistoryFile is the prompt history kept in the home directory.
const HistoryFile = ".crudgen-prompt-history"

// Keys.
const (
	KeyOutputDir     = "output_dir"
	KeyProvider      = "provider"
	KeyFile          = "file"
	KeyLoggingLevel  = "logging_level"
	KeyAPIVersion    = "api_version"
	KeyHistoryFile   = "history_file"
	KeyOpenAIKey     = "openai_api_key"
	KeyOpenAIModel   = "openai_model"
	KeyOpenAIBaseURL = "openai_base_url"
	KeyGoogleKey     = "google_api_key"
	KeyGoogleModel   = "google_model"
	KeyGoogleBaseURL = "google_base_url"
)

// Config is the resolved configuration.
type Config struct {
	OutputDir    string
	Provider     string
	File         string
	LoggingLevel string
	APIVersion   string
	HistoryFile  string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GoogleKey     string
	GoogleModel   string
	GoogleBaseURL string

	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// Option configures Load.
type Option func(*loader)

// WithFS sets the filesystem config and .env files are read from.
func WithFS(fs afero.Fs) Option {
	return func(l *loader) {
		l.fs = fs
	}
}

// WithWorkDir sets the directory searched first for config and .env files.
func WithWorkDir(dir string) Option {
	return func(l *loader) {
		l.workDir = dir
	}
}

// WithHomeDir overrides the home directory.
func WithHomeDir(dir string) Option {
	return func(l *loader) {
		l.homeDir = dir
	}
}

// WithConfigFile reads an explicit config file instead of searching.
func WithConfigFile(path string) Option {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithFlag binds a command line flag to key. Flags only override when set.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(l *loader) {
		if flag != nil {
			l.flags[key] = flag
		}
	}
}

type loader struct {
	fs         afero.Fs
	workDir    string
	homeDir    string
	configFile string
	flags      map[string]*pflag.Flag
}

// Load resolves the configuration.
func Load(options ...Option) (*Config, error) {
	l := &loader{flags: map[string]*pflag.Flag{}}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}
	if l.workDir == "" {
		l.workDir = "."
	}
	if l.homeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("config: home directory: %w", err)
		}
		l.homeDir = home
	}

	if err := l.loadDotenv(filepath.Join(l.workDir, ".env"), false); err != nil {
		return nil, err
	}
	if err := l.loadDotenv(filepath.Join(l.workDir, ".env.local"), true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(l.fs)
	v.SetConfigType("yaml")
	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(l.workDir)
		v.AddConfigPath(l.homeDir)
		v.AddConfigPath(filepath.Join(l.homeDir, ".config", "crudgen"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// The provider keys keep their conventional unprefixed names.
	_ = v.BindEnv(KeyOpenAIKey, EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv(KeyGoogleKey, EnvPrefix+"_GOOGLE_API_KEY", "GOOGLE_API_KEY")

	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyProvider, provider.NameGoogle)
	v.SetDefault(KeyLoggingLevel, logging.DefaultLevel)
	v.SetDefault(KeyAPIVersion, apidoc.DefaultAPIVersion)
	v.SetDefault(KeyHistoryFile, filepath.Join(l.homeDir, HistoryFile))
	v.SetDefault(KeyOpenAIModel, provider.DefaultOpenAIModel)
	v.SetDefault(KeyGoogleModel, provider.DefaultGoogleModel)

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
	}

	cfg := &Config{
		OutputDir:     v.GetString(KeyOutputDir),
		Provider:      strings.ToLower(v.GetString(KeyProvider)),
		File:          v.GetString(KeyFile),
		LoggingLevel:  v.GetString(KeyLoggingLevel),
		APIVersion:    v.GetString(KeyAPIVersion),
		HistoryFile:   v.GetString(KeyHistoryFile),
		OpenAIKey:     v.GetString(KeyOpenAIKey),
		OpenAIModel:   v.GetString(KeyOpenAIModel),
		OpenAIBaseURL: v.GetString(KeyOpenAIBaseURL),
		GoogleKey:     v.GetString(KeyGoogleKey),
		GoogleModel:   v.GetString(KeyGoogleModel),
		GoogleBaseURL: v.GetString(KeyGoogleBaseURL),
		ConfigFile:    v.ConfigFileUsed(),
	}
	if _, err := logging.ParseLevel(cfg.LoggingLevel); err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyLoggingLevel, err)
	}
	return cfg, nil
}

// loadDotenv exports the variables of a .env file. Unless override is set,
// variables already present in the environment win.
func (l *loader) loadDotenv(path string, override bool) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists && !override {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
	}
	return nil
}

// ProviderConfig returns the settings the provider factories need.
func (c *Config) ProviderConfig(fs afero.Fs, logger *slog.Logger) provider.Config {
	return provider.Config{
		OpenAIKey:     c.OpenAIKey,
		OpenAIModel:   c.OpenAIModel,
		OpenAIBaseURL: c.OpenAIBaseURL,
		GoogleKey:     c.GoogleKey,
		GoogleModel:   c.GoogleModel,
		GoogleBaseURL: c.GoogleBaseURL,
		File:          c.File,
		FS:            fs,
		Logger:        logger,
	}
}
