// Package commands implements the crudgen CLI.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/config"
	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/internal/logging"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
	"github.com/goliatone/go-crudgen/pkg/provider"
)

// Flag names.
const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagOutputDir = "output-dir"
	flagAI        = "ai"
	flagFile      = "file"
	flagWatch     = "watch"
	flagYes       = "yes"
	flagAPI       = "api-version"
)

// Option configures the command tree. Tests use it to swap the filesystem,
// the terminal and the prompt driver.
type Option func(*env)

// WithFS sets the filesystem for descriptions, config and output.
func WithFS(fs afero.Fs) Option {
	return func(e *env) {
		e.fs = fs
	}
}

// WithIO sets the output writers.
func WithIO(out, errOut io.Writer) Option {
	return func(e *env) {
		e.out, e.errOut = out, errOut
	}
}

// WithDriver sets the prompt driver of the interactive session.
func WithDriver(driver console.PromptDriver) Option {
	return func(e *env) {
		e.driver = driver
	}
}

// WithConfigOptions appends options to every config.Load call.
func WithConfigOptions(options ...config.Option) Option {
	return func(e *env) {
		e.configOptions = append(e.configOptions, options...)
	}
}

// WithPlain disables spinners and styling.
func WithPlain() Option {
	return func(e *env) {
		e.plain = true
	}
}

// env is the state shared by the commands of one invocation.
type env struct {
	fs            afero.Fs
	out           io.Writer
	errOut        io.Writer
	driver        console.PromptDriver
	configOptions []config.Option
	plain         bool
	version       string

	cfg     *config.Config
	logger  *slog.Logger
	printer *console.Printer
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the interactive session.
func NewRootCommand(version string, options ...Option) *cobra.Command {
	e := &env{fs: afero.NewOsFs(), out: os.Stdout, errOut: os.Stderr, version: version}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	chat := newChatCommand(e)
	root := &cobra.Command{
		Use:           "crudgen",
		Short:         "Generate CRUD backends from a description",
		Long:          "crudgen turns an application description into a runnable Go CRUD backend.\nRun it without a command to describe your app interactively.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          chat.RunE,
	}
	root.SetOut(e.out)
	root.SetErr(e.errOut)

	persistent := root.PersistentFlags()
	persistent.String(flagConfig, "", "config file (default .crudgen.yaml in the working or home directory)")
	persistent.String(flagLogLevel, logging.DefaultLevel, "logging level: debug, info, warn or error")
	persistent.StringP(flagOutputDir, "o", ".", "directory the backend is generated into")
	addProviderFlags(root)

	root.AddCommand(
		chat,
		newGenerateCommand(e),
		newValidateCommand(e),
		newCleanCommand(e),
	)
	return root
}

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagAI, provider.NameGoogle, "provider answering prompts: google, openai or file")
	cmd.Flags().String(flagFile, "", "application description read by the file provider")
}

// setup resolves the configuration of cmd. Every command calls it first.
func (e *env) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	options := []config.Option{
		config.WithFS(e.fs),
		config.WithFlag(config.KeyOutputDir, flags.Lookup(flagOutputDir)),
		config.WithFlag(config.KeyLoggingLevel, flags.Lookup(flagLogLevel)),
		config.WithFlag(config.KeyProvider, flags.Lookup(flagAI)),
		config.WithFlag(config.KeyFile, flags.Lookup(flagFile)),
		config.WithFlag(config.KeyAPIVersion, flags.Lookup(flagAPI)),
	}
	if path, _ := flags.GetString(flagConfig); path != "" {
		options = append(options, config.WithConfigFile(path))
	}
	options = append(options, e.configOptions...)

	cfg, err := config.Load(options...)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logging.New(cfg.LoggingLevel, e.errOut)
	e.printer = console.NewPrinter(console.WithWriters(e.out, e.errOut), console.WithInteractive(!e.plain))
	e.logger.Debug("configuration loaded", "version", e.version, "file", cfg.ConfigFile, "provider", cfg.Provider, "output_dir", cfg.OutputDir)
	return nil
}

func (e *env) orchestrator() (*orchestrator.Orchestrator, error) {
	orch, err := orchestrator.New(
		orchestrator.WithFS(e.fs),
		orchestrator.WithOutputDir(e.cfg.OutputDir),
		orchestrator.WithLogger(e.logger),
		orchestrator.WithVersion(e.cfg.APIVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("crudgen: %w", err)
	}
	return orch, nil
}
