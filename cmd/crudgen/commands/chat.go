package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/internal/logging"
	"github.com/goliatone/go-crudgen/internal/session"
	"github.com/goliatone/go-crudgen/pkg/provider"
)

func newChatCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Describe an app and refine it prompt by prompt",
		Long: `Start an interactive session. Every prompt is sent to the provider and
the backend in the output directory is regenerated from its answer.
A previous session in the same directory is resumed. Type /exit to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			logger, _ := logging.WithSession(e.logger)

			p, err := provider.DefaultRegistry().New(e.cfg.Provider, e.cfg.ProviderConfig(e.fs, logger))
			if err != nil {
				return err
			}
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			history, err := console.LoadHistory(e.fs, e.cfg.HistoryFile)
			if err != nil {
				e.printer.Warn("%v", err)
				history, _ = console.LoadHistory(e.fs, "")
			}

			s, err := session.New(p, orch,
				session.WithDriver(e.driver),
				session.WithPrinter(e.printer),
				session.WithHistory(history),
				session.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			logger.Info("session started", "provider", p.Name())
			return s.Run(cmd.Context())
		},
	}
	addProviderFlags(cmd)
	return cmd
}
