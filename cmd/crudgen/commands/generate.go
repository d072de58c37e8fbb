package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/internal/watch"
	"github.com/goliatone/go-crudgen/pkg/apidoc"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
	"github.com/goliatone/go-crudgen/pkg/provider"
)

func newGenerateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a backend from a description file",
		Long: `Generate reads a JSON or YAML application description and writes the
backend into the output directory, replacing a previous generation.
With --watch the backend is regenerated whenever the file changes.`,
		Example: "  crudgen generate --file app.yaml -o ./backend\n  crudgen generate --file app.json --watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			if e.cfg.File == "" {
				return errors.New("crudgen: --file is required")
			}
			p, err := provider.NewFile(e.cfg.ProviderConfig(e.fs, e.logger))
			if err != nil {
				return err
			}
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}

			run := func(ctx context.Context) error {
				return e.generate(ctx, p, orch)
			}
			if watching, _ := cmd.Flags().GetBool(flagWatch); watching {
				w, err := watch.New(e.cfg.File, run, watch.WithLogger(e.logger))
				if err != nil {
					return err
				}
				e.printer.Info("Watching %s, press Ctrl+C to stop", e.cfg.File)
				return w.Run(cmd.Context())
			}
			return run(cmd.Context())
		},
	}
	cmd.Flags().String(flagFile, "", "application description (JSON or YAML)")
	cmd.Flags().Bool(flagWatch, false, "regenerate when the description changes")
	cmd.Flags().String(flagAPI, apidoc.DefaultAPIVersion, "version written into the API description")
	return cmd
}

// generate runs one pass. Failures are printed before they are returned.
func (e *env) generate(ctx context.Context, p provider.Provider, orch *orchestrator.Orchestrator) error {
	spin := e.printer.Spin("Generating backend from " + e.cfg.File)
	app, err := p.Query(ctx, "")
	if err != nil {
		spin.Fail(err)
		return err
	}
	report, err := orch.Regenerate(ctx, app)
	if err != nil {
		spin.Fail(err)
		return err
	}
	spin.Success("Generated %s (%s) in %s", app.Name, report.Module, report.OutputDir)
	if len(report.Skipped) > 0 {
		e.printer.Info("Not needed: %v", report.Skipped)
	}
	return e.printer.Table([]string{"File", "Status"}, console.FileRows(report.Written, "written"))
}
