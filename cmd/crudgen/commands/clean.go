package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
)

func newCleanCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove a generated backend",
		Long: `Clean removes the files and directories crudgen generates from the output
directory. Anything else in it is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool(flagYes); !yes {
				ok, err := e.prompter().Confirm(cmd.Context(), console.ConfirmConfig{
					Message: "Remove the generated backend in " + e.cfg.OutputDir + "?",
				})
				if errors.Is(err, console.ErrAborted) || (err == nil && !ok) {
					e.printer.Info("Nothing removed")
					return nil
				}
				if err != nil {
					return err
				}
			}
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			return e.clean(cmd.Context(), orch)
		},
	}
	cmd.Flags().BoolP(flagYes, "y", false, "do not ask for confirmation")
	return cmd
}

func (e *env) clean(ctx context.Context, orch *orchestrator.Orchestrator) error {
	if err := orch.Clean(ctx); err != nil {
		return err
	}
	e.printer.Success("Cleaned %s", orch.OutputDir())
	return nil
}

func (e *env) prompter() console.PromptDriver {
	if e.driver != nil {
		return e.driver
	}
	return console.NewSurveyDriver()
}
