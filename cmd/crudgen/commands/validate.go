package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/view"
)

func newValidateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a description file without generating anything",
		Long: `Validate parses a JSON or YAML application description, resolves its
relations and prints the entities and the endpoints the backend would serve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			if e.cfg.File == "" {
				return errors.New("crudgen: --file is required")
			}
			data, err := afero.ReadFile(e.fs, e.cfg.File)
			if err != nil {
				return fmt.Errorf("crudgen: read %s: %w", e.cfg.File, err)
			}

			app, err := ir.ParseFile(e.cfg.File, data)
			if verr, ok := ir.AsValidationError(err); ok {
				e.printer.Header(e.cfg.File + " is invalid")
				rows := make([][]string, 0, len(verr.Issues))
				for _, issue := range verr.Issues {
					rows = append(rows, []string{issue.Path, issue.Code, issue.Message})
				}
				if err := e.printer.Table([]string{"Path", "Code", "Message"}, rows); err != nil {
					return err
				}
				return fmt.Errorf("crudgen: %d issues in %s", len(verr.Issues), e.cfg.File)
			}
			if err != nil {
				return err
			}
			v, err := view.Build(app)
			if err != nil {
				return err
			}

			e.printer.Success("%s is valid", e.cfg.File)
			if err := e.printer.Markdown(console.Summary(app)); err != nil {
				return err
			}
			rows := [][]string{}
			for _, ep := range v.Endpoints() {
				rows = append(rows, []string{ep.Method, ep.Path, ep.OperationID})
			}
			return e.printer.Table([]string{"Method", "Path", "Operation"}, rows)
		},
	}
	cmd.Flags().String(flagFile, "", "application description (JSON or YAML)")
	return cmd
}
