package console

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// Summary describes app as markdown: its entities with their typed fields
// and the relations between them.
func Summary(app ir.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", app.Name)
	if desc := strings.TrimSpace(app.Description); desc != "" {
		fmt.Fprintf(&b, "%s\n\n", desc)
	}

	b.WriteString("## Entities\n\n")
	if len(app.Entities) == 0 {
		b.WriteString("_none_\n\n")
	}
	for _, entity := range app.Entities {
		fmt.Fprintf(&b, "### %s\n\n", entity.Name)
		for _, field := range entity.Fields {
			fmt.Fprintf(&b, "- `%s` %s", field.Name, field.Type)
			if rules := field.Constraints.String(); rules != "" {
				fmt.Fprintf(&b, " (%s)", rules)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(app.Relations) > 0 {
		b.WriteString("## Relations\n\n")
		for _, rel := range app.Relations {
			fmt.Fprintf(&b, "- %s: **%s** (`%s`) --[%s]--> **%s** (`%s`)\n",
				rel.Name, rel.From, rel.FieldName, rel.Type, rel.To, rel.BackrefFieldName)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FileRows lists generated paths for Printer.Table.
func FileRows(paths []string, status string) [][]string {
	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		rows = append(rows, []string{path, status})
	}
	return rows
}
