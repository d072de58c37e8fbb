package view

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

func buildEnums(entity ir.Entity) []EnumView {
	var out []EnumView
	for _, field := range entity.Fields {
		if !field.IsEnum() {
			continue
		}
		typeName := naming.Pascal(entity.Name) + naming.Pascal(field.Name)
		enum := EnumView{
			TypeName: typeName,
			Entity:   entity.Name,
			Field:    field.Name,
			Summary:  strings.Join(field.Constraints.AllowedValues, ", "),
		}
		used := map[string]bool{}
		seen := map[string]bool{}
		for _, value := range field.Constraints.AllowedValues {
			if seen[value] {
				continue
			}
			seen[value] = true
			name := enumConst(typeName, value, used)
			enum.Values = append(enum.Values, EnumValueView{
				Const:   name,
				Value:   value,
				Literal: strconv.Quote(value),
			})
		}
		out = append(out, enum)
	}
	return out
}

// enumConst names the constant of one allowed value, keeping names unique
// within the type when values only differ by punctuation or case.
func enumConst(typeName, value string, used map[string]bool) string {
	suffix := naming.Pascal(value)
	if suffix == "" {
		suffix = "Value"
	}
	name := typeName + suffix
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}
