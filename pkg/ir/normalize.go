package ir

import "github.com/goliatone/go-crudgen/pkg/naming"

// Normalize returns a copy of app with canonical identifier casing: entity
// names, relation names and relation endpoints start uppercase, field names
// and relation field names start lowercase. The input is never modified and
// Normalize(Normalize(a)) equals Normalize(a).
func Normalize(app Application) Application {
	out := app.Clone()
	for i := range out.Entities {
		entity := &out.Entities[i]
		entity.Name = naming.UpperFirst(entity.Name)
		for j := range entity.Fields {
			entity.Fields[j].Name = naming.LowerFirst(entity.Fields[j].Name)
		}
	}
	for i := range out.Relations {
		relation := &out.Relations[i]
		relation.Name = naming.UpperFirst(relation.Name)
		relation.From = naming.UpperFirst(relation.From)
		relation.To = naming.UpperFirst(relation.To)
		relation.FieldName = naming.LowerFirst(relation.FieldName)
		relation.BackrefFieldName = naming.LowerFirst(relation.BackrefFieldName)
	}
	return out
}
