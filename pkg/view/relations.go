package view

import (
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

func applyRelation(app *AppView, relation ir.Relation) error {
	from, ok := app.Entity(relation.From)
	if !ok {
		return &UnresolvedReferenceError{Relation: relation.Name, Entity: relation.From}
	}
	to, ok := app.Entity(relation.To)
	if !ok {
		return &UnresolvedReferenceError{Relation: relation.Name, Entity: relation.To}
	}

	switch relation.Type {
	case ir.ManyToMany:
		return applyManyToMany(app, relation, from, to)
	default:
		return applyForeignKey(relation, from, to)
	}
}

// applyForeignKey wires OneToMany and OneToOne relations: the target stores a
// foreign key to the source, the source lists its targets.
func applyForeignKey(relation ir.Relation, from, to *EntityView) error {
	if !from.HasIdentity {
		return &UnresolvedReferenceError{Relation: relation.Name, Entity: from.Name, Reason: ReasonNoIdentity}
	}
	single := relation.Type == ir.OneToOne

	fk, err := foreignKey(relation, to, from, single)
	if err != nil {
		return err
	}

	toRef := RefView{
		GoName:   naming.Pascal(relation.FieldName),
		JSONName: naming.Snake(relation.FieldName),
		Target:   to.GoName,
		Relation: relation.Name,
	}
	if single {
		from.ToOne = append(from.ToOne, toRef)
	} else {
		from.ToMany = append(from.ToMany, toRef)
	}
	to.ToOne = append(to.ToOne, RefView{
		GoName:   naming.Pascal(relation.BackrefFieldName),
		JSONName: naming.Snake(relation.BackrefFieldName),
		Target:   from.GoName,
		Relation: relation.Name,
	})

	from.Children = append(from.Children, ChildView{
		Route:       naming.Kebab(relation.FieldName),
		Handler:     "list" + naming.Pascal(relation.FieldName),
		Target:      to.GoName,
		TargetTable: to.Table,
		FKColumn:    fk.Column,
		FKGoName:    fk.GoName,
		Func:        "List" + to.PluralGoName + "By" + fk.GoName,
		Single:      single,
		Relation:    relation.Name,
	})
	return nil
}

// foreignKey adds (or reuses) the foreign key column on the target entity,
// referencing the identity of from.
func foreignKey(relation ir.Relation, to, from *EntityView, unique bool) (FieldView, error) {
	column := naming.Snake(relation.BackrefFieldName) + "_id"
	for i, field := range to.Fields {
		if field.Column != column {
			continue
		}
		if field.Type != string(ir.FieldTypeInteger) || field.IsForeignKey {
			return FieldView{}, &UnresolvedReferenceError{
				Relation: relation.Name,
				Entity:   to.Name,
				Reason:   "foreign key column " + column + " collides with field " + field.Name,
			}
		}
		to.Fields[i] = asForeignKey(field, from.Table, from.Identity.Column, unique)
		return to.Fields[i], nil
	}
	for _, existing := range to.foreignKeys {
		if existing.Column == column {
			return FieldView{}, &UnresolvedReferenceError{
				Relation: relation.Name,
				Entity:   to.Name,
				Reason:   "foreign key column " + column + " is already used by another relation",
			}
		}
	}
	fk := foreignKeyField(relation.BackrefFieldName, from.Table, from.Identity.Column, unique)
	to.foreignKeys = append(to.foreignKeys, fk)
	return fk, nil
}

func applyManyToMany(app *AppView, relation ir.Relation, from, to *EntityView) error {
	for _, side := range []*EntityView{from, to} {
		if !side.HasIdentity {
			return &UnresolvedReferenceError{Relation: relation.Name, Entity: side.Name, Reason: ReasonNoIdentity}
		}
	}

	goName := naming.Pascal(relation.Name)
	join := JoinTableView{
		Relation:     relation.Name,
		GoName:       goName,
		Table:        naming.Snake(relation.Name),
		Source:       from.GoName,
		Target:       to.GoName,
		SourceTable:  from.Table,
		TargetTable:  to.Table,
		SourceColumn: from.Snake + "_id",
		TargetColumn: to.Snake + "_id",
		SourceKey:    from.Identity.Column,
		TargetKey:    to.Identity.Column,
	}
	if from == to {
		join.SourceColumn, join.TargetColumn = "source_id", "target_id"
	}
	for _, entity := range app.Entities {
		if strings.Trim(entity.Table, "[]") == join.Table {
			join.Table += "_links"
			break
		}
	}
	join.Table = sqlIdent(join.Table)
	join.CreateTable = "CREATE TABLE IF NOT EXISTS " + join.Table + " (\n" +
		"\t" + join.SourceColumn + " INTEGER NOT NULL REFERENCES " + join.SourceTable + "(" + join.SourceKey + ") ON DELETE CASCADE,\n" +
		"\t" + join.TargetColumn + " INTEGER NOT NULL REFERENCES " + join.TargetTable + "(" + join.TargetKey + ") ON DELETE CASCADE,\n" +
		"\tPRIMARY KEY (" + join.SourceColumn + ", " + join.TargetColumn + ")\n)"
	join.CreateTableLiteral = goRawString(join.CreateTable)
	app.JoinTables = append(app.JoinTables, join)

	from.ToMany = append(from.ToMany, RefView{
		GoName:   naming.Pascal(relation.FieldName),
		JSONName: naming.Snake(relation.FieldName),
		Target:   to.GoName,
		Relation: relation.Name,
	})
	to.ToMany = append(to.ToMany, RefView{
		GoName:   naming.Pascal(relation.BackrefFieldName),
		JSONName: naming.Snake(relation.BackrefFieldName),
		Target:   from.GoName,
		Relation: relation.Name,
	})

	from.Links = append(from.Links, LinkView{
		Route:         naming.Kebab(relation.FieldName),
		ListHandler:   "list" + naming.Pascal(relation.FieldName),
		LinkHandler:   "link" + naming.Pascal(relation.FieldName),
		UnlinkHandler: "unlink" + naming.Pascal(relation.FieldName),
		Target:        to.GoName,
		ListFunc:      "List" + goName + "Targets",
		LinkFunc:      "Link" + goName,
		UnlinkFunc:    "Unlink" + goName,
		Relation:      relation.Name,
	})
	to.Links = append(to.Links, LinkView{
		Route:         naming.Kebab(relation.BackrefFieldName),
		ListHandler:   "list" + naming.Pascal(relation.BackrefFieldName),
		LinkHandler:   "link" + naming.Pascal(relation.BackrefFieldName),
		UnlinkHandler: "unlink" + naming.Pascal(relation.BackrefFieldName),
		Target:        from.GoName,
		ListFunc:      "List" + goName + "Sources",
		LinkFunc:      "Link" + goName,
		UnlinkFunc:    "Unlink" + goName,
		Reverse:       true,
		Relation:      relation.Name,
	})
	return nil
}
