package view

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

// Column widths of text types without a declared max_length.
const (
	emailLength = 320
	pathLength  = 1024
)

func buildField(entity ir.Entity, field ir.Field) FieldView {
	c := field.Constraints
	fv := FieldView{
		Name:       field.Name,
		GoName:     naming.Pascal(field.Name),
		Column:     sqlIdent(naming.Snake(field.Name)),
		JSONName:   naming.Snake(field.Name),
		Route:      naming.Kebab(field.Name),
		Label:      label(field.Name),
		Type:       string(field.Type),
		IsIdentity: field.IsIdentity(),
		IsFile:     field.IsFileLike(),
		IsImage:    field.Type == ir.FieldTypeImage,
		IsEnum:     field.IsEnum(),
		IsJSON:     field.Type == ir.FieldTypeJSON,
		Unique:     c.IsUnique(),
	}
	fv.Nullable = !fv.IsIdentity && (fv.IsFile || !c.IsNotNull())
	if fv.IsEnum {
		fv.EnumType = naming.Pascal(entity.Name) + naming.Pascal(field.Name)
	}
	if fv.IsFile {
		fv.MimeTypes = goStringList(c.MimeTypes)
	}

	base := goType(field.Type, fv.EnumType)
	switch {
	case fv.IsJSON:
		fv.ModelType = "JSON"
		fv.ReadType = "json.RawMessage"
		fv.ReadExpr = "json.RawMessage(m." + fv.GoName + ")"
		fv.WriteType = "json.RawMessage"
		fv.PatchType = "json.RawMessage"
		fv.PatchValue = "in." + fv.GoName
	case fv.IsFile:
		fv.ModelType = "*" + base
		fv.ReadType = "*FileInfo"
		fv.ReadExpr = "fileInfo(m." + fv.GoName + ")"
	default:
		fv.ModelType = pointerIf(fv.Nullable, base)
		fv.ReadType = fv.ModelType
		fv.ReadExpr = "m." + fv.GoName
		fv.WriteType = fv.ModelType
		fv.WritePointer = fv.Nullable
		fv.PatchType = "*" + base
		fv.PatchValue = "*in." + fv.GoName
	}
	if fv.IsEnum {
		fv.ModelType = strings.Replace(fv.ModelType, fv.EnumType, "enums."+fv.EnumType, 1)
		fv.ReadType = strings.Replace(fv.ReadType, fv.EnumType, "enums."+fv.EnumType, 1)
		fv.WriteType = strings.Replace(fv.WriteType, fv.EnumType, "enums."+fv.EnumType, 1)
		fv.PatchType = strings.Replace(fv.PatchType, fv.EnumType, "enums."+fv.EnumType, 1)
	}

	fv.ColumnDef = columnDef(fv, field)
	fv.Checks = checks(field, fv)
	fv.Constraints = c.String()
	fv.Rules = c
	return fv
}

// foreignKeyField is the column a OneToMany or OneToOne relation adds to its
// target entity.
func foreignKeyField(backref, table, key string, unique bool) FieldView {
	column := naming.Snake(backref) + "_id"
	fv := FieldView{
		Name:         naming.Camel(backref) + "ID",
		GoName:       naming.Pascal(backref) + "ID",
		Column:       column,
		JSONName:     column,
		Label:        label(backref) + " id",
		Type:         "ForeignKey",
		IsForeignKey: true,
		Nullable:     true,
		Unique:       unique,
		ModelType:    "*int64",
		ReadType:     "*int64",
		WriteType:    "*int64",
		WritePointer: true,
		PatchType:    "*int64",
		References:   table,
	}
	fv.ReadExpr = "m." + fv.GoName
	fv.PatchValue = "*in." + fv.GoName
	fv.ColumnDef = column + " INTEGER" + uniqueSQL(unique) + " REFERENCES " + table + "(" + key + ") ON DELETE SET NULL"
	return fv
}

// asForeignKey reuses a declared Integer column as a relation's foreign key.
func asForeignKey(fv FieldView, table, key string, unique bool) FieldView {
	fv.IsForeignKey = true
	fv.References = table
	fv.Unique = fv.Unique || unique
	onDelete := " ON DELETE SET NULL"
	if !fv.Nullable {
		onDelete = " ON DELETE CASCADE"
	}
	def := fv.Column + " INTEGER"
	if !fv.Nullable {
		def += " NOT NULL"
	}
	fv.ColumnDef = def + uniqueSQL(fv.Unique) + " REFERENCES " + table + "(" + key + ")" + onDelete
	return fv
}

func goType(t ir.FieldType, enumType string) string {
	switch t {
	case ir.FieldTypeID, ir.FieldTypeInteger:
		return "int64"
	case ir.FieldTypeFloat:
		return "float64"
	case ir.FieldTypeBoolean:
		return "bool"
	case ir.FieldTypeDate, ir.FieldTypeDateTime:
		return "time.Time"
	case ir.FieldTypeEnum:
		return enumType
	default:
		// Time, String, Text, Email, Image and File hold text.
		return "string"
	}
}

func sqlType(field ir.Field) string {
	c := field.Constraints
	switch field.Type {
	case ir.FieldTypeID, ir.FieldTypeInteger:
		return "INTEGER"
	case ir.FieldTypeFloat:
		return "REAL"
	case ir.FieldTypeBoolean:
		return "BOOLEAN"
	case ir.FieldTypeDate:
		return "DATE"
	case ir.FieldTypeTime:
		return "TIME"
	case ir.FieldTypeDateTime:
		return "DATETIME"
	case ir.FieldTypeString:
		if c.MaxLength != nil {
			return "VARCHAR(" + strconv.Itoa(*c.MaxLength) + ")"
		}
		return "TEXT"
	case ir.FieldTypeEmail:
		return "VARCHAR(" + strconv.Itoa(emailLength) + ")"
	case ir.FieldTypeEnum:
		longest := 1
		for _, value := range c.AllowedValues {
			if len(value) > longest {
				longest = len(value)
			}
		}
		return "VARCHAR(" + strconv.Itoa(longest) + ")"
	case ir.FieldTypeImage, ir.FieldTypeFile:
		return "VARCHAR(" + strconv.Itoa(pathLength) + ")"
	default:
		return "TEXT"
	}
}

func columnDef(fv FieldView, field ir.Field) string {
	if fv.IsIdentity {
		return fv.Column + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	def := fv.Column + " " + sqlType(field)
	if !fv.Nullable {
		def += " NOT NULL"
	}
	def += uniqueSQL(fv.Unique)
	if fv.IsEnum {
		quoted := make([]string, 0, len(field.Constraints.AllowedValues))
		for _, value := range field.Constraints.AllowedValues {
			quoted = append(quoted, sqlString(value))
		}
		def += " CHECK (" + fv.Column + " IN (" + strings.Join(quoted, ", ") + "))"
	}
	return def
}

func uniqueSQL(unique bool) string {
	if unique {
		return " UNIQUE"
	}
	return ""
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func pointerIf(pointer bool, t string) string {
	if pointer {
		return "*" + t
	}
	return t
}

func goStringList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, strconv.Quote(value))
	}
	return strings.Join(quoted, ", ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

