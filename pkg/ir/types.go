package ir

import (
	"strings"
)

// FieldType enumerates the attribute kinds an entity field may declare.
type FieldType string

const (
	FieldTypeID       FieldType = "Id"
	FieldTypeInteger  FieldType = "Integer"
	FieldTypeFloat    FieldType = "Float"
	FieldTypeBoolean  FieldType = "Boolean"
	FieldTypeDate     FieldType = "Date"
	FieldTypeTime     FieldType = "Time"
	FieldTypeDateTime FieldType = "DateTime"
	FieldTypeString   FieldType = "String"
	FieldTypeText     FieldType = "Text"
	FieldTypeEnum     FieldType = "Enum"
	FieldTypeEmail    FieldType = "Email"
	FieldTypeJSON     FieldType = "Json"
	FieldTypeImage    FieldType = "Image"
	FieldTypeFile     FieldType = "File"
)

// FieldTypes lists every field type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeID, FieldTypeInteger, FieldTypeFloat, FieldTypeBoolean,
	FieldTypeDate, FieldTypeTime, FieldTypeDateTime, FieldTypeString,
	FieldTypeText, FieldTypeEnum, FieldTypeEmail, FieldTypeJSON,
	FieldTypeImage, FieldTypeFile,
}

var fieldTypeLookup = func() map[string]FieldType {
	out := make(map[string]FieldType, len(FieldTypes))
	for _, t := range FieldTypes {
		out[strings.ToLower(string(t))] = t
	}
	return out
}()

// ParseFieldType resolves a type token case-insensitively. Tokens outside the
// enumeration are rejected; there is no nearest-match fallback.
func ParseFieldType(token string) (FieldType, bool) {
	t, ok := fieldTypeLookup[strings.ToLower(strings.TrimSpace(token))]
	return t, ok
}

// IsFileLike reports whether values of this type are uploaded files.
func (t FieldType) IsFileLike() bool {
	return t == FieldTypeImage || t == FieldTypeFile
}

// IsNumeric reports whether numeric bound constraints apply to the type.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeInteger || t == FieldTypeFloat
}

// IsTextual reports whether length constraints apply to the type.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeString, FieldTypeText, FieldTypeEmail, FieldTypeEnum:
		return true
	default:
		return false
	}
}

// RelationType is a canonical relation cardinality. ManyToOne is accepted on
// input only and never stored.
type RelationType string

const (
	OneToOne   RelationType = "OneToOne"
	OneToMany  RelationType = "OneToMany"
	ManyToMany RelationType = "ManyToMany"

	// manyToOne is the input-only cardinality rewritten during parsing.
	manyToOne RelationType = "ManyToOne"
)

// RelationTypes lists the canonical cardinalities.
var RelationTypes = []RelationType{OneToOne, OneToMany, ManyToMany}

var relationTypeLookup = map[string]RelationType{
	"onetoone":   OneToOne,
	"onetomany":  OneToMany,
	"manytomany": ManyToMany,
	"manytoone":  manyToOne,
}

// parseRelationToken resolves a cardinality token ignoring case and the
// separators "_", "-" and " ", so OneToMany, ONE_TO_MANY and one-to-many are
// the same token.
func parseRelationToken(token string) (RelationType, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(token)))
	t, ok := relationTypeLookup[key]
	return t, ok
}

// ParseRelationType resolves a canonical cardinality. ManyToOne is reported
// as unknown because it only exists on input; use Parse to canonicalize it.
func ParseRelationType(token string) (RelationType, bool) {
	t, ok := parseRelationToken(token)
	if !ok || t == manyToOne {
		return "", false
	}
	return t, true
}
