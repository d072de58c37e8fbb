// Package ir defines the canonical intermediate representation of an
// application description: entities with typed, constrained fields and the
// relations between them. Values are produced by Parse, which validates,
// canonicalizes and normalizes a raw document, and are treated as immutable
// afterwards.
package ir

import (
	"strconv"
	"strings"
)

// Constraints are optional per-field value rules. A nil pointer or slice
// means the constraint is absent.
type Constraints struct {
	Unique        *bool    `json:"unique,omitempty" yaml:"unique,omitempty"`
	NotNull       *bool    `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	GT            *float64 `json:"gt,omitempty" yaml:"gt,omitempty"`
	GE            *float64 `json:"ge,omitempty" yaml:"ge,omitempty"`
	LT            *float64 `json:"lt,omitempty" yaml:"lt,omitempty"`
	LE            *float64 `json:"le,omitempty" yaml:"le,omitempty"`
	MultipleOf    *float64 `json:"multiple_of,omitempty" yaml:"multiple_of,omitempty"`
	MinLength     *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength     *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	MimeTypes     []string `json:"mime_types,omitempty" yaml:"mime_types,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
}

// IsUnique reports whether the unique flag is set to true.
func (c Constraints) IsUnique() bool {
	return c.Unique != nil && *c.Unique
}

// IsNotNull reports whether the not_null flag is set to true.
func (c Constraints) IsNotNull() bool {
	return c.NotNull != nil && *c.NotNull
}

// Empty reports whether no constraint is set.
func (c Constraints) Empty() bool {
	return c.Unique == nil && c.NotNull == nil && c.GT == nil && c.GE == nil &&
		c.LT == nil && c.LE == nil && c.MultipleOf == nil && c.MinLength == nil &&
		c.MaxLength == nil && len(c.MimeTypes) == 0 && len(c.AllowedValues) == 0
}

// String lists the set constraints as key=value pairs in declaration order,
// for example "not_null=true, max_length=200".
func (c Constraints) String() string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+value)
	}
	if c.Unique != nil {
		add("unique", strconv.FormatBool(*c.Unique))
	}
	if c.NotNull != nil {
		add("not_null", strconv.FormatBool(*c.NotNull))
	}
	for _, bound := range []struct {
		key   string
		value *float64
	}{{"gt", c.GT}, {"ge", c.GE}, {"lt", c.LT}, {"le", c.LE}, {"multiple_of", c.MultipleOf}} {
		if bound.value != nil {
			add(bound.key, strconv.FormatFloat(*bound.value, 'g', -1, 64))
		}
	}
	if c.MinLength != nil {
		add("min_length", strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		add("max_length", strconv.Itoa(*c.MaxLength))
	}
	if len(c.MimeTypes) > 0 {
		add("mime_types", "["+strings.Join(c.MimeTypes, ", ")+"]")
	}
	if len(c.AllowedValues) > 0 {
		add("allowed_values", "["+strings.Join(c.AllowedValues, ", ")+"]")
	}
	return strings.Join(parts, ", ")
}

func (c Constraints) clone() Constraints {
	out := Constraints{
		Unique:     cloneBool(c.Unique),
		NotNull:    cloneBool(c.NotNull),
		GT:         cloneFloat(c.GT),
		GE:         cloneFloat(c.GE),
		LT:         cloneFloat(c.LT),
		LE:         cloneFloat(c.LE),
		MultipleOf: cloneFloat(c.MultipleOf),
		MinLength:  cloneInt(c.MinLength),
		MaxLength:  cloneInt(c.MaxLength),
	}
	if c.MimeTypes != nil {
		out.MimeTypes = append([]string(nil), c.MimeTypes...)
	}
	if c.AllowedValues != nil {
		out.AllowedValues = append([]string(nil), c.AllowedValues...)
	}
	return out
}

// Field is a named, typed entity attribute.
type Field struct {
	Name        string      `json:"name" yaml:"name"`
	Type        FieldType   `json:"type" yaml:"type"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
}

// IsIdentity reports whether the field is the entity's identity column.
func (f Field) IsIdentity() bool {
	return f.Type == FieldTypeID
}

// IsFileLike reports whether the field holds an uploaded image or file.
func (f Field) IsFileLike() bool {
	return f.Type.IsFileLike()
}

// IsEnum reports whether the field is an enumerated value.
func (f Field) IsEnum() bool {
	return f.Type == FieldTypeEnum
}

// Entity is a named, ordered collection of fields.
type Entity struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// IdentityField returns the first Id-typed field. No identity is ever
// synthesized.
func (e Entity) IdentityField() (Field, bool) {
	for _, field := range e.Fields {
		if field.IsIdentity() {
			return field, true
		}
	}
	return Field{}, false
}

// Field looks up a field by name.
func (e Entity) Field(name string) (Field, bool) {
	for _, field := range e.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Relation is a directional association between two entities. For OneToMany
// the target (To) is always the "many" side.
type Relation struct {
	Name             string       `json:"name" yaml:"name"`
	Type             RelationType `json:"type" yaml:"type"`
	From             string       `json:"from" yaml:"from"`
	To               string       `json:"to" yaml:"to"`
	FieldName        string       `json:"field_name" yaml:"field_name"`
	BackrefFieldName string       `json:"backref_field_name" yaml:"backref_field_name"`
}

// IsSelf reports whether the relation links an entity to itself.
func (r Relation) IsSelf() bool {
	return r.From == r.To
}

// Application is the IR root.
type Application struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Entities    []Entity   `json:"entities" yaml:"entities"`
	Relations   []Relation `json:"relations" yaml:"relations"`
}

// Entity looks up an entity by name.
func (a Application) Entity(name string) (Entity, bool) {
	for _, entity := range a.Entities {
		if entity.Name == name {
			return entity, true
		}
	}
	return Entity{}, false
}

// HasFileField reports whether any field of any entity is an Image or File.
func (a Application) HasFileField() bool {
	return a.anyField(Field.IsFileLike)
}

// HasEnumField reports whether any field of any entity is an Enum.
func (a Application) HasEnumField() bool {
	return a.anyField(Field.IsEnum)
}

func (a Application) anyField(match func(Field) bool) bool {
	for _, entity := range a.Entities {
		for _, field := range entity.Fields {
			if match(field) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the application.
func (a Application) Clone() Application {
	out := Application{
		Name:        a.Name,
		Description: a.Description,
		Entities:    make([]Entity, len(a.Entities)),
		Relations:   append([]Relation(nil), a.Relations...),
	}
	if out.Relations == nil {
		out.Relations = []Relation{}
	}
	for i, entity := range a.Entities {
		fields := make([]Field, len(entity.Fields))
		for j, field := range entity.Fields {
			fields[j] = Field{Name: field.Name, Type: field.Type, Constraints: field.Constraints.clone()}
		}
		out.Entities[i] = Entity{Name: entity.Name, Fields: fields}
	}
	return out
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
