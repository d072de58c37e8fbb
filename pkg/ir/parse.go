package ir

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-crudgen/pkg/naming"
)

// Parse decodes a JSON application document, validates its structure,
// canonicalizes ManyToOne relations and returns the normalized IR. On failure
// the returned error is a *ValidationError and the Application is zero.
func Parse(data []byte) (Application, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return Application{}, err
	}
	return FromDocument(raw)
}

// FromDocument validates an already decoded document (maps, slices, strings,
// numbers, booleans and nil, as produced by encoding/json style decoders).
func FromDocument(raw any) (Application, error) {
	p := &parser{}
	app := p.application(raw)
	if len(p.issues) > 0 {
		return Application{}, &ValidationError{Issues: p.issues}
	}
	return Normalize(app), nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Issues: []Issue{{
			Code:    CodeParseError,
			Message: err.Error(),
		}}}
	}
	if dec.More() {
		return nil, &ValidationError{Issues: []Issue{{
			Code:    CodeParseError,
			Message: "unexpected data after the document",
		}}}
	}
	return raw, nil
}

type parser struct {
	issues []Issue
}

func (p *parser) add(path, code, format string, args ...any) {
	p.issues = append(p.issues, Issue{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
}

func pointer(base string, tokens ...any) string {
	var b strings.Builder
	b.WriteString(base)
	for _, token := range tokens {
		b.WriteByte('/')
		switch v := token.(type) {
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			// RFC 6901 escaping.
			b.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(v))
		}
	}
	return b.String()
}

func (p *parser) object(path string, raw any) (map[string]any, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		p.add(path, CodeInvalidType, "expected object, got %s", kindOf(raw))
		return nil, false
	}
	return obj, true
}

// requiredString reads a non-empty string member.
func (p *parser) requiredString(obj map[string]any, base, key string) (string, bool) {
	path := pointer(base, key)
	value, present := obj[key]
	if !present || value == nil {
		p.add(path, CodeRequired, "%s is required", key)
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		p.add(path, CodeInvalidType, "expected string, got %s", kindOf(value))
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		p.add(path, CodeRequired, "%s must not be empty", key)
		return "", false
	}
	return strings.TrimSpace(s), true
}

// identPattern is the shape of entity, field and relation names.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// identifier reads a required name member and checks its shape.
func (p *parser) identifier(obj map[string]any, base, key string) (string, bool) {
	name, ok := p.requiredString(obj, base, key)
	if !ok {
		return "", false
	}
	if !identPattern.MatchString(name) {
		p.add(pointer(base, key), CodeInvalidValue,
			"%q is not a valid name: use a letter followed by letters, digits or underscores", name)
		return "", false
	}
	return name, true
}

func (p *parser) optionalString(obj map[string]any, base, key string) string {
	value, present := obj[key]
	if !present || value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		p.add(pointer(base, key), CodeInvalidType, "expected string, got %s", kindOf(value))
		return ""
	}
	return s
}

// requiredArray reads an array member that must be present. Empty arrays
// are accepted.
func (p *parser) requiredArray(obj map[string]any, base, key string) ([]any, bool) {
	path := pointer(base, key)
	value, present := obj[key]
	if !present || value == nil {
		p.add(path, CodeRequired, "%s is required", key)
		return nil, false
	}
	items, ok := value.([]any)
	if !ok {
		p.add(path, CodeInvalidType, "expected array, got %s", kindOf(value))
		return nil, false
	}
	return items, true
}

func (p *parser) application(raw any) Application {
	obj, ok := p.object("", raw)
	if !ok {
		return Application{}
	}

	app := Application{Relations: []Relation{}}
	app.Name, _ = p.requiredString(obj, "", "name")
	app.Description = p.optionalString(obj, "", "description")

	if items, ok := p.requiredArray(obj, "", "entities"); ok {
		seen := map[string]int{}
		tables := map[string]int{}
		for i, item := range items {
			path := pointer("", "entities", i)
			entity, ok := p.entity(path, item)
			if !ok {
				continue
			}
			key := naming.Snake(entity.Name)
			if first, dup := seen[key]; dup {
				p.add(pointer(path, "name"), CodeDuplicate, "entity %q collides with /entities/%d", entity.Name, first)
				continue
			}
			table := naming.Plural(key)
			if first, dup := tables[table]; dup {
				p.add(pointer(path, "name"), CodeDuplicate, "entity %q shares the plural %q with /entities/%d", entity.Name, table, first)
				continue
			}
			seen[key] = i
			tables[table] = i
			app.Entities = append(app.Entities, entity)
		}
	}

	if value, present := obj["relations"]; present && value != nil {
		items, ok := value.([]any)
		if !ok {
			p.add("/relations", CodeInvalidType, "expected array, got %s", kindOf(value))
		} else {
			p.relations(&app, items)
		}
	}
	return app
}

func (p *parser) entity(path string, raw any) (Entity, bool) {
	obj, ok := p.object(path, raw)
	if !ok {
		return Entity{}, false
	}
	name, nameOK := p.identifier(obj, path, "name")
	items, fieldsOK := p.requiredArray(obj, path, "fields")
	if !nameOK || !fieldsOK {
		return Entity{}, false
	}

	entity := Entity{Name: name}
	seen := map[string]int{}
	identity := -1
	for i, item := range items {
		fieldPath := pointer(path, "fields", i)
		field, ok := p.field(fieldPath, item)
		if !ok {
			continue
		}
		key := naming.Snake(field.Name)
		if first, dup := seen[key]; dup {
			p.add(pointer(fieldPath, "name"), CodeDuplicate, "field %q collides with %s", field.Name, pointer(path, "fields", first))
			continue
		}
		if field.IsIdentity() {
			if identity >= 0 {
				p.add(pointer(fieldPath, "type"), CodeDuplicate, "entity %q already has an Id field at %s", name, pointer(path, "fields", identity))
				continue
			}
			identity = i
		}
		seen[key] = i
		entity.Fields = append(entity.Fields, field)
	}
	return entity, true
}

func (p *parser) field(path string, raw any) (Field, bool) {
	obj, ok := p.object(path, raw)
	if !ok {
		return Field{}, false
	}
	name, nameOK := p.identifier(obj, path, "name")
	token, typeOK := p.requiredString(obj, path, "type")
	var fieldType FieldType
	if typeOK {
		fieldType, typeOK = ParseFieldType(token)
		if !typeOK {
			p.add(pointer(path, "type"), CodeInvalidEnum, "unknown field type %q", token)
		}
	}

	var constraints Constraints
	constraintsOK := true
	if value, present := obj["constraints"]; present && value != nil {
		constraints, constraintsOK = p.constraints(pointer(path, "constraints"), value)
	}
	if !nameOK || !typeOK || !constraintsOK {
		return Field{}, false
	}
	if fieldType == FieldTypeEnum && len(constraints.AllowedValues) == 0 {
		p.add(pointer(path, "constraints", "allowed_values"), CodeRequired, "enum field %q needs allowed_values", name)
		return Field{}, false
	}
	return Field{Name: name, Type: fieldType, Constraints: constraints}, true
}

var constraintKeys = map[string]bool{
	"unique": true, "not_null": true, "gt": true, "ge": true, "lt": true,
	"le": true, "multiple_of": true, "min_length": true, "max_length": true,
	"mime_types": true, "allowed_values": true,
}

func (p *parser) constraints(path string, raw any) (Constraints, bool) {
	obj, ok := p.object(path, raw)
	if !ok {
		return Constraints{}, false
	}
	before := len(p.issues)

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !constraintKeys[key] {
			p.add(pointer(path, key), CodeUnknownKey, "unknown constraint %q", key)
		}
	}

	c := Constraints{
		Unique:        p.boolean(obj, path, "unique"),
		NotNull:       p.boolean(obj, path, "not_null"),
		GT:            p.number(obj, path, "gt"),
		GE:            p.number(obj, path, "ge"),
		LT:            p.number(obj, path, "lt"),
		LE:            p.number(obj, path, "le"),
		MultipleOf:    p.number(obj, path, "multiple_of"),
		MinLength:     p.length(obj, path, "min_length"),
		MaxLength:     p.length(obj, path, "max_length"),
		MimeTypes:     p.stringList(obj, path, "mime_types"),
		AllowedValues: p.stringList(obj, path, "allowed_values"),
	}

	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		p.add(pointer(path, "min_length"), CodeInvalidValue, "min_length %d exceeds max_length %d", *c.MinLength, *c.MaxLength)
	}
	if c.MultipleOf != nil && *c.MultipleOf <= 0 {
		p.add(pointer(path, "multiple_of"), CodeInvalidValue, "multiple_of must be greater than zero")
	}
	return c, len(p.issues) == before
}

func (p *parser) boolean(obj map[string]any, base, key string) *bool {
	value, present := obj[key]
	if !present || value == nil {
		return nil
	}
	b, ok := value.(bool)
	if !ok {
		p.add(pointer(base, key), CodeInvalidType, "expected boolean, got %s", kindOf(value))
		return nil
	}
	return &b
}

func (p *parser) number(obj map[string]any, base, key string) *float64 {
	value, present := obj[key]
	if !present || value == nil {
		return nil
	}
	f, ok := toFloat(value)
	if !ok {
		p.add(pointer(base, key), CodeInvalidType, "expected number, got %s", kindOf(value))
		return nil
	}
	return &f
}

func (p *parser) length(obj map[string]any, base, key string) *int {
	value, present := obj[key]
	if !present || value == nil {
		return nil
	}
	f, ok := toFloat(value)
	if !ok || f != math.Trunc(f) {
		p.add(pointer(base, key), CodeInvalidType, "expected integer, got %s", kindOf(value))
		return nil
	}
	if f < 0 {
		p.add(pointer(base, key), CodeInvalidValue, "%s must not be negative", key)
		return nil
	}
	n := int(f)
	return &n
}

func (p *parser) stringList(obj map[string]any, base, key string) []string {
	value, present := obj[key]
	if !present || value == nil {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		p.add(pointer(base, key), CodeInvalidType, "expected array, got %s", kindOf(value))
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			p.add(pointer(base, key, i), CodeInvalidType, "expected string, got %s", kindOf(item))
			continue
		}
		out = append(out, s)
	}
	return out
}

// relationKeys maps each logical relation member to the document key it is
// read from. ManyToOne documents read every endpoint from the opposite key,
// which is the atomic endpoint and field-name swap.
var (
	directKeys = map[string]string{
		"from": "from", "to": "to",
		"field_name": "field_name", "backref_field_name": "backref_field_name",
	}
	swappedKeys = map[string]string{
		"from": "to", "to": "from",
		"field_name": "backref_field_name", "backref_field_name": "field_name",
	}
)

type parsedRelation struct {
	index    int
	keys     map[string]string
	relation Relation
}

func (p *parser) relations(app *Application, items []any) {
	seen := map[string]int{}
	var accepted []parsedRelation
	for i, item := range items {
		path := pointer("", "relations", i)
		relation, keys, ok := p.relation(path, item)
		if !ok {
			continue
		}
		key := naming.Snake(relation.Name)
		if first, dup := seen[key]; dup {
			p.add(pointer(path, "name"), CodeDuplicate, "relation %q collides with /relations/%d", relation.Name, first)
			continue
		}
		seen[key] = i
		accepted = append(accepted, parsedRelation{index: i, keys: keys, relation: relation})
		app.Relations = append(app.Relations, relation)
	}
	p.relationFields(*app, accepted)
}

func (p *parser) relation(path string, raw any) (Relation, map[string]string, bool) {
	obj, ok := p.object(path, raw)
	if !ok {
		return Relation{}, nil, false
	}
	name, nameOK := p.identifier(obj, path, "name")

	keys := directKeys
	token, typeOK := p.requiredString(obj, path, "type")
	var relType RelationType
	if typeOK {
		relType, typeOK = parseRelationToken(token)
		if !typeOK {
			p.add(pointer(path, "type"), CodeInvalidEnum, "unknown relation type %q", token)
		}
	}
	if relType == manyToOne {
		relType = OneToMany
		keys = swappedKeys
	}

	from, fromOK := p.identifier(obj, path, keys["from"])
	to, toOK := p.identifier(obj, path, keys["to"])
	fieldName, fieldOK := p.identifier(obj, path, keys["field_name"])
	backref, backrefOK := p.identifier(obj, path, keys["backref_field_name"])
	if !nameOK || !typeOK || !fromOK || !toOK || !fieldOK || !backrefOK {
		return Relation{}, nil, false
	}

	relation := Relation{
		Name:             name,
		Type:             relType,
		From:             from,
		To:               to,
		FieldName:        fieldName,
		BackrefFieldName: backref,
	}
	if naming.Snake(from) == naming.Snake(to) && naming.Snake(fieldName) == naming.Snake(backref) {
		p.add(pointer(path, keys["backref_field_name"]), CodeDuplicate,
			"self relation %q uses %q on both sides", name, fieldName)
		return Relation{}, nil, false
	}
	return relation, keys, true
}

// relationFields rejects relation endpoint names that collide with a declared
// field or with another relation's endpoint on the same entity. Relations that
// name an undeclared entity are left for view building to report.
func (p *parser) relationFields(app Application, relations []parsedRelation) {
	type owner struct{ entity, member string }
	taken := map[owner]string{}
	for _, entity := range app.Entities {
		for _, field := range entity.Fields {
			taken[owner{naming.Snake(entity.Name), naming.Snake(field.Name)}] = "field " + field.Name
		}
	}

	for _, parsed := range relations {
		relation := parsed.relation
		sides := []struct {
			entity, member, key string
		}{
			{relation.From, relation.FieldName, parsed.keys["field_name"]},
			{relation.To, relation.BackrefFieldName, parsed.keys["backref_field_name"]},
		}
		for _, side := range sides {
			k := owner{naming.Snake(side.entity), naming.Snake(side.member)}
			if prior, clash := taken[k]; clash {
				p.add(pointer("", "relations", parsed.index, side.key), CodeDuplicate,
					"%q on %s collides with %s", side.member, side.entity, prior)
				continue
			}
			taken[k] = "relation " + relation.Name
		}
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
