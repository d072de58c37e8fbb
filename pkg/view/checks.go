package view

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// checks derives the payload validation rules of a field. Conditions test the
// dereferenced value v and hold when the value is invalid.
func checks(field ir.Field, fv FieldView) []CheckView {
	if fv.IsIdentity || fv.IsFile || fv.IsJSON {
		return nil
	}
	c := field.Constraints
	var out []CheckView
	add := func(cond, message string) {
		out = append(out, CheckView{Cond: cond, Message: strconv.Quote(message)})
	}

	if field.Type.IsNumeric() {
		num := "v"
		if field.Type == ir.FieldTypeInteger {
			num = "float64(v)"
		}
		if c.GT != nil {
			add(num+" <= "+floatLiteral(*c.GT), "must be greater than "+formatNumber(*c.GT))
		}
		if c.GE != nil {
			add(num+" < "+floatLiteral(*c.GE), "must be greater than or equal to "+formatNumber(*c.GE))
		}
		if c.LT != nil {
			add(num+" >= "+floatLiteral(*c.LT), "must be less than "+formatNumber(*c.LT))
		}
		if c.LE != nil {
			add(num+" > "+floatLiteral(*c.LE), "must be less than or equal to "+formatNumber(*c.LE))
		}
		if c.MultipleOf != nil {
			add("!multipleOf("+num+", "+floatLiteral(*c.MultipleOf)+")", "must be a multiple of "+formatNumber(*c.MultipleOf))
		}
	}

	if field.Type.IsTextual() && !fv.IsEnum {
		if c.MinLength != nil {
			add("utf8.RuneCountInString(v) < "+strconv.Itoa(*c.MinLength),
				"must be at least "+strconv.Itoa(*c.MinLength)+" characters")
		}
		if c.MaxLength != nil {
			add("utf8.RuneCountInString(v) > "+strconv.Itoa(*c.MaxLength),
				"must be at most "+strconv.Itoa(*c.MaxLength)+" characters")
		}
		if len(c.AllowedValues) > 0 {
			add("!oneOf(v, "+goStringList(c.AllowedValues)+")",
				"must be one of "+strings.Join(c.AllowedValues, ", "))
		}
	}

	switch field.Type {
	case ir.FieldTypeEmail:
		add("!validEmail(v)", "must be a valid email address")
	case ir.FieldTypeEnum:
		add("!v.Valid()", "must be one of "+strings.Join(c.AllowedValues, ", "))
	case ir.FieldTypeTime:
		add("!validClock(v)", "must be a time of day (HH:MM or HH:MM:SS)")
	}
	return out
}

// floatLiteral renders f so it is a valid Go float64 constant expression.
func floatLiteral(f float64) string {
	s := formatNumber(f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
