// Package apidoc builds the OpenAPI 3 description served by every generated
// backend at /openapi.json. The document is derived from the same view the
// templates render, so paths, operation ids and payload shapes match the
// generated handlers.
package apidoc

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-crudgen/pkg/view"
)

// Version of the OpenAPI specification the document conforms to.
const Version = "3.0.3"

// DefaultAPIVersion is used when Build receives an empty version.
const DefaultAPIVersion = "0.1.0"

// Shared component names.
const (
	schemaFieldError = "FieldError"
	schemaValidation = "ValidationError"
	schemaError      = "Error"
	schemaFileInfo   = "FileInfo"
)

// clockPattern matches the HH:MM[:SS] values accepted by Time fields.
const clockPattern = `^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`

// Build returns the OpenAPI document of app.
func Build(app *view.AppView, version string) *openapi3.T {
	if strings.TrimSpace(version) == "" {
		version = DefaultAPIVersion
	}

	info := &openapi3.Info{Title: app.Title, Version: version}
	if app.Description != "" {
		info.Description = app.Description
	} else if app.Summary != "" {
		info.Description = app.Summary
	}

	schemas := sharedSchemas()
	paths := openapi3.NewPaths()
	var tags openapi3.Tags
	for _, entity := range app.Entities {
		schemas[entity.GoName+"Read"] = openapi3.NewSchemaRef("", readSchema(entity))
		schemas[entity.GoName+"Create"] = openapi3.NewSchemaRef("", createSchema(entity))
		schemas[entity.GoName+"Update"] = openapi3.NewSchemaRef("", updateSchema(entity))
		tags = append(tags, &openapi3.Tag{
			Name:        entity.GoName,
			Description: "Operations on " + entity.Table,
		})

		for _, ep := range entity.Endpoints {
			item := paths.Value(ep.Path)
			if item == nil {
				item = &openapi3.PathItem{}
				paths.Set(ep.Path, item)
			}
			item.SetOperation(strings.ToUpper(ep.Method), operation(ep, entity))
		}
	}

	return &openapi3.T{
		OpenAPI:    Version,
		Info:       info,
		Paths:      paths,
		Components: &openapi3.Components{Schemas: schemas},
		Tags:       tags,
	}
}

// Marshal renders the document of app as indented JSON.
func Marshal(app *view.AppView, version string) ([]byte, error) {
	data, err := json.MarshalIndent(Build(app, version), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func operation(ep view.EndpointView, entity *view.EntityView) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = ep.OperationID
	op.Summary = ep.Summary
	op.Tags = []string{ep.Tag}

	if strings.Contains(ep.Path, "{id}") {
		op.AddParameter(pathParam("id", entity.Label+" identifier"))
	}
	if strings.Contains(ep.Path, "{targetId}") {
		op.AddParameter(pathParam("targetId", "Linked record identifier"))
	}

	// A preset Responses keeps AddResponse from adding a default entry.
	op.Responses = openapi3.NewResponsesWithCapacity(6)
	status := op.AddResponse
	switch ep.Kind {
	case view.KindList:
		addPaging(op)
		status(http.StatusOK, jsonResponse("A page of "+entity.Table, arrayOf(ref(entity.GoName+"Read"))))
	case view.KindCreate:
		op.RequestBody = jsonBody(ref(entity.GoName + "Create"))
		status(http.StatusCreated, jsonResponse("The created record", ref(entity.GoName+"Read")))
		status(http.StatusBadRequest, errorResponse("Malformed payload"))
		status(http.StatusConflict, errorResponse("Constraint violation"))
		status(http.StatusUnprocessableEntity, validationResponse())
	case view.KindGet:
		status(http.StatusOK, jsonResponse("The record", ref(entity.GoName+"Read")))
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindUpdate:
		op.RequestBody = jsonBody(ref(entity.GoName + "Update"))
		status(http.StatusOK, jsonResponse("The updated record", ref(entity.GoName+"Read")))
		status(http.StatusBadRequest, errorResponse("Malformed payload"))
		status(http.StatusNotFound, errorResponse("Not found"))
		status(http.StatusConflict, errorResponse("Constraint violation"))
		status(http.StatusUnprocessableEntity, validationResponse())
	case view.KindDelete:
		status(http.StatusNoContent, openapi3.NewResponse().WithDescription("Deleted"))
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindChildren:
		if ep.Single {
			status(http.StatusOK, jsonResponse("The related record", ref(ep.Target+"Read")))
		} else {
			addPaging(op)
			status(http.StatusOK, jsonResponse("The related records", arrayOf(ref(ep.Target+"Read"))))
		}
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindLinks:
		addPaging(op)
		status(http.StatusOK, jsonResponse("The linked records", arrayOf(ref(ep.Target+"Read"))))
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindLink:
		status(http.StatusNoContent, openapi3.NewResponse().WithDescription("Linked"))
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindUnlink:
		status(http.StatusNoContent, openapi3.NewResponse().WithDescription("Unlinked"))
		status(http.StatusNotFound, errorResponse("Not found"))
	case view.KindUpload:
		upload := openapi3.NewObjectSchema().
			WithProperty("file", openapi3.NewStringSchema().WithFormat("binary")).
			WithRequired([]string{"file"})
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithFormDataSchema(upload),
		}
		status(http.StatusCreated, jsonResponse("The stored file", ref(schemaFileInfo)))
		status(http.StatusBadRequest, errorResponse("Missing file part"))
		status(http.StatusNotFound, errorResponse("Not found"))
		status(http.StatusRequestEntityTooLarge, errorResponse("File too large"))
		status(http.StatusUnsupportedMediaType, errorResponse("Content type not allowed"))
	}
	status(http.StatusInternalServerError, errorResponse("Internal error"))
	return op
}

func readSchema(entity *view.EntityView) *openapi3.Schema {
	schema := objectSchema()
	var required []string
	for _, column := range entity.Columns {
		schema.Properties[column.JSONName] = fieldSchema(column)
		required = append(required, column.JSONName)
	}
	return schema.WithRequired(required)
}

func createSchema(entity *view.EntityView) *openapi3.Schema {
	schema := objectSchema()
	var required []string
	for _, column := range entity.WritableColumns {
		schema.Properties[column.JSONName] = fieldSchema(column)
		if !column.Nullable {
			required = append(required, column.JSONName)
		}
	}
	return schema.WithRequired(required)
}

func updateSchema(entity *view.EntityView) *openapi3.Schema {
	schema := objectSchema()
	for _, column := range entity.WritableColumns {
		schema.Properties[column.JSONName] = fieldSchema(column)
	}
	return schema
}

// objectSchema is a closed object; generated handlers reject unknown keys.
func objectSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithoutAdditionalProperties()
}

// fieldSchema maps a column to its JSON schema, constraints included.
func fieldSchema(field view.FieldView) *openapi3.SchemaRef {
	if field.IsFile {
		// $ref siblings are ignored in 3.0, so nullability goes through allOf.
		schema := &openapi3.Schema{
			Type:     &openapi3.Types{openapi3.TypeObject},
			Nullable: true,
			AllOf:    openapi3.SchemaRefs{ref(schemaFileInfo)},
		}
		return openapi3.NewSchemaRef("", schema)
	}

	var schema *openapi3.Schema
	rules := field.Rules
	switch field.Type {
	case "Id", "Integer", "ForeignKey":
		schema = openapi3.NewInt64Schema()
	case "Float":
		schema = openapi3.NewFloat64Schema().WithFormat("double")
	case "Boolean":
		schema = openapi3.NewBoolSchema()
	case "Date", "DateTime":
		schema = openapi3.NewDateTimeSchema()
	case "Time":
		schema = openapi3.NewStringSchema().WithPattern(clockPattern)
	case "Email":
		schema = openapi3.NewStringSchema().WithFormat("email")
	case "Enum":
		var values []any
		seen := map[string]bool{}
		for _, v := range rules.AllowedValues {
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		schema = openapi3.NewStringSchema().WithEnum(values...)
	case "Json":
		schema = openapi3.NewSchema()
		schema.Description = "Arbitrary JSON value"
	default:
		schema = openapi3.NewStringSchema()
	}

	schema.ReadOnly = field.IsIdentity
	if field.Nullable {
		schema.WithNullable()
	}
	if field.Label != "" && schema.Description == "" {
		schema.Description = field.Label
	}

	if rules.MinLength != nil {
		schema.WithMinLength(int64(*rules.MinLength))
	}
	if rules.MaxLength != nil {
		schema.WithMaxLength(int64(*rules.MaxLength))
	}
	switch {
	case rules.GE != nil:
		schema.WithMin(*rules.GE)
	case rules.GT != nil:
		schema.WithMin(*rules.GT).WithExclusiveMin(true)
	}
	switch {
	case rules.LE != nil:
		schema.WithMax(*rules.LE)
	case rules.LT != nil:
		schema.WithMax(*rules.LT).WithExclusiveMax(true)
	}
	if rules.MultipleOf != nil && *rules.MultipleOf > 0 {
		schema.MultipleOf = openapi3.Ptr(*rules.MultipleOf)
	}
	return openapi3.NewSchemaRef("", schema)
}

func sharedSchemas() openapi3.Schemas {
	str := openapi3.NewStringSchema
	return openapi3.Schemas{
		schemaFieldError: openapi3.NewSchemaRef("", objectSchema().
			WithProperty("field", str()).
			WithProperty("message", str()).
			WithRequired([]string{"field", "message"})),
		schemaValidation: openapi3.NewSchemaRef("", objectSchema().
			WithProperty("error", str()).
			WithPropertyRef("fields", arrayOf(ref(schemaFieldError))).
			WithRequired([]string{"error", "fields"})),
		schemaError: openapi3.NewSchemaRef("", objectSchema().
			WithProperty("error", str()).
			WithRequired([]string{"error"})),
		schemaFileInfo: openapi3.NewSchemaRef("", objectSchema().
			WithProperty("filename", str()).
			WithProperty("content_type", str()).
			WithProperty("size", openapi3.NewInt64Schema()).
			WithProperty("path", str()).
			WithProperty("url", str()).
			WithRequired([]string{"filename", "path", "url"})),
	}
}

func pathParam(name, description string) *openapi3.Parameter {
	return openapi3.NewPathParameter(name).
		WithDescription(description).
		WithSchema(openapi3.NewInt64Schema())
}

func addPaging(op *openapi3.Operation) {
	op.AddParameter(openapi3.NewQueryParameter("limit").
		WithDescription("Maximum number of records").
		WithSchema(openapi3.NewIntegerSchema().WithMin(1).WithMax(1000).WithDefault(100)))
	op.AddParameter(openapi3.NewQueryParameter("offset").
		WithDescription("Number of records to skip").
		WithSchema(openapi3.NewIntegerSchema().WithMin(0).WithDefault(0)))
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema),
	}
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schema)
}

func errorResponse(description string) *openapi3.Response {
	return jsonResponse(description, ref(schemaError))
}

func validationResponse() *openapi3.Response {
	return jsonResponse("Validation failed", ref(schemaValidation))
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	schema := openapi3.NewArraySchema()
	schema.Items = items
	return openapi3.NewSchemaRef("", schema)
}
