package openapi

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

const (
	// Version of the OpenAPI format emitted by Generate
	Version = "3.0.0"
	// Title is the fixed product name in info.title
	Title = "Headless CMS API"

	securityScheme = "bearerAuth"
)

// Info holds the caller-controlled parts of the info and servers sections
type Info struct {
	Version     string
	Description string
	ServerURL   string
}

// Generate projects collection definitions onto an OpenAPI 3.0 document.
// It is pure: the same collection set always yields an equal document.
// Collections are visited in slug order; when two labels share a component
// name the collection with the greater slug owns the component.
func Generate(collections []*schema.CollectionConfig, info Info) *openapi3.T {
	if info.Version == "" {
		info.Version = "1.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       Title,
			Description: info.Description,
			Version:     info.Version,
		},
		Paths: openapi3.NewPaths(),
	}
	if info.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: info.ServerURL}}
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{
		securityScheme: &openapi3.SecuritySchemeRef{
			Value: openapi3.NewJWTSecurityScheme(),
		},
	}
	doc.Components = &components
	doc.Security = openapi3.SecurityRequirements{{securityScheme: {}}}

	for _, c := range sortedBySlug(collections) {
		name := c.ComponentName()
		ref := "#/components/schemas/" + name

		doc.Components.Schemas[name] = &openapi3.SchemaRef{Value: collectionSchema(c)}
		doc.Paths.Set("/api/"+c.Slug, &openapi3.PathItem{
			Get:  listOperation(c, ref),
			Post: createOperation(c, ref),
		})
		doc.Paths.Set("/api/"+c.Slug+"/{id}", &openapi3.PathItem{
			Parameters: openapi3.Parameters{{
				Value: openapi3.NewPathParameter("id").
					WithDescription("Document identifier").
					WithSchema(openapi3.NewStringSchema()),
			}},
			Get:    getOperation(c, ref),
			Patch:  updateOperation(c, ref),
			Delete: deleteOperation(c),
		})
	}

	return doc
}

func sortedBySlug(collections []*schema.CollectionConfig) []*schema.CollectionConfig {
	out := make([]*schema.CollectionConfig, 0, len(collections))
	for _, c := range collections {
		if c != nil {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// collectionSchema builds the component for one collection
func collectionSchema(c *schema.CollectionConfig) *openapi3.Schema {
	props := openapi3.Schemas{
		"id":        {Value: openapi3.NewStringSchema()},
		"createdAt": {Value: openapi3.NewDateTimeSchema()},
		"updatedAt": {Value: openapi3.NewDateTimeSchema()},
	}
	for _, f := range c.Fields {
		props[f.Name] = &openapi3.SchemaRef{Value: FieldSchema(f)}
	}

	s := &openapi3.Schema{
		Type:       &openapi3.Types{openapi3.TypeObject},
		Properties: props,
	}
	if required := c.RequiredFieldNames(); len(required) > 0 {
		s.Required = required
	}
	return s
}

// FieldSchema maps one field to its JSON Schema
func FieldSchema(f schema.Field) *openapi3.Schema {
	switch f.Type {
	case schema.TypeNumber:
		return openapi3.NewIntegerSchema()
	case schema.TypeDecimal:
		return openapi3.NewFloat64Schema()
	case schema.TypeBoolean:
		return openapi3.NewBoolSchema()
	case schema.TypeDate:
		return openapi3.NewStringSchema().WithFormat("date")
	case schema.TypeDateTime:
		return openapi3.NewDateTimeSchema()
	case schema.TypeJSON:
		return openapi3.NewObjectSchema()
	case schema.TypeEnumeration:
		s := openapi3.NewStringSchema()
		for _, opt := range f.EnumOptions {
			s.Enum = append(s.Enum, opt)
		}
		return s
	case schema.TypeMedia:
		return openapi3.NewObjectSchema().
			WithProperty("url", openapi3.NewStringSchema()).
			WithProperty("id", openapi3.NewStringSchema())
	case schema.TypeText, schema.TypeTextarea, schema.TypeRichText, schema.TypeTime,
		schema.TypeEmail, schema.TypePassword, schema.TypeUID, schema.TypeRelation,
		schema.TypeComponent, schema.TypeDynamicZone:
		return openapi3.NewStringSchema()
	default:
		return openapi3.NewStringSchema()
	}
}

func listOperation(c *schema.CollectionConfig, ref string) *openapi3.Operation {
	list := openapi3.NewArraySchema()
	list.Items = openapi3.NewSchemaRef(ref, nil)

	return &openapi3.Operation{
		Tags:        []string{c.Label},
		Summary:     fmt.Sprintf("List %s", c.Label),
		OperationID: "list_" + c.Slug,
		Responses:   responses("200", "OK", &openapi3.SchemaRef{Value: list}),
	}
}

func createOperation(c *schema.CollectionConfig, ref string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{c.Label},
		Summary:     fmt.Sprintf("Create %s", c.Label),
		OperationID: "create_" + c.Slug,
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(openapi3.NewSchemaRef(ref, nil)),
		},
		Responses: responses("201", "Created", openapi3.NewSchemaRef(ref, nil)),
	}
}

func getOperation(c *schema.CollectionConfig, ref string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{c.Label},
		Summary:     fmt.Sprintf("Get %s by id", c.Label),
		OperationID: "get_" + c.Slug,
		Responses:   responses("200", "OK", openapi3.NewSchemaRef(ref, nil)),
	}
}

func updateOperation(c *schema.CollectionConfig, ref string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{c.Label},
		Summary:     fmt.Sprintf("Update %s", c.Label),
		OperationID: "update_" + c.Slug,
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(openapi3.NewSchemaRef(ref, nil)),
		},
		Responses: responses("200", "OK", openapi3.NewSchemaRef(ref, nil)),
	}
}

func deleteOperation(c *schema.CollectionConfig) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{c.Label},
		Summary:     fmt.Sprintf("Delete %s", c.Label),
		OperationID: "delete_" + c.Slug,
		Responses:   responses("204", "Deleted", nil),
	}
}

// responses builds the success response plus the shared error responses
func responses(status, description string, body *openapi3.SchemaRef) *openapi3.Responses {
	out := &openapi3.Responses{}

	success := openapi3.NewResponse().WithDescription(description)
	if body != nil {
		success = success.WithJSONSchemaRef(body)
	}
	out.Set(status, &openapi3.ResponseRef{Value: success})

	for _, e := range []struct{ code, description string }{
		{"401", "Unauthorized"},
		{"404", "Not found"},
		{"500", "Internal server error"},
	} {
		out.Set(e.code, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(e.description).
				WithJSONSchema(errorSchema()),
		})
	}
	return out
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
}
