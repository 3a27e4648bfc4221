package apicontract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/tuanvumaihuynh/quickstore/internal/collection"
)

// APIPrefix is the path under which document routes are mounted.
const APIPrefix = "/api"

// Build returns the OpenAPI document describing the base routes and the CRUD
// routes of every collection in reg. The result is validated.
func Build(ctx context.Context, reg *collection.Registry, publicURL string) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(baseSpec)
	if err != nil {
		return nil, fmt.Errorf("load base spec: %w", err)
	}

	doc.Servers = openapi3.Servers{{URL: strings.TrimSuffix(publicURL, "/") + APIPrefix}}

	errRef := componentRef(doc, "ErrorResponse")
	msgRef := componentRef(doc, "MessageResponse")

	for _, c := range reg.All() {
		if _, ok := doc.Components.Schemas[c.SchemaName()]; ok {
			return nil, fmt.Errorf("collection %q: schema %q already defined", c.Name(), c.SchemaName())
		}
		if doc.Paths.Value("/"+c.Name()) != nil {
			return nil, fmt.Errorf("collection %q: path already defined", c.Name())
		}

		docRef := openapi3.NewSchemaRef("#/components/schemas/"+c.SchemaName(), c.Schema())
		doc.Components.Schemas[c.SchemaName()] = openapi3.NewSchemaRef("", c.Schema())

		doc.Tags = append(doc.Tags, &openapi3.Tag{
			Name:        c.Name(),
			Description: fmt.Sprintf("Operations related to the %s collection", c.Name()),
		})

		b := opBuilder{collection: c.Name(), doc: docRef, err: errRef, msg: msgRef}
		doc.Paths.Set("/"+c.Name(), &openapi3.PathItem{
			Get:  b.list(),
			Post: b.create(),
		})
		doc.Paths.Set("/"+c.Name()+"/{id}", &openapi3.PathItem{
			Get:    b.read(),
			Put:    b.replace(),
			Patch:  b.patch(),
			Delete: b.delete(),
		})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate spec: %w", err)
	}

	return doc, nil
}

// BuildJSON is Build followed by JSON encoding.
func BuildJSON(ctx context.Context, reg *collection.Registry, publicURL string) ([]byte, error) {
	doc, err := Build(ctx, reg, publicURL)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	return b, nil
}

func componentRef(doc *openapi3.T, name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, doc.Components.Schemas[name].Value)
}

type opBuilder struct {
	collection string
	doc        *openapi3.SchemaRef
	err        *openapi3.SchemaRef
	msg        *openapi3.SchemaRef
}

type response struct {
	status      int
	description string
	schema      *openapi3.SchemaRef
}

func (b opBuilder) operation(id, summary, description string, responses ...response) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id + "_" + b.collection
	op.Summary = summary
	op.Description = description
	op.Tags = []string{b.collection}

	// every document route may fail on auth or on an unknown collection
	responses = append(responses,
		response{401, "Unauthorized access", b.err},
		response{404, "Document or collection not found", b.err},
	)

	op.Responses = openapi3.NewResponsesWithCapacity(len(responses))
	for _, r := range responses {
		res := openapi3.NewResponse().WithDescription(r.description)
		if r.schema != nil {
			res = res.WithJSONSchemaRef(r.schema)
		}
		op.Responses.Set(fmt.Sprintf("%d", r.status), &openapi3.ResponseRef{Value: res})
	}

	return op
}

func (b opBuilder) withID(op *openapi3.Operation) *openapi3.Operation {
	op.AddParameter(openapi3.NewPathParameter("id").
		WithDescription("Document ID").
		WithSchema(openapi3.NewInt64Schema().WithMin(1)))
	return op
}

func (b opBuilder) withBody(op *openapi3.Operation, description string, schema *openapi3.SchemaRef) *openapi3.Operation {
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithDescription(description).
			WithRequired(true).
			WithJSONSchemaRef(schema),
	}
	return op
}

func (b opBuilder) list() *openapi3.Operation {
	items := openapi3.NewArraySchema()
	items.Items = b.doc

	op := b.operation("list",
		"Get all documents from a collection",
		"Retrieve the documents of the collection ordered by id",
		response{200, "Documents retrieved successfully", openapi3.NewSchemaRef("", items)},
		response{400, "Invalid query parameter", b.err},
	)
	op.AddParameter(openapi3.NewQueryParameter("skip").
		WithDescription("Skip number of documents").
		WithSchema(openapi3.NewIntegerSchema().WithMin(0)))
	op.AddParameter(openapi3.NewQueryParameter("limit").
		WithDescription("Limit number of documents").
		WithSchema(openapi3.NewIntegerSchema().WithMin(1).WithMax(1000)))
	return op
}

func (b opBuilder) create() *openapi3.Operation {
	op := b.operation("create",
		"Insert a new document",
		"Insert a new document into the collection",
		response{201, "Document inserted successfully", b.doc},
		response{400, "Invalid JSON or validation failed", b.err},
	)
	return b.withBody(op, "The document to insert", b.doc)
}

func (b opBuilder) read() *openapi3.Operation {
	return b.withID(b.operation("read",
		"Get a document by ID",
		"Retrieve a specific document from the collection by ID",
		response{200, "Document retrieved successfully", b.doc},
		response{400, "Invalid ID", b.err},
	))
}

func (b opBuilder) replace() *openapi3.Operation {
	op := b.withID(b.operation("replace",
		"Replace a document",
		"Replace an existing document with new data",
		response{200, "Document replaced successfully", b.doc},
		response{400, "Invalid JSON or validation failed", b.err},
	))
	return b.withBody(op, "The replacement document", b.doc)
}

func (b opBuilder) patch() *openapi3.Operation {
	op := b.withID(b.operation("patch",
		"Patch a document",
		"Merge top-level fields into an existing document; the result must match the schema",
		response{200, "Document patched successfully", b.doc},
		response{400, "Invalid JSON or validation failed", b.err},
	))
	return b.withBody(op, "Top-level fields to merge", openapi3.NewSchemaRef("", openapi3.NewObjectSchema()))
}

func (b opBuilder) delete() *openapi3.Operation {
	return b.withID(b.operation("delete",
		"Delete a document",
		"Delete a document from the collection",
		response{200, "Document deleted successfully", b.msg},
		response{400, "Invalid ID", b.err},
	))
}
