// Package collection holds the configured document collections: their
// schemas and the access tokens allowed to act on them.
package collection

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Action is an operation a token may be granted on a collection.
type Action string

const (
	ActionAll     Action = "all"
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionList    Action = "list"
	ActionReplace Action = "replace"
	ActionPatch   Action = "patch"
	ActionDelete  Action = "delete"
)

// Actions lists every concrete action, ActionAll excluded.
var Actions = []Action{ActionCreate, ActionRead, ActionList, ActionReplace, ActionPatch, ActionDelete}

// Validate reports whether a is a known action or ActionAll.
func (a Action) Validate() error {
	if a == ActionAll || slices.Contains(Actions, a) {
		return nil
	}
	return fmt.Errorf("unknown action: %s", string(a))
}

// Collection is a compiled collection definition.
type Collection struct {
	name       string
	schemaName string
	schema     *openapi3.Schema
	grants     map[Action][][]byte
}

// Name returns the collection name used in routes and storage.
func (c *Collection) Name() string {
	return c.name
}

// SchemaName returns the component name of the collection schema.
func (c *Collection) SchemaName() string {
	return c.schemaName
}

// Schema returns the compiled document schema.
func (c *Collection) Schema() *openapi3.Schema {
	return c.schema
}

// Authorize reports whether token may perform action. Empty tokens are never
// authorized.
func (c *Collection) Authorize(token string, action Action) bool {
	if token == "" {
		return false
	}

	allowed := false
	for _, granted := range c.grants[action] {
		// keep comparing after a match so timing does not leak the position
		if subtle.ConstantTimeCompare(granted, []byte(token)) == 1 {
			allowed = true
		}
	}
	return allowed
}

// Violation is a single schema violation of a document.
type Violation struct {
	Field   string
	Message string
}

// ValidationError is returned when a document does not match the schema.
type ValidationError struct {
	Collection string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			msgs = append(msgs, v.Message)
			continue
		}
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("document does not match %s schema: %s", e.Collection, strings.Join(msgs, "; "))
}

// Validate checks a decoded JSON document against the collection schema.
func (c *Collection) Validate(doc map[string]any) error {
	err := c.schema.VisitJSON(doc, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	return &ValidationError{
		Collection: c.name,
		Violations: violations(err),
	}
}

func violations(err error) []Violation {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Violation
		for _, e := range multi {
			out = append(out, violations(e)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []Violation{{
			Field:   strings.Join(schemaErr.JSONPointer(), "."),
			Message: schemaErr.Reason,
		}}
	}

	return []Violation{{Message: err.Error()}}
}

// ReservedNames are route segments under the API prefix that a collection
// cannot take.
var ReservedNames = []string{"health"}

// ReservedSchemaNames are component schemas of the base API document.
var ReservedSchemaNames = []string{"FieldError", "ErrorResponse", "MessageResponse"}

// Registry is the set of configured collections, keyed by name.
type Registry struct {
	byName map[string]*Collection
	order  []*Collection
}

// NewRegistry compiles the definitions of f. Every schema must be a valid
// OpenAPI schema and every auth entry must name a declared access token.
// Token values and schema names must be unique. Names listed in
// ReservedNames and ReservedSchemaNames are rejected.
func NewRegistry(ctx context.Context, f *File) (*Registry, error) {
	tokens := make(map[string][]byte, len(f.AccessTokens))
	owners := make(map[string]string, len(f.AccessTokens))
	for _, t := range f.AccessTokens {
		if _, ok := tokens[t.Name]; ok {
			return nil, fmt.Errorf("access token %q declared twice", t.Name)
		}
		if other, ok := owners[t.Token]; ok {
			return nil, fmt.Errorf("access tokens %q and %q share a token value", other, t.Name)
		}
		tokens[t.Name] = []byte(t.Token)
		owners[t.Token] = t.Name
	}

	r := &Registry{byName: make(map[string]*Collection, len(f.Collections))}
	schemaOwners := make(map[string]string, len(f.Collections))
	for _, def := range f.Collections {
		if slices.Contains(ReservedNames, def.Name) {
			return nil, fmt.Errorf("collection %q: name is reserved", def.Name)
		}
		if _, ok := r.byName[def.Name]; ok {
			return nil, fmt.Errorf("collection %q declared twice", def.Name)
		}

		c, err := compile(ctx, def, tokens)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", def.Name, err)
		}

		if slices.Contains(ReservedSchemaNames, c.schemaName) {
			return nil, fmt.Errorf("collection %q: schema name %q is reserved", c.name, c.schemaName)
		}
		if other, ok := schemaOwners[c.schemaName]; ok {
			return nil, fmt.Errorf("collection %q: schema name %q already used by %q", c.name, c.schemaName, other)
		}
		schemaOwners[c.schemaName] = c.name

		r.byName[c.name] = c
		r.order = append(r.order, c)
	}

	return r, nil
}

// Open loads the collections file at path and compiles it.
func Open(ctx context.Context, path string) (*Registry, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(ctx, f)
}

// Get returns the collection with the given name.
func (r *Registry) Get(name string) (*Collection, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns the collections in declaration order.
func (r *Registry) All() []*Collection {
	return slices.Clone(r.order)
}

func compile(ctx context.Context, def Definition, tokens map[string][]byte) (*Collection, error) {
	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	schema := &openapi3.Schema{}
	if err := schema.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	if err := schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schemaName := schema.Title
	if schemaName == "" {
		schemaName = pascalCase(def.Name)
	}

	perAction := map[Action][]string{
		ActionCreate:  def.Auth.Create,
		ActionRead:    def.Auth.Read,
		ActionList:    def.Auth.List,
		ActionReplace: def.Auth.Replace,
		ActionPatch:   def.Auth.Patch,
		ActionDelete:  def.Auth.Delete,
	}

	grants := make(map[Action][][]byte, len(Actions))
	for _, action := range Actions {
		names := append(slices.Clone(def.Auth.All), perAction[action]...)
		for _, name := range names {
			token, ok := tokens[name]
			if !ok {
				return nil, fmt.Errorf("auth %s: unknown access token %q", action, name)
			}
			grants[action] = append(grants[action], token)
		}
	}

	return &Collection{
		name:       def.Name,
		schemaName: schemaName,
		schema:     schema,
		grants:     grants,
	}, nil
}

func pascalCase(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
