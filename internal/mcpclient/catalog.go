package mcpclient

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// ParameterSchema mirrors the JSON-schema fragment an MCP server declares
// for a tool's input. Only the parts the assistant needs are kept.
type ParameterSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// Descriptor describes one remote tool. Immutable after discovery.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      ParameterSchema `json:"input_schema"`
}

// Catalog maps tool names to descriptors. Names are unique; the catalog is
// read-only between discoveries.
type Catalog struct {
	byName map[string]Descriptor
}

// NewCatalog builds a catalog from discovered descriptors, rejecting
// duplicate or empty names.
func NewCatalog(descriptors []Descriptor) (*Catalog, error) {
	byName := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		if _, exists := byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q in catalog", d.Name)
		}
		byName[d.Name] = d
	}
	return &Catalog{byName: byName}, nil
}

// Get returns the descriptor for a tool name.
func (c *Catalog) Get(name string) (Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Has reports whether a tool name exists in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns all tool names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tools in the catalog.
func (c *Catalog) Len() int {
	return len(c.byName)
}

// Descriptors returns all descriptors ordered by name.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.byName))
	for _, name := range c.Names() {
		out = append(out, c.byName[name])
	}
	return out
}

// Invocation is one tool call: a name from the catalog plus structured
// arguments. Constructed per dispatch, never reused.
type Invocation struct {
	ID        string         `json:"id"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// NewInvocation builds an invocation with a fresh ID. A nil argument map is
// normalized to an empty one so serialization round-trips cleanly.
func NewInvocation(tool string, args map[string]any) Invocation {
	if args == nil {
		args = map[string]any{}
	}
	return Invocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		Arguments: args,
	}
}

// ValidateInvocation checks an invocation against the catalog: the tool must
// exist, every required parameter must be present, and declared scalar types
// must hold after coercion. Coercible values (a numeric string for an integer
// parameter, for instance) are rewritten in place; anything else is a
// BadArguments error. The remote server is never contacted.
func (c *Catalog) ValidateInvocation(inv *Invocation) error {
	desc, ok := c.byName[inv.Tool]
	if !ok {
		return &InvokeError{Kind: InvokeNotFound, Tool: inv.Tool}
	}

	for _, required := range desc.Schema.Required {
		if _, present := inv.Arguments[required]; !present {
			return &InvokeError{
				Kind:   InvokeBadArguments,
				Tool:   inv.Tool,
				Detail: fmt.Sprintf("missing required parameter %q", required),
			}
		}
	}

	for name, value := range inv.Arguments {
		propType := propertyType(desc.Schema.Properties, name)
		if propType == "" {
			continue
		}
		coerced, err := coerceArgument(value, propType)
		if err != nil {
			return &InvokeError{
				Kind:   InvokeBadArguments,
				Tool:   inv.Tool,
				Detail: fmt.Sprintf("parameter %q: %v", name, err),
			}
		}
		inv.Arguments[name] = coerced
	}

	return nil
}

// propertyType extracts the declared JSON-schema type for one property.
func propertyType(properties map[string]any, name string) string {
	prop, ok := properties[name]
	if !ok {
		return ""
	}
	pm, ok := prop.(map[string]any)
	if !ok {
		return ""
	}
	t, _ := pm["type"].(string)
	return t
}

// coerceArgument converts value to the declared schema type where the
// conversion is unambiguous.
func coerceArgument(value any, schemaType string) (any, error) {
	switch schemaType {
	case "string":
		return cast.ToStringE(value)
	case "integer":
		return cast.ToInt64E(value)
	case "number":
		return cast.ToFloat64E(value)
	case "boolean":
		return cast.ToBoolE(value)
	default:
		// objects and arrays pass through untouched
		return value, nil
	}
}
