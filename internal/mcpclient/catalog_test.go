package mcpclient

import (
	"encoding/json"
	"reflect"
	"testing"
)

func searchCatalog(t *testing.T) *Catalog {
	t.Helper()

	catalog, err := NewCatalog([]Descriptor{
		{
			Name:        "search_repositories",
			Description: "Search for GitHub repositories",
			Schema: ParameterSchema{
				Type: "object",
				Properties: map[string]any{
					"user":     map[string]any{"type": "string"},
					"per_page": map[string]any{"type": "integer"},
				},
				Required: []string{"user"},
			},
		},
		{
			Name:        "create_issue",
			Description: "Create a new issue",
			Schema: ParameterSchema{
				Type: "object",
				Properties: map[string]any{
					"owner": map[string]any{"type": "string"},
					"repo":  map[string]any{"type": "string"},
					"title": map[string]any{"type": "string"},
				},
				Required: []string{"owner", "repo", "title"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	return catalog
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Descriptor{
		{Name: "get_file_contents"},
		{Name: "get_file_contents"},
	})
	if err == nil {
		t.Error("Expected error for duplicate tool names")
	}
}

func TestNewCatalogRejectsEmptyName(t *testing.T) {
	_, err := NewCatalog([]Descriptor{{Name: ""}})
	if err == nil {
		t.Error("Expected error for empty tool name")
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := searchCatalog(t)

	if !catalog.Has("search_repositories") {
		t.Error("Expected catalog to contain search_repositories")
	}
	if catalog.Has("push_files") {
		t.Error("Catalog should not contain undeclared tools")
	}

	d, ok := catalog.Get("create_issue")
	if !ok {
		t.Fatal("Expected create_issue descriptor")
	}
	if len(d.Schema.Required) != 3 {
		t.Errorf("Expected 3 required parameters, got %d", len(d.Schema.Required))
	}

	names := catalog.Names()
	if !reflect.DeepEqual(names, []string{"create_issue", "search_repositories"}) {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

func TestValidateInvocation(t *testing.T) {
	catalog := searchCatalog(t)

	t.Run("valid invocation", func(t *testing.T) {
		inv := NewInvocation("search_repositories", map[string]any{"user": "Abhitheshek"})
		if err := catalog.ValidateInvocation(&inv); err != nil {
			t.Errorf("Expected valid invocation, got: %v", err)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		inv := NewInvocation("delete_everything", nil)
		err := catalog.ValidateInvocation(&inv)
		if !IsInvokeKind(err, InvokeNotFound) {
			t.Errorf("Expected NotFound, got: %v", err)
		}
	})

	t.Run("missing required parameter", func(t *testing.T) {
		inv := NewInvocation("create_issue", map[string]any{"owner": "octocat"})
		err := catalog.ValidateInvocation(&inv)
		if !IsInvokeKind(err, InvokeBadArguments) {
			t.Errorf("Expected BadArguments, got: %v", err)
		}
	})

	t.Run("coercible integer", func(t *testing.T) {
		inv := NewInvocation("search_repositories", map[string]any{
			"user":     "Abhitheshek",
			"per_page": "17",
		})
		if err := catalog.ValidateInvocation(&inv); err != nil {
			t.Fatalf("Expected coercion to succeed, got: %v", err)
		}
		if inv.Arguments["per_page"] != int64(17) {
			t.Errorf("Expected coerced int64(17), got %T %v", inv.Arguments["per_page"], inv.Arguments["per_page"])
		}
	})

	t.Run("uncoercible value", func(t *testing.T) {
		inv := NewInvocation("search_repositories", map[string]any{
			"user":     "Abhitheshek",
			"per_page": "not-a-number",
		})
		err := catalog.ValidateInvocation(&inv)
		if !IsInvokeKind(err, InvokeBadArguments) {
			t.Errorf("Expected BadArguments for uncoercible value, got: %v", err)
		}
	})

	t.Run("undeclared parameters pass through", func(t *testing.T) {
		inv := NewInvocation("search_repositories", map[string]any{
			"user":  "Abhitheshek",
			"extra": []string{"kept", "as-is"},
		})
		if err := catalog.ValidateInvocation(&inv); err != nil {
			t.Errorf("Undeclared parameters should not fail validation, got: %v", err)
		}
	})
}

func TestNewInvocation(t *testing.T) {
	inv := NewInvocation("search_repositories", nil)

	if inv.ID == "" {
		t.Error("Expected a generated invocation ID")
	}
	if inv.Arguments == nil {
		t.Error("Expected nil arguments to be normalized to an empty map")
	}

	other := NewInvocation("search_repositories", nil)
	if inv.ID == other.ID {
		t.Error("Expected unique IDs per invocation")
	}
}

func TestInvocationRoundTrip(t *testing.T) {
	// Serializing an invocation to the provider call format and back must
	// preserve the tool name and every argument key/value pair.
	original := NewInvocation("search_repositories", map[string]any{
		"user":     "Abhitheshek",
		"language": "go",
		"archived": false,
		"stars":    float64(42),
	})

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Invocation
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Tool != original.Tool {
		t.Errorf("Tool name changed in round trip: %q vs %q", decoded.Tool, original.Tool)
	}
	if !reflect.DeepEqual(decoded.Arguments, original.Arguments) {
		t.Errorf("Arguments changed in round trip:\n  before: %#v\n  after:  %#v", original.Arguments, decoded.Arguments)
	}
}
