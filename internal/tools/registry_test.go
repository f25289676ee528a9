package tools

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeTool struct {
	name string
}

func (f fakeTool) Name() string        { return f.name }
func (f fakeTool) Description() string { return "fake tool " + f.name }
func (f fakeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object"}`)
}
func (f fakeTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	return Textf("ran %s", f.name), nil
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fakeTool{name: "read_file"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tool, ok := r.Get("read_file")
	if !ok {
		t.Fatal("registered tool not found")
	}
	if tool.Name() != "read_file" {
		t.Errorf("wrong tool returned: %s", tool.Name())
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("unknown tool must not be found")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fakeTool{name: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(fakeTool{name: "x"}); err == nil {
		t.Error("duplicate registration must fail")
	}
	if err := r.Register(fakeTool{name: ""}); err == nil {
		t.Error("empty name must be rejected")
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(fakeTool{name: name}); err != nil {
			t.Fatal(err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	if r.Count() != 3 {
		t.Errorf("count = %d", r.Count())
	}
}

func TestDefinitions(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fakeTool{name: "b_tool"})
	r.MustRegister(fakeTool{name: "a_tool"})

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Function.Name != "a_tool" || defs[1].Function.Name != "b_tool" {
		t.Errorf("definitions not ordered by name: %v", defs)
	}
	if defs[0].Type != "function" {
		t.Errorf("unexpected definition type %q", defs[0].Type)
	}
}
