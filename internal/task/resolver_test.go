package task

import (
	"strings"
	"testing"
)

func TestResolveBuiltin(t *testing.T) {
	r := NewResolver()
	resolved, err := r.Resolve("Proofread", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Kind != KindProofread {
		t.Fatalf("expected proofread kind, got %s", resolved.Kind)
	}
	if resolved.Instruction == "" {
		t.Fatal("builtin tasks must carry an instruction")
	}
}

func TestResolveBuiltinWithEmphasis(t *testing.T) {
	r := NewResolver()
	plain, _ := r.Resolve("rewrite", "")
	emphasized, err := r.Resolve("rewrite", "Keep it under 40 words.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(emphasized.Instruction, plain.Instruction) {
		t.Fatalf("emphasis should extend the base instruction, got %q", emphasized.Instruction)
	}
	if !strings.HasSuffix(emphasized.Instruction, "Keep it under 40 words.") {
		t.Fatalf("emphasis missing from %q", emphasized.Instruction)
	}
}

func TestResolveCustomRequiresInstruction(t *testing.T) {
	r := NewResolver()
	if _, err := r.Resolve("custom", ""); err == nil {
		t.Fatal("expected error for custom without instruction")
	}
	resolved, err := r.Resolve("custom", "Translate idioms literally.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Instruction != "Translate idioms literally." {
		t.Fatalf("unexpected instruction %q", resolved.Instruction)
	}
}

func TestResolvePackDefinition(t *testing.T) {
	r := NewResolver()
	def := Definition{ID: "formal-tone", Instruction: "Rewrite in a formal register."}
	if err := r.RegisterDefinition(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	resolved, err := r.Resolve("formal-tone", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Name != "formal-tone" || resolved.Kind != KindCustom {
		t.Fatalf("unexpected task %+v", resolved)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewResolver()
	if _, err := r.Resolve("no-such-task", ""); err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestRegisterDefinitionRejectsShadowAndDuplicate(t *testing.T) {
	r := NewResolver()
	if err := r.RegisterDefinition(Definition{ID: "proofread", Instruction: "x"}); err == nil {
		t.Fatal("expected shadow of builtin kind to be rejected")
	}
	def := Definition{ID: "blurb", Instruction: "Cut to a blurb."}
	if err := r.RegisterDefinition(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterDefinition(def); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestNamesOrdering(t *testing.T) {
	r := NewResolver()
	if err := r.RegisterDefinition(Definition{ID: "zeta", Instruction: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterDefinition(Definition{ID: "alpha", Instruction: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	names := r.Names()
	if len(names) != 7 {
		t.Fatalf("expected 5 builtins + 2 packs, got %v", names)
	}
	if names[len(names)-2] != "alpha" || names[len(names)-1] != "zeta" {
		t.Fatalf("pack ids should be sorted after builtins, got %v", names)
	}
	for _, builtin := range []string{"custom", "expand", "proofread", "rewrite", "shorten"} {
		found := false
		for _, name := range names[:5] {
			if name == builtin {
				found = true
			}
		}
		if !found {
			t.Fatalf("builtin %q missing from %v", builtin, names)
		}
	}
}
