package task

import (
	"strings"
	"testing"
)

func TestLintCleanPack(t *testing.T) {
	files := []DefinitionFile{
		{Definition: Definition{ID: "formal-tone", Instruction: "x"}, Path: "a.yaml"},
		{Definition: Definition{ID: "blurb", Instruction: "y"}, Path: "b.yaml"},
	}
	if errs := Lint(files); len(errs) != 0 {
		t.Fatalf("expected no findings, got %v", errs)
	}
}

func TestLintFindsDuplicatesAndShadows(t *testing.T) {
	files := []DefinitionFile{
		{Definition: Definition{ID: "blurb", Instruction: "x"}, Path: "a.yaml"},
		{Definition: Definition{ID: "blurb", Instruction: "y"}, Path: "b.yaml"},
		{Definition: Definition{ID: "rewrite", Instruction: "z"}, Path: "c.yaml"},
		{Definition: Definition{ID: "", Instruction: "w"}, Path: "d.yaml"},
	}
	errs := Lint(files)
	if len(errs) != 3 {
		t.Fatalf("expected 3 findings, got %d: %v", len(errs), errs)
	}
	joined := make([]string, len(errs))
	for i, err := range errs {
		joined[i] = err.Error()
	}
	all := strings.Join(joined, "\n")
	for _, want := range []string{"already defined in a.yaml", "shadows a built-in", "id is required"} {
		if !strings.Contains(all, want) {
			t.Fatalf("findings missing %q:\n%s", want, all)
		}
	}
}
