package task

import (
	"os"
	"path/filepath"
	"testing"
)

const goPackSource = `package main

func TaskDefinitions() ([]map[string]any, error) {
	base := "Rewrite for a newsletter audience."
	return []map[string]any{
		{
			"id":          "newsletter",
			"instruction": base,
		},
		{
			"id":          "newsletter-short",
			"kind":        "shorten",
			"instruction": base + " Keep it brief.",
		},
	}, nil
}`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "newsletter.go"), []byte(goPackSource), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load go defs: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.ID != "newsletter" {
		t.Fatalf("unexpected id: %+v", defs[0].Definition)
	}
	if defs[1].Definition.Kind != "shorten" {
		t.Fatalf("kind not carried through: %+v", defs[1].Definition)
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("write broken pack: %v", err)
	}
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatal("expected error for missing TaskDefinitions function")
	}
}

func TestLoadGoDefinitionDirEmptyDir(t *testing.T) {
	defs, err := LoadGoDefinitionDir(t.TempDir())
	if err != nil {
		t.Fatalf("empty dir should not error, got %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil definitions, got %+v", defs)
	}
}
