package task

import (
	"os"
	"path/filepath"
	"testing"
)

func writePack(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "formal.yaml", "id: formal-tone\ninstruction: Rewrite in a formal register.\n")
	writePack(t, dir, "blurb.yml", "id: blurb\nkind: shorten\ninstruction: Cut to a blurb.\n")
	writePack(t, dir, "notes.txt", "not a pack")

	defs, err := LoadDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.ID != "blurb" || defs[1].Definition.ID != "formal-tone" {
		t.Fatalf("expected path-sorted definitions, got %+v", defs)
	}
	if defs[0].Definition.Kind != "shorten" {
		t.Fatalf("kind not preserved: %+v", defs[0].Definition)
	}
}

func TestLoadDefinitionDirMissing(t *testing.T) {
	defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil definitions, got %+v", defs)
	}
}

func TestLoadDefinitionFileInvalid(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "broken.yaml", "instruction: has no id\n")
	if _, err := LoadDefinitionDir(dir); err == nil {
		t.Fatal("expected validation error for pack without id")
	}
}

func TestParseDefinitionYAMLEmpty(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("   \n")); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
