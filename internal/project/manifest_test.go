package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"
version = "0.1.0"

[check]
max_diagnostics = 50
jobs = 2
`)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Package.Name != "demo" {
		t.Fatalf("name = %q", m.Config.Package.Name)
	}
	if m.Config.Check.MaxDiagnostics != 50 || m.Config.Check.Jobs != 2 {
		t.Fatalf("check config = %+v", m.Config.Check)
	}
	if !m.Config.Check.Cache {
		t.Fatal("cache should default to enabled")
	}
	if m.Root != dir {
		t.Fatalf("root = %q, want %q", m.Root, dir)
	}
}

func TestLoadManifestRequiresPackageName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
version = "0.1.0"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing [package].name")
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "demo"
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %q, want under %q", path, root)
	}
}

func TestFindManifestAbsent(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := FindManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("should not find a manifest in an empty tree")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a := HashBytes([]byte("a"))
	b := HashBytes([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("combine should depend on order")
	}
	if Combine(a) == a {
		t.Fatal("combine should rehash even a single digest")
	}
}
