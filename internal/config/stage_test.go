package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStageSpec_ResolvesRelativeEngineConfigAndSchema(t *testing.T) {
	dir := t.TempDir()
	stage := []byte(`schema_version: v1
engine:
  driver: exec
  config: canonizer.yml
input_dir: /vault
output_dir: /out
transform_registry: /registry
mappings:
  - source_pattern: email/gmail
    transform: email/gmail_to_canonical_v1
sinks: [stdout]
`)
	if err := os.WriteFile(filepath.Join(dir, "canonize.yml"), stage, 0o644); err != nil {
		t.Fatalf("write stage spec: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "canonizer.yml"), []byte("schema_version: v1\n"), 0o644); err != nil {
		t.Fatalf("write engine cfg: %v", err)
	}

	cfg, abs, err := LoadStageSpec(filepath.Join(dir, "canonize.yml"))
	if err != nil {
		t.Fatalf("LoadStageSpec: %v", err)
	}
	if cfg.SchemaVersion != SupportedSchema {
		t.Fatalf("want schema %s, got %s", SupportedSchema, cfg.SchemaVersion)
	}
	if abs == "" || !filepath.IsAbs(abs) {
		t.Fatalf("want absolute engine config path, got %q", abs)
	}
	if len(cfg.Mappings) != 1 || cfg.Mappings[0].Transform != "email/gmail_to_canonical_v1" {
		t.Fatalf("unexpected mappings: %+v", cfg.Mappings)
	}
}

func TestLoadStageSpec_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	stage := []byte(`schema_version: v999
mappings: []
`)
	if err := os.WriteFile(filepath.Join(dir, "canonize.yml"), stage, 0o644); err != nil {
		t.Fatalf("write stage spec: %v", err)
	}
	if _, _, err := LoadStageSpec(filepath.Join(dir, "canonize.yml")); err == nil {
		t.Fatal("expected error for invalid schema_version")
	}
}

func TestLoadStageSpec_DefaultsEngineDriver(t *testing.T) {
	dir := t.TempDir()
	stage := []byte(`schema_version: v1
mappings:
  - source_pattern: email/gmail
    transform: t1
`)
	if err := os.WriteFile(filepath.Join(dir, "canonize.yml"), stage, 0o644); err != nil {
		t.Fatalf("write stage spec: %v", err)
	}
	cfg, _, err := LoadStageSpec(filepath.Join(dir, "canonize.yml"))
	if err != nil {
		t.Fatalf("LoadStageSpec: %v", err)
	}
	if cfg.Engine.Driver != "exec" {
		t.Fatalf("want default driver exec, got %q", cfg.Engine.Driver)
	}
}
