package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "studymatch.yaml")
	if err := os.WriteFile(p, []byte("data_dir: /srv/data\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TaxonomyDir != "/srv/data" {
		t.Fatalf("taxonomy_dir should default to data_dir, got %q", cfg.TaxonomyDir)
	}
	if cfg.Strategy != StrategyPairwise || cfg.TopN != 3 || cfg.MentorsPerProgram != 3 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Weights.Interest != 0.6 || cfg.Weights.Rank != 0.4 {
		t.Fatalf("unexpected weights: %+v", cfg.Weights)
	}
	if cfg.Tables.Programs != "programs.csv" || cfg.Matrices.Mentor != "label_matrix_mentor.csv" {
		t.Fatalf("unexpected file names: %+v %+v", cfg.Tables, cfg.Matrices)
	}
}

func TestLoad_EnvOverridesDataDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STUDYMATCH_DATA_DIR", "/from/env")
	p := filepath.Join(t.TempDir(), "studymatch.yaml")
	if err := os.WriteFile(p, []byte("data_dir: /from/file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Fatalf("expected env override, got %q", cfg.DataDir)
	}
}

func TestLoad_RejectsUnknownStrategy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "studymatch.yaml")
	if err := os.WriteFile(p, []byte("data_dir: /d\nstrategy: magic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "unsupported strategy") {
		t.Fatalf("expected strategy error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.TopN = 7
	cfg.SQLite = true
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TopN != 7 || !got.SQLite || got.DataDir != filepath.Join(home, ".studymatch", "data_clean") {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandPath("~/data")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("got %q", got)
	}
	if got, _ := ExpandPath("/abs"); got != "/abs" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
