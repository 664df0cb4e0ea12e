package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":2607" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.AccidentsDir != "accidents" || cfg.PDFDir != "pdfs" {
		t.Fatalf("dir defaults = %q, %q", cfg.AccidentsDir, cfg.PDFDir)
	}
	if len(cfg.Fonts.Latin) == 0 || len(cfg.Fonts.CJK) == 0 {
		t.Fatalf("font candidate defaults missing")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9000"
upload_root: /srv/uploads
database:
  host: db.internal
  name: accidents
fonts:
  latin:
    - /fonts/custom-thai.ttf
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.UploadRoot != "/srv/uploads" {
		t.Fatalf("upload root = %q", cfg.UploadRoot)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Name != "accidents" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	// Unset YAML keys keep their defaults.
	if cfg.Database.Port != "3306" {
		t.Fatalf("port = %q", cfg.Database.Port)
	}
	if len(cfg.Fonts.Latin) != 1 || cfg.Fonts.Latin[0] != "/fonts/custom-thai.ttf" {
		t.Fatalf("latin fonts = %v", cfg.Fonts.Latin)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":2607" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override.host")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("UPLOAD_PATH", "/data/uploads")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "override.host" || cfg.Database.Password != "hunter2" {
		t.Fatalf("database env overrides not applied: %+v", cfg.Database)
	}
	if cfg.UploadRoot != "/data/uploads" {
		t.Fatalf("upload root = %q", cfg.UploadRoot)
	}
}

func TestDSN(t *testing.T) {
	d := Database{Host: "h", Port: "3307", User: "u", Password: "p", Name: "n"}
	want := "u:p@tcp(h:3307)/n?parseTime=true&charset=utf8mb4"
	if got := d.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
