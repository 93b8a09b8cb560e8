package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Storage.Driver != StorageNone {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Pipeline.Concurrency != 1 {
		t.Errorf("concurrency = %d", cfg.Pipeline.Concurrency)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiver.yaml")
	content := `database:
  path: /var/lib/shiver/collections.db
storage:
  driver: gcs
  bucket: shiver-media
  cdn_domain: media.shiver.example
  retry_for: 45s
pipeline:
  upload_text: true
  concurrency: 4
templates: /etc/shiver/templates.json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/var/lib/shiver/collections.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Storage.Driver != StorageGCS || cfg.Storage.Bucket != "shiver-media" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.RetryFor != 45*time.Second {
		t.Errorf("retry_for = %v", cfg.Storage.RetryFor)
	}
	if cfg.Storage.Folder != "uploads" {
		t.Errorf("folder default lost: %q", cfg.Storage.Folder)
	}
	if !cfg.Pipeline.UploadText || cfg.Pipeline.Concurrency != 4 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Storage.Driver != StorageNone {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("storage: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"SHIVER_DB_PATH":        "/tmp/x.db",
		"SHIVER_STORAGE_DRIVER": "local",
		"SHIVER_STORAGE_ROOT":   "/tmp/blobs",
		"SHIVER_BUCKET":         "media",
		"SHIVER_UPLOAD_TEXT":    "true",
		"SHIVER_CONCURRENCY":    "3",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Database.Path != "/tmp/x.db" || cfg.Storage.Driver != StorageLocal || cfg.Storage.Root != "/tmp/blobs" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if !cfg.Pipeline.UploadText || cfg.Pipeline.Concurrency != 3 {
		t.Errorf("pipeline env not applied: %+v", cfg.Pipeline)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	for _, bad := range []map[string]string{
		{"SHIVER_UPLOAD_TEXT": "sometimes"},
		{"SHIVER_CONCURRENCY": "many"},
	} {
		if err := Default().ApplyEnv(env(bad)); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("ApplyEnv(%v) = %v, want ErrInvalidConfig", bad, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		storage StorageConfig
		wantErr bool
	}{
		{"none", StorageConfig{Driver: StorageNone}, false},
		{"empty driver", StorageConfig{}, false},
		{"local ok", StorageConfig{Driver: StorageLocal, Root: "/tmp", Bucket: "b"}, false},
		{"local no root", StorageConfig{Driver: StorageLocal, Bucket: "b"}, true},
		{"gcs no bucket", StorageConfig{Driver: StorageGCS}, true},
		{"unknown", StorageConfig{Driver: "s3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage = tt.storage
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
