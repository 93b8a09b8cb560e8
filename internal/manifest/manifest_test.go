package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

func TestLoadGroupsByLabel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vault.md"), []byte("# The Vault"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "batch.jsonl")
	lines := `{"label":"character-description","fileName":"mira.txt","text":"Mira is brave."}
{"label":"location-description","path":"vault.md"}

{"label":"character-description","fileName":"tomas.txt","text":"Tomas is sly."}
`
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	batches, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(batches))
	}
	if batches[0].Label != content.LabelCharacterDescription || len(batches[0].Uploads) != 2 {
		t.Errorf("first batch = %+v", batches[0])
	}
	if batches[0].Uploads[1].FileName != "tomas.txt" {
		t.Errorf("uploads out of order: %+v", batches[0].Uploads)
	}

	loc := batches[1]
	if loc.Label != content.LabelLocationDescription || len(loc.Uploads) != 1 {
		t.Fatalf("second batch = %+v", loc)
	}
	if loc.Uploads[0].FileName != "vault.md" || string(loc.Uploads[0].Data) != "# The Vault" {
		t.Errorf("path entry not read relative to manifest: %+v", loc.Uploads[0])
	}
	if loc.Uploads[0].ContentType != "text/markdown" {
		t.Errorf("content type = %q", loc.Uploads[0].ContentType)
	}
}

func TestLoadSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	lines := `{not json}
{"fileName":"nolabel.txt","text":"x"}
{"label":"plot-summary"}
{"label":"plot-summary","path":"missing.txt"}
{"label":"plot-summary","fileName":"ok.txt","text":"It ends."}
`
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	batches, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(batches) != 1 || len(batches[0].Uploads) != 1 {
		t.Fatalf("Expected only the valid entry, got %+v", batches)
	}
}

func TestLoadEmptyManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, []byte("\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"), nil); err == nil {
		t.Error("Should error on non-existent file")
	}
}
