package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "shiver.yaml")
	content := "database:\n  path: " + filepath.Join(dir, "collections.db") + "\n" +
		"templates: " + filepath.Join(dir, "templates.json") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestLabelsCmd(t *testing.T) {
	out, err := run(t, "labels")
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	if !strings.Contains(out, "character-description\tcharacter\t") {
		t.Errorf("missing character route in:\n%s", out)
	}
	if !strings.Contains(out, "conflict-description\tcase\t") {
		t.Errorf("missing case route in:\n%s", out)
	}
}

func TestImportSaveThenSearch(t *testing.T) {
	dir, cfg := writeConfig(t)
	doc := filepath.Join(dir, "alexander.txt")
	if err := os.WriteFile(doc, []byte("Alexander walked into the old church on Main Street."), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfg, "import", "--label", "character-description", "--save", doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "alexander.txt\tsaved\tcharacter #1") {
		t.Errorf("unexpected import output:\n%s", out)
	}
	if !strings.Contains(out, "ok: Saved 1 item to collections") {
		t.Errorf("missing save notification:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "search", "alexander")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "character #1\tAlexander") {
		t.Errorf("unexpected search output:\n%s", out)
	}
}

func TestImportRequiresLabel(t *testing.T) {
	if _, err := run(t, "import", "whatever.txt"); err == nil {
		t.Error("import without --label should fail")
	}
}

func TestImportManifest(t *testing.T) {
	dir, cfg := writeConfig(t)
	batch := filepath.Join(dir, "batch.jsonl")
	lines := `{"label":"character-description","fileName":"mira.txt","text":"Mira smiled at the crowd."}
{"label":"plot-summary","fileName":"ending.txt","text":"The harbor burned and nobody was left."}
`
	if err := os.WriteFile(batch, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfg, "import", "--manifest", batch, "--save")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for _, want := range []string{"mira.txt\tsaved\tcharacter #1", "ending.txt\tsaved\tchapter #2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTemplateAddRejectsMalformedJSON(t *testing.T) {
	dir, cfg := writeConfig(t)
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(good, []byte(`{"kind":"media","fields":{"tags":["cursed"]}}`), 0644)
	os.WriteFile(bad, []byte(`{not valid json`), 0644)

	if _, err := run(t, "--config", cfg, "template", "add", "Haunted objects", good); err != nil {
		t.Fatalf("add good template: %v", err)
	}
	if _, err := run(t, "--config", cfg, "template", "add", "broken", bad); err == nil {
		t.Error("malformed template should be rejected")
	}

	out, err := run(t, "--config", cfg, "template", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Haunted objects\tmedia") || strings.Contains(out, "broken") {
		t.Errorf("unexpected template list:\n%s", out)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, cfg := writeConfig(t)
	if _, err := run(t, "--config", cfg, "export", "--format", "csv"); err == nil {
		t.Error("unknown format should fail")
	}
}
