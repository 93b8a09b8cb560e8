package mapping

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/dispatch"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

func sampleInput(label content.Label) Input {
	return Input{
		FileName:    "night-at-the-harbor.txt",
		Label:       label,
		ContentType: "text/plain",
		Raw:         "Mira confronted Tomas at Greyhaven harbor about the missing ledger.",
		Entities: content.Entities{
			Characters: []string{"Mira", "Tomas"},
			Locations:  []string{"Greyhaven harbor"},
			Keywords:   []string{"ledger", "missing"},
			Emotions:   []string{"angry"},
			Actions:    []string{"confronted"},
		},
	}
}

func TestConflictDescriptionBuildsCaseFile(t *testing.T) {
	m := New(fixedNow)
	in := sampleInput(content.LabelConflictDescription)

	rec := m.Build(dispatch.Resolve(in.Label).Shape, in)
	cf, ok := rec.(*records.CaseFile)
	if !ok {
		t.Fatalf("expected *records.CaseFile, got %T", rec)
	}
	if cf.Status != "Open" {
		t.Errorf("Status = %q, want Open", cf.Status)
	}
	if cf.Date != "2026-10-19" {
		t.Errorf("Date = %q, want 2026-10-19", cf.Date)
	}
	if diff := cmp.Diff(in.Entities.Keywords, cf.Evidence); diff != "" {
		t.Errorf("Evidence mismatch (-want +got):\n%s", diff)
	}
	if cf.Name != "Case: Mira" {
		t.Errorf("Name = %q", cf.Name)
	}
	if cf.Info.SourceFile != in.FileName || cf.Info.Label != string(in.Label) {
		t.Errorf("meta not populated: %+v", cf.Info)
	}
}

func TestMappingIsIdempotent(t *testing.T) {
	m := New(fixedNow)
	for _, label := range content.PredefinedLabels() {
		in := sampleInput(label)
		shape := dispatch.Resolve(label).Shape
		a := m.Build(shape, in)
		b := m.Build(shape, in)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("label %s: mapping twice differs (-first +second):\n%s", label, diff)
		}
	}
}

func TestEveryLabelBuildsItsShape(t *testing.T) {
	m := New(fixedNow)
	labels := append(content.PredefinedLabels(), "haunted-objects", "")
	for _, label := range labels {
		want := dispatch.Resolve(label).Shape
		rec := m.Build(want, sampleInput(label))
		if rec.Kind() != want {
			t.Errorf("label %q built %s, want %s", label, rec.Kind(), want)
		}
	}
	if got := m.Build("starship", sampleInput("x")).Kind(); got != records.KindMedia {
		t.Errorf("unknown shape should build media, got %s", got)
	}
}

func TestCharacterDefaults(t *testing.T) {
	m := New(fixedNow)
	in := Input{FileName: "notes.txt", Raw: "  a nameless wanderer  "}
	c := m.Build(records.KindCharacter, in).(*records.Character)
	if c.Name != UnknownCharacter {
		t.Errorf("Name = %q, want placeholder", c.Name)
	}
	if c.Description != "a nameless wanderer" {
		t.Errorf("Description = %q", c.Description)
	}
	if c.Traits == nil || c.Tags == nil {
		t.Error("lists should be empty, not nil")
	}
}

func TestLocationAndChapterFields(t *testing.T) {
	m := New(fixedNow)
	in := sampleInput(content.LabelSceneSetting)

	loc := m.Build(records.KindLocation, in).(*records.Location)
	if loc.Name != "Greyhaven harbor" {
		t.Errorf("Location name = %q", loc.Name)
	}
	if diff := cmp.Diff([]string{"Mira", "Tomas"}, loc.Inhabitants); diff != "" {
		t.Errorf("Inhabitants (-want +got):\n%s", diff)
	}

	ch := m.Build(records.KindChapter, in).(*records.Chapter)
	if ch.Name != "night-at-the-harbor" {
		t.Errorf("Chapter title = %q", ch.Name)
	}
	if diff := cmp.Diff([]string{"ledger", "missing", "confronted"}, ch.Tags); diff != "" {
		t.Errorf("Chapter tags (-want +got):\n%s", diff)
	}

	noName := m.Build(records.KindChapter, Input{}).(*records.Chapter)
	if noName.Name != UntitledChapter {
		t.Errorf("Chapter fallback title = %q", noName.Name)
	}
}

func TestMediaFields(t *testing.T) {
	m := New(fixedNow)
	in := Input{FileName: "map.png", ContentType: "image/png", Raw: "[Binary file: map.png]", BlobURL: "https://cdn.example/map.png"}
	media := m.Build(records.KindMedia, in).(*records.MediaItem)
	if media.MediaType != "image" || media.Name != "map.png" || media.URL != in.BlobURL {
		t.Errorf("unexpected media draft %+v", media)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := Truncate(long, ShortLimit)
	if len(got) != ShortLimit+len(Ellipsis) || !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("Truncate long = %d chars", len(got))
	}
	exact := strings.Repeat("b", ShortLimit)
	if Truncate(exact, ShortLimit) != exact {
		t.Error("text at the limit should not gain an ellipsis")
	}
	// rune-aware
	if got := Truncate("ééééé", 3); got != "ééé..." {
		t.Errorf("Truncate runes = %q", got)
	}
}

func TestMediaType(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      "image",
		"AUDIO/mpeg":      "audio",
		"video/mp4":       "video",
		"text/markdown":   "text",
		"application/pdf": "document",
		"":                "document",
	}
	for in, want := range cases {
		if got := MediaType(in); got != want {
			t.Errorf("MediaType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInputFrom(t *testing.T) {
	it := &content.Item{
		FileName:   "a.txt",
		Label:      content.LabelPlotSummary,
		RawContent: "text",
		Parsed:     &content.ParsedData{Entities: content.Entities{Characters: []string{"Ana"}}},
		Blob:       &content.BlobRef{URL: "u"},
	}
	in := InputFrom(it)
	if in.Entities.Characters[0] != "Ana" || in.BlobURL != "u" || in.Raw != "text" {
		t.Errorf("InputFrom = %+v", in)
	}
}

func TestApplyDefaults(t *testing.T) {
	draft := &records.Character{Name: "Mira", Traits: []string{}, Info: records.Meta{SourceFile: "a.txt"}}
	out, err := ApplyDefaults(draft, map[string]any{
		"name":   "Ignored",
		"traits": []any{"stubborn"},
		"image":  "https://cdn.example/mira.png",
		"meta":   map[string]any{"id": 99},
	})
	if err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	c := out.(*records.Character)
	if c.Name != "Mira" {
		t.Errorf("populated name overwritten: %q", c.Name)
	}
	if diff := cmp.Diff([]string{"stubborn"}, c.Traits); diff != "" {
		t.Errorf("traits (-want +got):\n%s", diff)
	}
	if c.Image != "https://cdn.example/mira.png" {
		t.Errorf("image = %q", c.Image)
	}
	if c.Info.ID != 0 || c.Info.SourceFile != "a.txt" {
		t.Errorf("meta must not be replaced: %+v", c.Info)
	}
	if draft.Image != "" {
		t.Error("input draft mutated")
	}

	if _, err := ApplyDefaults(draft, map[string]any{"image": 42}); err == nil {
		t.Error("expected error for mistyped default")
	}
}
