package dispatch

import (
	"testing"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/ingest"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

func TestEveryPredefinedLabelResolves(t *testing.T) {
	want := map[content.Label]records.Kind{
		content.LabelCharacterDescription: records.KindCharacter,
		content.LabelCharacterBackstory:   records.KindCharacter,
		content.LabelLocationDescription:  records.KindLocation,
		content.LabelSceneSetting:         records.KindLocation,
		content.LabelPlotSummary:          records.KindChapter,
		content.LabelDialogueScene:        records.KindChapter,
		content.LabelConflictDescription:  records.KindCase,
		content.LabelWorldBuilding:        records.KindMedia,
		content.LabelCustom:               records.KindMedia,
	}
	for _, l := range content.PredefinedLabels() {
		r := Resolve(l)
		if !r.Shape.Valid() {
			t.Errorf("label %s resolves to invalid shape %q", l, r.Shape)
		}
		if !r.Branch.Known() {
			t.Errorf("label %s resolves to unknown branch %q", l, r.Branch)
		}
		if r.Shape != want[l] {
			t.Errorf("label %s -> %s, want %s", l, r.Shape, want[l])
		}
	}
	if len(Labels()) != len(content.PredefinedLabels()) {
		t.Errorf("table has %d labels, want %d", len(Labels()), len(content.PredefinedLabels()))
	}
}

func TestUnknownLabelFallsBackToMedia(t *testing.T) {
	for _, l := range []content.Label{"", "haunted-objects", "CHARACTER-DESCRIPTION"} {
		r := Resolve(l)
		if r != Fallback {
			t.Errorf("Resolve(%q) = %+v, want fallback", l, r)
		}
	}
	if Fallback.Branch != ingest.BranchGeneral || Fallback.Shape != records.KindMedia {
		t.Errorf("unexpected fallback %+v", Fallback)
	}
}

func TestResolveTrimsWhitespace(t *testing.T) {
	if Resolve(" scene-setting ").Shape != records.KindLocation {
		t.Error("labels should be trimmed before lookup")
	}
}
