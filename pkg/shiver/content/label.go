package content

import "strings"

// Label is the operator-chosen context tag of an upload. Anything outside the
// predefined set is a free-form custom label.
type Label string

const (
	LabelCharacterDescription Label = "character-description"
	LabelCharacterBackstory   Label = "character-backstory"
	LabelLocationDescription  Label = "location-description"
	LabelSceneSetting         Label = "scene-setting"
	LabelPlotSummary          Label = "plot-summary"
	LabelDialogueScene        Label = "dialogue-scene"
	LabelWorldBuilding        Label = "world-building"
	LabelConflictDescription  Label = "conflict-description"
	LabelCustom               Label = "custom"
)

// PredefinedLabels lists the nine built-in labels.
func PredefinedLabels() []Label {
	return []Label{
		LabelCharacterDescription,
		LabelCharacterBackstory,
		LabelLocationDescription,
		LabelSceneSetting,
		LabelPlotSummary,
		LabelDialogueScene,
		LabelWorldBuilding,
		LabelConflictDescription,
		LabelCustom,
	}
}

// Predefined reports whether l is one of the built-in labels.
func (l Label) Predefined() bool {
	for _, p := range PredefinedLabels() {
		if l == p {
			return true
		}
	}
	return false
}

// Normalize trims surrounding whitespace; labels are otherwise kept verbatim.
func (l Label) Normalize() Label {
	return Label(strings.TrimSpace(string(l)))
}
