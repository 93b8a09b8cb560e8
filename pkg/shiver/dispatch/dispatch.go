// Package dispatch maps context labels to the extractor branch that parses
// them and the record shape they are mapped into. Both stages consult this
// table.
package dispatch

import (
	"sort"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/ingest"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

// Route is what a label resolves to.
type Route struct {
	Branch ingest.Branch
	Shape  records.Kind
}

// Fallback is used for world-building, custom and any unknown label.
var Fallback = Route{Branch: ingest.BranchGeneral, Shape: records.KindMedia}

var table = map[content.Label]Route{
	content.LabelCharacterDescription: {ingest.BranchCharacter, records.KindCharacter},
	content.LabelCharacterBackstory:   {ingest.BranchCharacter, records.KindCharacter},
	content.LabelLocationDescription:  {ingest.BranchSetting, records.KindLocation},
	content.LabelSceneSetting:         {ingest.BranchSetting, records.KindLocation},
	content.LabelPlotSummary:          {ingest.BranchNarrative, records.KindChapter},
	content.LabelDialogueScene:        {ingest.BranchNarrative, records.KindChapter},
	content.LabelConflictDescription:  {ingest.BranchConflict, records.KindCase},
	content.LabelWorldBuilding:        Fallback,
	content.LabelCustom:               Fallback,
}

// Resolve returns the route for label. It never fails.
func Resolve(label content.Label) Route {
	if r, ok := table[label.Normalize()]; ok {
		return r
	}
	return Fallback
}

// Labels returns every label with an explicit entry, sorted.
func Labels() []content.Label {
	out := make([]content.Label, 0, len(table))
	for l := range table {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
