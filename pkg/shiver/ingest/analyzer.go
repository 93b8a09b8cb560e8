package ingest

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/shiver/pkg/shiver/content"
)

// Branch selects which extractor set runs for a piece of content.
type Branch string

const (
	BranchCharacter Branch = "character"
	BranchSetting   Branch = "setting"
	BranchNarrative Branch = "narrative"
	BranchConflict  Branch = "conflict"
	BranchGeneral   Branch = "general"
)

// Confidence scoring constants. The score is a heuristic, not a probability.
const (
	baseConfidence      = 0.5
	characterBonus      = 0.2
	entityBonus         = 0.1
	labelBonus          = 0.1
	shortContentWords   = 50
	minTraitsForBonus   = 2
	minPartiesForBonus  = 2
	minPlacesForBonus   = 2
	minAtmosphereTokens = 2
)

// Analysis is the result of parsing one piece of content.
type Analysis struct {
	Entities       content.Entities
	Confidence     float64
	Suggestions    []string
	WordCount      int
	CharacterCount int
}

type branchSpec struct {
	extract func(e *Extractor, text string) content.Entities
	// bonus returns up to two extra label-specific increments.
	bonus   func(ents content.Entities) float64
	suggest func(ents content.Entities) []string
}

var branches = map[Branch]branchSpec{
	BranchCharacter: {
		extract: func(e *Extractor, text string) content.Entities {
			return content.Entities{
				Characters: e.Characters(text),
				Locations:  e.Locations(text),
				Keywords:   union(0, e.Terms(text, ClassTraits), e.Terms(text, ClassFeatures)),
				Emotions:   e.Terms(text, ClassEmotions),
			}
		},
		bonus: func(ents content.Entities) float64 {
			var b float64
			if len(ents.Keywords) >= minTraitsForBonus {
				b += labelBonus
			}
			if len(ents.Characters) > 0 && len(ents.Emotions) > 0 {
				b += labelBonus
			}
			return b
		},
		suggest: func(ents content.Entities) []string {
			var s []string
			if len(ents.Keywords) < minTraitsForBonus {
				s = append(s, "Few character traits found. Describe personality and appearance in more detail.")
			}
			if len(ents.Emotions) == 0 {
				s = append(s, "No emotional cues found. Add how the character feels or reacts.")
			}
			return s
		},
	},
	BranchSetting: {
		extract: func(e *Extractor, text string) content.Entities {
			return content.Entities{
				Characters: e.Characters(text),
				Locations:  e.Locations(text),
				Keywords:   e.Terms(text, ClassAtmosphere),
				Emotions:   e.Terms(text, ClassEmotions),
			}
		},
		bonus: func(ents content.Entities) float64 {
			var b float64
			if len(ents.Locations) >= minPlacesForBonus {
				b += labelBonus
			}
			if len(ents.Keywords) >= minAtmosphereTokens {
				b += labelBonus
			}
			return b
		},
		suggest: func(ents content.Entities) []string {
			if len(ents.Keywords) == 0 {
				return []string{"Add sensory details such as light, sound or smell to strengthen the setting."}
			}
			return nil
		},
	},
	BranchNarrative: {
		extract: func(e *Extractor, text string) content.Entities {
			return content.Entities{
				Characters: e.Characters(text),
				Locations:  e.Locations(text),
				Keywords:   e.Keywords(text, DefaultKeywordLimit),
				Emotions:   e.Terms(text, ClassEmotions),
				Actions:    e.Terms(text, ClassActions),
			}
		},
		bonus: partiesAndActionsBonus,
		suggest: func(ents content.Entities) []string {
			var s []string
			if len(ents.Actions) == 0 {
				s = append(s, "No clear actions found. Summaries work best with concrete events.")
			}
			if len(ents.Characters) < minPartiesForBonus {
				s = append(s, "Fewer than two characters found. Scenes usually involve several named characters.")
			}
			return s
		},
	},
	BranchConflict: {
		extract: func(e *Extractor, text string) content.Entities {
			return content.Entities{
				Characters: e.Characters(text),
				Locations:  e.Locations(text),
				Keywords:   union(DefaultKeywordLimit, e.Terms(text, ClassConflict), e.Keywords(text, DefaultKeywordLimit)),
				Emotions:   e.Terms(text, ClassEmotions),
				Actions:    e.Terms(text, ClassActions),
			}
		},
		bonus: partiesAndActionsBonus,
		suggest: func(ents content.Entities) []string {
			var s []string
			if len(ents.Characters) < minPartiesForBonus {
				s = append(s, "Conflicts usually involve at least two parties. Name both sides.")
			}
			if len(ents.Keywords) == 0 {
				s = append(s, "No evidence-like keywords found. Mention motives, clues or weapons.")
			}
			return s
		},
	},
	BranchGeneral: {
		extract: func(e *Extractor, text string) content.Entities {
			return content.Entities{
				Characters: e.Characters(text),
				Locations:  e.Locations(text),
				Keywords:   e.Keywords(text, DefaultKeywordLimit),
				Emotions:   e.Terms(text, ClassEmotions),
			}
		},
		bonus: func(content.Entities) float64 { return 0 },
		suggest: func(ents content.Entities) []string {
			if len(ents.Keywords) == 0 {
				return []string{"No recurring keywords found. Consider a more specific context label."}
			}
			return nil
		},
	},
}

func partiesAndActionsBonus(ents content.Entities) float64 {
	var b float64
	if len(ents.Actions) > 0 {
		b += labelBonus
	}
	if len(ents.Characters) >= minPartiesForBonus {
		b += labelBonus
	}
	return b
}

// Branches lists every extractor branch.
func Branches() []Branch {
	return []Branch{BranchCharacter, BranchSetting, BranchNarrative, BranchConflict, BranchGeneral}
}

// Known reports whether b has an extractor set.
func (b Branch) Known() bool {
	_, ok := branches[b]
	return ok
}

// Analyzer turns raw text into an entity bag, a confidence score and
// suggestions.
type Analyzer struct {
	extractor *Extractor
}

// NewAnalyzer creates an analyzer over vocab.
func NewAnalyzer(vocab *Vocabulary) *Analyzer {
	return &Analyzer{extractor: NewExtractor(vocab)}
}

// Extractor exposes the underlying primitive scans.
func (a *Analyzer) Extractor() *Extractor {
	return a.extractor
}

// Analyze runs branch over text. Unknown branches use the general extractor.
func (a *Analyzer) Analyze(branch Branch, text string) Analysis {
	if !branch.Known() {
		branch = BranchGeneral
	}
	spec := branches[branch]

	ents := spec.extract(a.extractor, text)
	words := len(strings.Fields(text))

	return Analysis{
		Entities:       ents,
		Confidence:     score(ents, spec.bonus(ents)),
		Suggestions:    append(spec.suggest(ents), generalSuggestions(ents, words)...),
		WordCount:      words,
		CharacterCount: utf8.RuneCountInString(text),
	}
}

func score(ents content.Entities, bonus float64) float64 {
	c := baseConfidence
	if len(ents.Characters) > 0 {
		c += characterBonus
	}
	if len(ents.Locations) > 0 {
		c += entityBonus
	}
	if len(ents.Keywords) > 0 {
		c += entityBonus
	}
	if len(ents.Emotions) > 0 {
		c += entityBonus
	}
	c += math.Min(bonus, 2*labelBonus)

	c = math.Round(c*100) / 100
	return math.Max(content.MinConfidence, math.Min(content.MaxConfidence, c))
}

func generalSuggestions(ents content.Entities, words int) []string {
	var s []string
	if ents.Empty() {
		s = append(s, "Nothing could be extracted. Check that the content label matches the text.")
	}
	if len(ents.Characters) == 0 {
		s = append(s, "No character names detected. Capitalize proper names so they can be recognized.")
	}
	if len(ents.Locations) == 0 {
		s = append(s, "No locations detected. Mention places with words like city, street or forest.")
	}
	if words < shortContentWords {
		s = append(s, "Content is short. Longer passages give better extraction results.")
	}
	return s
}
