package ingest

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Word classes consulted by the extractors.
const (
	ClassTraits     = "traits"
	ClassFeatures   = "features"
	ClassEmotions   = "emotions"
	ClassActions    = "actions"
	ClassAtmosphere = "atmosphere"
	ClassConflict   = "conflict"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// VocabularyFile is the YAML layout of a vocabulary.
type VocabularyFile struct {
	Stopwords          []string            `yaml:"stopwords"`
	CapitalizedStops   []string            `yaml:"capitalized_stops"`
	LocationIndicators []string            `yaml:"location_indicators"`
	Classes            map[string][]string `yaml:"classes"`
}

// Vocabulary holds the fixed word lists behind every heuristic: stopwords for
// keyword ranking, capitalized function words that are not names, location
// indicator nouns, and named word classes (traits, emotions, ...).
type Vocabulary struct {
	stopwords  []string
	capStops   map[string]struct{}
	indicators map[string]struct{}
	classes    map[string]map[string]struct{}
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		capStops:   make(map[string]struct{}),
		indicators: make(map[string]struct{}),
		classes:    make(map[string]map[string]struct{}),
	}
}

// DefaultVocabulary returns the built-in word lists.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("ingest: embedded vocabulary is invalid: %v", err))
	}
	return v
}

// ParseVocabulary builds a vocabulary from YAML.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var f VocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return FromFile(f), nil
}

// FromFile builds a vocabulary from an already-decoded file.
func FromFile(f VocabularyFile) *Vocabulary {
	v := NewVocabulary()
	v.SetStopwords(f.Stopwords)
	v.AddCapitalizedStops(f.CapitalizedStops)
	v.AddLocationIndicators(f.LocationIndicators)
	for name, words := range f.Classes {
		v.AddClass(name, words)
	}
	return v
}

// Merge overlays other onto v: lists are unioned, nothing is removed.
func (v *Vocabulary) Merge(other *Vocabulary) {
	if other == nil {
		return
	}
	v.stopwords = append(v.stopwords, other.stopwords...)
	for w := range other.capStops {
		v.capStops[w] = struct{}{}
	}
	for w := range other.indicators {
		v.indicators[w] = struct{}{}
	}
	for name, words := range other.classes {
		for w := range words {
			v.addToClass(name, w)
		}
	}
}

// SetStopwords replaces the stopword list.
func (v *Vocabulary) SetStopwords(words []string) {
	v.stopwords = append([]string(nil), words...)
}

// Stopwords returns the keyword-ranking stopwords.
func (v *Vocabulary) Stopwords() []string {
	return append([]string(nil), v.stopwords...)
}

// AddCapitalizedStops adds words that look like names but are not.
func (v *Vocabulary) AddCapitalizedStops(words []string) {
	for _, w := range words {
		v.capStops[strings.ToLower(w)] = struct{}{}
	}
}

// AddLocationIndicators adds place nouns such as "street" or "forest".
func (v *Vocabulary) AddLocationIndicators(words []string) {
	for _, w := range words {
		v.indicators[strings.ToLower(w)] = struct{}{}
	}
}

// AddClass adds words to a named class.
func (v *Vocabulary) AddClass(name string, words []string) {
	for _, w := range words {
		v.addToClass(name, strings.ToLower(w))
	}
}

func (v *Vocabulary) addToClass(name, word string) {
	if v.classes[name] == nil {
		v.classes[name] = make(map[string]struct{})
	}
	v.classes[name][word] = struct{}{}
}

// IsCapitalizedStop reports whether a capitalized word is a known non-name.
func (v *Vocabulary) IsCapitalizedStop(word string) bool {
	_, ok := v.capStops[strings.ToLower(word)]
	return ok
}

// IsLocationIndicator reports whether word names a kind of place.
func (v *Vocabulary) IsLocationIndicator(word string) bool {
	_, ok := v.indicators[strings.ToLower(word)]
	return ok
}

// InClass reports whether the lower-cased word belongs to class.
func (v *Vocabulary) InClass(class, word string) bool {
	_, ok := v.classes[class][strings.ToLower(word)]
	return ok
}

// ClassSize returns the number of words in class.
func (v *Vocabulary) ClassSize(class string) int {
	return len(v.classes[class])
}
