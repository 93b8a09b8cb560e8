package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/shiver/pkg/shiver/ingest"
)

// Stoplist is a YAML list of extra stopwords.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// LoadVocabulary reads a vocabulary YAML file.
func LoadVocabulary(path string) (*ingest.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ingest.ParseVocabulary(data)
}

// Loader loads the word lists and constructs the lexical components.
type Loader struct {
	VocabularyPath string
	StoplistPath   string
}

// Components holds the loaded lexical components.
type Components struct {
	Vocabulary *ingest.Vocabulary
	Tokenizer  *ingest.Tokenizer
	Analyzer   *ingest.Analyzer
}

// NewLoader reads paths from cfg.
func NewLoader(cfg *Config) *Loader {
	return &Loader{VocabularyPath: cfg.Vocabulary.Path, StoplistPath: cfg.Vocabulary.Stoplist}
}

// Load merges configured files over the built-in vocabulary.
func (l *Loader) Load() (*Components, error) {
	vocab := ingest.DefaultVocabulary()

	if l.VocabularyPath != "" {
		extra, err := LoadVocabulary(l.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		vocab.Merge(extra)
	}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		vocab.SetStopwords(append(vocab.Stopwords(), sl.Terms...))
	}

	return &Components{
		Vocabulary: vocab,
		Tokenizer:  ingest.NewTokenizer(vocab.Stopwords()),
		Analyzer:   ingest.NewAnalyzer(vocab),
	}, nil
}
