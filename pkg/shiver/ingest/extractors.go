package ingest

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKeywordLimit is how many ranked keywords the general extractor keeps.
const DefaultKeywordLimit = 10

// locationLookback is how many words before an indicator are checked for a
// proper noun.
const locationLookback = 2

var properNounPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// Extractor runs the primitive entity scans against one vocabulary.
type Extractor struct {
	vocab     *Vocabulary
	tokenizer *Tokenizer
}

// NewExtractor creates an extractor over vocab.
func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{
		vocab:     vocab,
		tokenizer: NewTokenizer(vocab.Stopwords()),
	}
}

// Tokenizer returns the keyword tokenizer so callers (search) tokenize the
// same way.
func (e *Extractor) Tokenizer() *Tokenizer {
	return e.tokenizer
}

// Characters finds capitalized words that are not function words or place
// nouns. First-seen order, no duplicates.
func (e *Extractor) Characters(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range properNounPattern.FindAllString(text, -1) {
		if e.vocab.IsCapitalizedStop(m) || e.vocab.IsLocationIndicator(m) {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Locations finds place nouns. When one of the two preceding words is a
// capitalized name the pair is reported as "<Name> <noun>", otherwise the
// bare noun. A capitalized indicator can serve as the name ("Harbor
// street"); it is then reported only inside the pair.
func (e *Extractor) Locations(text string) []string {
	words := Words(text)
	phrases := make(map[int]string)
	absorbed := make(map[int]bool)

	for i, w := range words {
		noun := strings.ToLower(w)
		if !e.vocab.IsLocationIndicator(noun) {
			continue
		}
		phrase := noun
		for j := i - 1; j >= 0 && j >= i-locationLookback; j-- {
			prev := words[j]
			if isCapitalized(prev) && !e.vocab.IsCapitalizedStop(prev) {
				phrase = prev + " " + noun
				if e.vocab.IsLocationIndicator(strings.ToLower(prev)) {
					absorbed[j] = true
				}
				break
			}
		}
		phrases[i] = phrase
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range words {
		phrase, ok := phrases[i]
		if !ok || absorbed[i] {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

// Terms returns the lower-cased words of text that belong to class.
func (e *Extractor) Terms(text, class string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range Words(text) {
		lw := strings.ToLower(w)
		if !e.vocab.InClass(class, lw) {
			continue
		}
		if _, ok := seen[lw]; ok {
			continue
		}
		seen[lw] = struct{}{}
		out = append(out, lw)
	}
	return out
}

// Keywords ranks non-stopword tokens longer than three characters by
// frequency and returns the top n. Ties keep first-occurrence order.
func (e *Extractor) Keywords(text string, n int) []string {
	if n <= 0 {
		n = DefaultKeywordLimit
	}

	type ranked struct {
		token string
		count int
		first int
	}
	index := make(map[string]int)
	var list []ranked

	for pos, tok := range e.tokenizer.Tokenize(text) {
		if utf8.RuneCountInString(tok) <= 3 {
			continue
		}
		if i, ok := index[tok]; ok {
			list[i].count++
			continue
		}
		index[tok] = len(list)
		list = append(list, ranked{token: tok, count: 1, first: pos})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].first < list[j].first
	})
	if len(list) > n {
		list = list[:n]
	}

	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.token
	}
	return out
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

// union concatenates lists, dropping duplicates, and caps the result at limit
// when limit > 0.
func union(limit int, lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}
