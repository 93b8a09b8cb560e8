// Package search ranks records across every collection against a free-text
// query.
package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/cognicore/shiver/pkg/shiver/ingest"
	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/store"
)

const (
	DefaultLimit = 20
	titleWeight  = 2.0
	bodyWeight   = 1.0
)

// Hit is one ranked record.
type Hit struct {
	Kind   records.Kind
	ID     int64
	Title  string
	Route  string
	Score  float64
	Record records.Record
}

// Query narrows a search.
type Query struct {
	Text  string
	Kinds []records.Kind // empty means every collection
	Limit int
}

// Searcher scores store contents with the ingest tokenizer.
type Searcher struct {
	store     store.Store
	tokenizer *ingest.Tokenizer
}

// New creates a searcher. A nil tokenizer uses the default stopwords.
func New(st store.Store, tok *ingest.Tokenizer) *Searcher {
	if tok == nil {
		tok = ingest.NewTokenizer(ingest.DefaultVocabulary().Stopwords())
	}
	return &Searcher{store: st, tokenizer: tok}
}

// Search returns up to q.Limit hits, best first. Every query token found in
// a title scores 2, in any other text field 1.
func (s *Searcher) Search(ctx context.Context, q Query) ([]Hit, error) {
	terms := unique(s.tokenizer.Tokenize(q.Text))
	if len(terms) == 0 {
		return nil, nil
	}
	kinds := q.Kinds
	if len(kinds) == 0 {
		kinds = records.Kinds()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var hits []Hit
	for _, kind := range kinds {
		recs, err := s.store.GetAll(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			score := s.score(terms, rec)
			if score == 0 {
				continue
			}
			m := rec.Meta()
			hits = append(hits, Hit{Kind: kind, ID: m.ID, Title: rec.Title(), Route: m.Route, Score: score, Record: rec})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Searcher) score(terms []string, rec records.Record) float64 {
	title := set(s.tokenizer.Tokenize(rec.Title()))
	body := set(s.tokenizer.Tokenize(bodyText(rec)))

	var score float64
	for _, t := range terms {
		if title[t] {
			score += titleWeight
		}
		if body[t] {
			score += bodyWeight
		}
	}
	return score
}

// bodyText joins every text field except the title and meta block.
func bodyText(rec records.Record) string {
	raw, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	delete(fields, "meta")
	delete(fields, "name")
	delete(fields, "title")
	delete(fields, "url")
	delete(fields, "image")

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			parts = append(parts, v)
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

func set(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[t] = true
	}
	return out
}

func unique(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
