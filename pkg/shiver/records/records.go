// Package records defines the five domain record shapes a draft can take and
// the helpers every collection store uses to stamp identity onto them.
package records

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a domain collection.
type Kind string

const (
	KindCharacter Kind = "character"
	KindLocation  Kind = "location"
	KindChapter   Kind = "chapter"
	KindCase      Kind = "case"
	KindMedia     Kind = "media"
)

// Kinds lists every collection in display order.
func Kinds() []Kind {
	return []Kind{KindCharacter, KindLocation, KindChapter, KindCase, KindMedia}
}

// Valid reports whether k is one of the known collections.
func (k Kind) Valid() bool {
	switch k {
	case KindCharacter, KindLocation, KindChapter, KindCase, KindMedia:
		return true
	}
	return false
}

// ParseKind converts a collection name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown record kind %q", s)
	}
	return k, nil
}

// Meta is the identity shared by every record. ID and Route are zero until a
// collection store accepts the record.
type Meta struct {
	ID         int64     `json:"id,omitempty"`
	Route      string    `json:"route,omitempty"`
	SourceFile string    `json:"sourceFile,omitempty"`
	Label      string    `json:"label,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Record is a draft or persisted domain record.
type Record interface {
	Kind() Kind
	// Title is the record's display name; the route is derived from it.
	Title() string
	Meta() *Meta
	Clone() Record
}

// Character is a person in the story world.
type Character struct {
	Info        Meta     `json:"meta"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Background  string   `json:"background"`
	Traits      []string `json:"traits"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image,omitempty"`
}

func (c *Character) Kind() Kind    { return KindCharacter }
func (c *Character) Title() string { return c.Name }
func (c *Character) Meta() *Meta   { return &c.Info }
func (c *Character) Clone() Record {
	out := *c
	out.Traits = cloneStrings(c.Traits)
	out.Tags = cloneStrings(c.Tags)
	return &out
}

// Location is a place in the story world.
type Location struct {
	Info        Meta     `json:"meta"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Details     string   `json:"details"`
	Features    []string `json:"features"`
	Inhabitants []string `json:"inhabitants"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image,omitempty"`
}

func (l *Location) Kind() Kind    { return KindLocation }
func (l *Location) Title() string { return l.Name }
func (l *Location) Meta() *Meta   { return &l.Info }
func (l *Location) Clone() Record {
	out := *l
	out.Features = cloneStrings(l.Features)
	out.Inhabitants = cloneStrings(l.Inhabitants)
	out.Tags = cloneStrings(l.Tags)
	return &out
}

// Chapter is a unit of narrative.
type Chapter struct {
	Info       Meta     `json:"meta"`
	Name       string   `json:"title"`
	Summary    string   `json:"summary"`
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	Tags       []string `json:"tags"`
}

func (c *Chapter) Kind() Kind    { return KindChapter }
func (c *Chapter) Title() string { return c.Name }
func (c *Chapter) Meta() *Meta   { return &c.Info }
func (c *Chapter) Clone() Record {
	out := *c
	out.Characters = cloneStrings(c.Characters)
	out.Locations = cloneStrings(c.Locations)
	out.Tags = cloneStrings(c.Tags)
	return &out
}

// CaseFile is an in-world investigation.
type CaseFile struct {
	Info        Meta     `json:"meta"`
	Name        string   `json:"title"`
	Status      string   `json:"status"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Suspects    []string `json:"suspects"`
	Locations   []string `json:"locations"`
	Evidence    []string `json:"evidence"`
}

func (c *CaseFile) Kind() Kind    { return KindCase }
func (c *CaseFile) Title() string { return c.Name }
func (c *CaseFile) Meta() *Meta   { return &c.Info }
func (c *CaseFile) Clone() Record {
	out := *c
	out.Suspects = cloneStrings(c.Suspects)
	out.Locations = cloneStrings(c.Locations)
	out.Evidence = cloneStrings(c.Evidence)
	return &out
}

// MediaItem is any multimedia or uncategorised upload.
type MediaItem struct {
	Info        Meta     `json:"meta"`
	Name        string   `json:"title"`
	MediaType   string   `json:"type"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	Tags        []string `json:"tags"`
}

func (m *MediaItem) Kind() Kind    { return KindMedia }
func (m *MediaItem) Title() string { return m.Name }
func (m *MediaItem) Meta() *Meta   { return &m.Info }
func (m *MediaItem) Clone() Record {
	out := *m
	out.Tags = cloneStrings(m.Tags)
	return &out
}

// New returns an empty record of the given kind.
func New(k Kind) (Record, error) {
	switch k {
	case KindCharacter:
		return &Character{}, nil
	case KindLocation:
		return &Location{}, nil
	case KindChapter:
		return &Chapter{}, nil
	case KindCase:
		return &CaseFile{}, nil
	case KindMedia:
		return &MediaItem{}, nil
	}
	return nil, fmt.Errorf("unknown record kind %q", k)
}

// Stamp assigns the collection identifier and derived route to rec. An
// existing route is kept so operator edits survive persistence.
func Stamp(rec Record, id int64, now time.Time) {
	m := rec.Meta()
	m.ID = id
	if m.Route == "" {
		m.Route = RouteFor(rec.Title(), id)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now.UTC()
	}
}

// RouteFor derives a URL slug from a record name: lower-cased, spaces become
// hyphens, anything outside [a-z0-9-] is dropped. Falls back to "item-<id>".
func RouteFor(name string, id int64) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("item-%d", id)
	}
	return b.String()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
