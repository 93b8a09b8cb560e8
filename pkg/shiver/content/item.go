// Package content holds ExtractedContent items, the only entity in the
// pipeline with a lifecycle.
package content

import (
	"fmt"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

const (
	MinConfidence = 0.5
	MaxConfidence = 1.0
)

// Entities is the bag of heuristically extracted names and terms.
type Entities struct {
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	Keywords   []string `json:"keywords"`
	Emotions   []string `json:"emotions"`
	Actions    []string `json:"actions"`
}

// Empty reports whether nothing was extracted.
func (e Entities) Empty() bool {
	return len(e.Characters)+len(e.Locations)+len(e.Keywords)+len(e.Emotions)+len(e.Actions) == 0
}

func (e Entities) clone() Entities {
	return Entities{
		Characters: cloneStrings(e.Characters),
		Locations:  cloneStrings(e.Locations),
		Keywords:   cloneStrings(e.Keywords),
		Emotions:   cloneStrings(e.Emotions),
		Actions:    cloneStrings(e.Actions),
	}
}

// ParsedData is populated by the parse stage.
type ParsedData struct {
	Entities       Entities  `json:"entities"`
	WordCount      int       `json:"wordCount"`
	CharacterCount int       `json:"characterCount"`
	ParsedAt       time.Time `json:"timestamp"`
}

// BlobRef points at the uploaded original in blob storage.
type BlobRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	URL    string `json:"url,omitempty"`
}

// Item is one uploaded document moving through the pipeline.
type Item struct {
	ID          string         `json:"id"`
	FileName    string         `json:"fileName"`
	Label       Label          `json:"contextLabel"`
	ContentType string         `json:"contentType,omitempty"`
	RawContent  string         `json:"rawContent"`
	Blob        *BlobRef       `json:"blob,omitempty"`
	Annotation  string         `json:"annotation,omitempty"`
	Parsed      *ParsedData    `json:"parsedData,omitempty"`
	Mapped      records.Record `json:"-"`
	Confidence  *float64       `json:"confidence,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Status      Status         `json:"status"`
	SavedID     int64          `json:"savedId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Validate checks that the fields populated match the status.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: item id is required", internalerr.ErrInvalidInput)
	}
	if !it.Status.Valid() {
		return fmt.Errorf("%w: item %s has invalid status %d", internalerr.ErrInvalidInput, it.ID, int(it.Status))
	}
	if it.Status.AtLeast(StatusParsed) {
		if it.Parsed == nil {
			return fmt.Errorf("%w: item %s is %s without parsed data", internalerr.ErrInvalidInput, it.ID, it.Status)
		}
		if it.Confidence == nil {
			return fmt.Errorf("%w: item %s is %s without confidence", internalerr.ErrInvalidInput, it.ID, it.Status)
		}
		if c := *it.Confidence; c < MinConfidence || c > MaxConfidence {
			return fmt.Errorf("%w: item %s confidence %.2f outside [%.1f, %.1f]", internalerr.ErrInvalidInput, it.ID, c, MinConfidence, MaxConfidence)
		}
	}
	if it.Status.AtLeast(StatusMapped) && it.Mapped == nil {
		return fmt.Errorf("%w: item %s is %s without a mapped template", internalerr.ErrInvalidInput, it.ID, it.Status)
	}
	if it.Status == StatusSaved && it.SavedID == 0 {
		return fmt.Errorf("%w: item %s is saved without an identifier", internalerr.ErrInvalidInput, it.ID)
	}
	return nil
}

// Clone returns a deep copy.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	out := *it
	if it.Blob != nil {
		b := *it.Blob
		out.Blob = &b
	}
	if it.Parsed != nil {
		p := *it.Parsed
		p.Entities = it.Parsed.Entities.clone()
		out.Parsed = &p
	}
	if it.Mapped != nil {
		out.Mapped = it.Mapped.Clone()
	}
	if it.Confidence != nil {
		c := *it.Confidence
		out.Confidence = &c
	}
	out.Suggestions = cloneStrings(it.Suggestions)
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
