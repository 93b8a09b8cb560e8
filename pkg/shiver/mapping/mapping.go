// Package mapping turns a parsed content item into a draft domain record.
// Every field comes from slicing the raw text, copying entity lists or
// substituting a default; nothing here is smarter than that.
package mapping

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

const (
	ShortLimit = 200
	LongLimit  = 400
	Ellipsis   = "..."

	UnknownCharacter = "Unknown Character"
	UnknownLocation  = "Unknown Location"
	UntitledChapter  = "Untitled Chapter"
	UntitledCase     = "Untitled Case"
	UntitledMedia    = "Untitled Media"

	CaseStatusOpen = "Open"
	dateLayout     = "2006-01-02"
)

// Input is everything a builder may read.
type Input struct {
	FileName    string
	Label       content.Label
	ContentType string
	Raw         string
	Entities    content.Entities
	BlobURL     string
}

// InputFrom collects the mapping input of an item.
func InputFrom(it *content.Item) Input {
	in := Input{
		FileName:    it.FileName,
		Label:       it.Label,
		ContentType: it.ContentType,
		Raw:         it.RawContent,
	}
	if it.Parsed != nil {
		in.Entities = it.Parsed.Entities
	}
	if it.Blob != nil {
		in.BlobURL = it.Blob.URL
	}
	return in
}

// Mapper builds drafts. The clock only affects CaseFile dates.
type Mapper struct {
	now func() time.Time
}

// New creates a mapper; a nil clock uses time.Now.
func New(now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{now: now}
}

type builder func(m *Mapper, in Input) records.Record

var builders = map[records.Kind]builder{
	records.KindCharacter: buildCharacter,
	records.KindLocation:  buildLocation,
	records.KindChapter:   buildChapter,
	records.KindCase:      buildCase,
	records.KindMedia:     buildMedia,
}

// Build returns a draft of the given shape. Unknown shapes build Media.
func (m *Mapper) Build(shape records.Kind, in Input) records.Record {
	b, ok := builders[shape]
	if !ok {
		b = buildMedia
	}
	rec := b(m, in)
	meta := rec.Meta()
	meta.SourceFile = in.FileName
	meta.Label = string(in.Label)
	return rec
}

func buildCharacter(_ *Mapper, in Input) records.Record {
	return &records.Character{
		Name:        first(in.Entities.Characters, UnknownCharacter),
		Description: Truncate(in.Raw, ShortLimit),
		Background:  Truncate(in.Raw, LongLimit),
		Traits:      copyList(in.Entities.Keywords),
		Tags:        copyList(in.Entities.Emotions),
	}
}

func buildLocation(_ *Mapper, in Input) records.Record {
	return &records.Location{
		Name:        first(in.Entities.Locations, UnknownLocation),
		Description: Truncate(in.Raw, ShortLimit),
		Details:     Truncate(in.Raw, LongLimit),
		Features:    copyList(in.Entities.Keywords),
		Inhabitants: copyList(in.Entities.Characters),
		Tags:        copyList(in.Entities.Emotions),
	}
}

func buildChapter(_ *Mapper, in Input) records.Record {
	title := fileTitle(in.FileName)
	if title == "" {
		title = UntitledChapter
	}
	return &records.Chapter{
		Name:       title,
		Summary:    Truncate(in.Raw, LongLimit),
		Characters: copyList(in.Entities.Characters),
		Locations:  copyList(in.Entities.Locations),
		Tags:       concat(in.Entities.Keywords, in.Entities.Actions),
	}
}

func buildCase(m *Mapper, in Input) records.Record {
	var title string
	switch {
	case len(in.Entities.Characters) > 0:
		title = "Case: " + in.Entities.Characters[0]
	case fileTitle(in.FileName) != "":
		title = "Case: " + fileTitle(in.FileName)
	default:
		title = UntitledCase
	}
	return &records.CaseFile{
		Name:        title,
		Status:      CaseStatusOpen,
		Date:        m.now().Format(dateLayout),
		Description: Truncate(in.Raw, LongLimit),
		Suspects:    copyList(in.Entities.Characters),
		Locations:   copyList(in.Entities.Locations),
		Evidence:    copyList(in.Entities.Keywords),
	}
}

func buildMedia(_ *Mapper, in Input) records.Record {
	title := strings.TrimSpace(in.FileName)
	if title == "" {
		title = UntitledMedia
	}
	return &records.MediaItem{
		Name:        title,
		MediaType:   MediaType(in.ContentType),
		Description: Truncate(in.Raw, ShortLimit),
		URL:         in.BlobURL,
		Tags:        copyList(in.Entities.Keywords),
	}
}

// Truncate keeps the first n runes of the trimmed text and appends an
// ellipsis when anything was cut.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + Ellipsis
}

// MediaType buckets a MIME type into image, audio, video, text or document.
func MediaType(contentType string) string {
	ct := strings.ToLower(contentType)
	for _, prefix := range []string{"image", "audio", "video", "text"} {
		if strings.HasPrefix(ct, prefix+"/") {
			return prefix
		}
	}
	return "document"
}

func fileTitle(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func first(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return list[0]
}

// copyList always returns a non-nil slice so drafts serialize as [] not null.
func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
