// Package manifest reads batch import manifests: JSONL files where every
// line names one document, its context label, and either inline text or a
// path relative to the manifest.
package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/extract"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

// Entry is one manifest line.
type Entry struct {
	Label       string `json:"label"`
	FileName    string `json:"fileName"`
	Path        string `json:"path,omitempty"`
	Text        string `json:"text,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Batch groups the uploads that share a label, in first-seen label order.
type Batch struct {
	Label   content.Label
	Uploads []extract.Upload
}

// Load reads path. Malformed lines are skipped with a warning; a manifest
// with no usable line is an error.
func Load(path string, log *logger.Logger) ([]Batch, error) {
	log = logger.OrDiscard(log).Component("manifest")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Dir(path)
	var (
		batches []Batch
		index   = make(map[content.Label]int)
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			log.WithError(err).WithField("line", n).Warn("skipping malformed manifest line")
			continue
		}
		up, err := e.upload(base)
		if err != nil {
			log.WithError(err).WithField("line", n).Warn("skipping manifest entry")
			continue
		}

		label := content.Label(e.Label).Normalize()
		i, ok := index[label]
		if !ok {
			i = len(batches)
			index[label] = i
			batches = append(batches, Batch{Label: label})
		}
		batches[i].Uploads = append(batches[i].Uploads, up)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: no valid entries in %s", internalerr.ErrInvalidInput, path)
	}
	return batches, nil
}

func (e Entry) upload(base string) (extract.Upload, error) {
	if strings.TrimSpace(e.Label) == "" {
		return extract.Upload{}, fmt.Errorf("%w: label is required", internalerr.ErrInvalidInput)
	}

	switch {
	case e.Path != "":
		path := e.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return extract.Upload{}, err
		}
		name := e.FileName
		if name == "" {
			name = filepath.Base(path)
		}
		ct := e.ContentType
		if ct == "" {
			ct = extract.ContentTypeFor(name)
		}
		return extract.Upload{FileName: name, ContentType: ct, Data: data}, nil
	case e.FileName != "":
		ct := e.ContentType
		if ct == "" {
			ct = extract.MIMEText
		}
		return extract.Upload{FileName: e.FileName, ContentType: ct, Data: []byte(e.Text)}, nil
	default:
		return extract.Upload{}, fmt.Errorf("%w: fileName or path is required", internalerr.ErrInvalidInput)
	}
}
