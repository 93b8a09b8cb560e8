package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

const exportFormat = "shiver-templates"

// Metadata marks an export file.
type Metadata struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
}

type exportFile struct {
	Metadata  *Metadata  `json:"_metadata"`
	Templates []Template `json:"templates"`
}

// Export writes every template as pretty-printed JSON.
func (s *Store) Export(w io.Writer) error {
	list := s.List()
	out := exportFile{
		Metadata: &Metadata{
			Format:     exportFormat,
			Version:    1,
			ExportedAt: s.now().UTC(),
			Count:      len(list),
		},
		Templates: list,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Import reads an export file. Every template is validated before any is
// stored; one bad entry rejects the whole file.
func (s *Store) Import(r io.Reader) (int, error) {
	var in exportFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("%w: %v", internalerr.ErrInvalidTemplate, err)
	}
	if in.Metadata == nil || in.Metadata.Format != exportFormat {
		return 0, fmt.Errorf("%w: not a template export (missing _metadata)", internalerr.ErrInvalidTemplate)
	}
	for i := range in.Templates {
		if err := in.Templates[i].Validate(); err != nil {
			return 0, fmt.Errorf("template %d: %w", i, err)
		}
	}

	s.mu.Lock()
	for _, t := range in.Templates {
		s.items[t.Name] = t.clone()
	}
	s.mu.Unlock()
	return len(in.Templates), nil
}

// Load imports path. A missing file is not an error.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.Import(f)
	return err
}

// Save exports to path, replacing it atomically.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".templates-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := s.Export(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
