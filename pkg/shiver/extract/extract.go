// Package extract turns uploaded files into plain text for the parse stage.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

const (
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEHTML     = "text/html"
	MIMEDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEBinary   = "application/octet-stream"
)

// Upload is a file as received from the operator.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Result is the text recovered from an upload.
type Result struct {
	Text        string
	ContentType string
	// Binary marks files whose text is only a placeholder; their bytes
	// must go to blob storage.
	Binary bool
}

// Extractor recovers text from one kind of file.
type Extractor interface {
	Extract(ctx context.Context, up Upload) (Result, error)
}

// Registry picks an extractor by file extension, then by MIME type, and
// falls back to the binary placeholder.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]Extractor
	byMIME   map[string]Extractor
	fallback Extractor
}

// NewRegistry returns a registry with the built-in extractors.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:    make(map[string]Extractor),
		byMIME:   make(map[string]Extractor),
		fallback: Binary{},
	}
	plain := Plain{}
	for _, ext := range []string{".txt", ".text", ".md", ".markdown"} {
		r.Register(ext, plain)
	}
	r.Register(".docx", Docx{})
	r.Register(".html", HTML{})
	r.Register(".htm", HTML{})

	r.RegisterMIME(MIMEText, plain)
	r.RegisterMIME(MIMEMarkdown, plain)
	r.RegisterMIME(MIMEDocx, Docx{})
	r.RegisterMIME(MIMEHTML, HTML{})
	return r
}

// Register binds an extension (with or without the leading dot).
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.mu.Lock()
	r.byExt[ext] = e
	r.mu.Unlock()
}

// RegisterMIME binds a MIME type, used when the extension is unknown.
func (r *Registry) RegisterMIME(contentType string, e Extractor) {
	r.mu.Lock()
	r.byMIME[baseMIME(contentType)] = e
	r.mu.Unlock()
}

// For returns the extractor that will handle up.
func (r *Registry) For(up Upload) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byExt[strings.ToLower(filepath.Ext(up.FileName))]; ok {
		return e
	}
	if e, ok := r.byMIME[baseMIME(up.ContentType)]; ok {
		return e
	}
	return r.fallback
}

// Extract dispatches up to its extractor. The result always carries a
// content type.
func (r *Registry) Extract(ctx context.Context, up Upload) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(up.FileName) == "" {
		return Result{}, fmt.Errorf("%w: file name is required", internalerr.ErrInvalidInput)
	}
	res, err := r.For(up).Extract(ctx, up)
	if err != nil {
		return Result{}, err
	}
	if res.ContentType == "" {
		res.ContentType = up.ContentType
	}
	if res.ContentType == "" {
		res.ContentType = ContentTypeFor(up.FileName)
	}
	return res, nil
}

var knownTypes = map[string]string{
	".txt":      MIMEText,
	".text":     MIMEText,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".docx":     MIMEDocx,
	".pdf":      "application/pdf",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".mp3":      "audio/mpeg",
	".wav":      "audio/wav",
	".mp4":      "video/mp4",
}

// ContentTypeFor guesses a MIME type from a file name.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return baseMIME(ct)
	}
	return MIMEBinary
}

func baseMIME(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
