// Package blob stores uploaded originals outside the workspace. Binary
// files always land here; text files only when uploads are enabled.
package blob

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object is a file to upload.
type Object struct {
	Bucket      string
	Folder      string
	Name        string
	ContentType string
	Data        []byte
}

// Ref locates a stored object.
type Ref struct {
	Bucket string
	Path   string
	URL    string
}

// Store is a bucket-style object store.
type Store interface {
	Upload(ctx context.Context, obj Object) (Ref, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Remove(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, folder string) ([]Ref, error)
}

// Key builds "<folder>/<uuid>-<name>" so repeated uploads of one file never
// collide.
func Key(folder, name string) string {
	file := uuid.NewString() + "-" + SanitizeName(name)
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return file
	}
	return path.Join(folder, file)
}

// SanitizeName keeps letters, digits, dot, dash and underscore; everything
// else becomes an underscore.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
