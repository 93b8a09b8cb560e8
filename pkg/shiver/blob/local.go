package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

// Local keeps buckets as directories under Root.
type Local struct {
	Root string
	// BaseURL, when set, replaces file:// URLs with BaseURL/<bucket>/<key>.
	BaseURL string
}

var _ Store = (*Local)(nil)

// NewLocal creates the root directory if needed.
func NewLocal(root, baseURL string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: blob root is required", internalerr.ErrInvalidConfig)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Local{Root: abs, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Upload(ctx context.Context, obj Object) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	if obj.Bucket == "" {
		return Ref{}, fmt.Errorf("%w: bucket is required", internalerr.ErrInvalidInput)
	}
	key := Key(obj.Folder, obj.Name)
	full, err := l.path(obj.Bucket, key)
	if err != nil {
		return Ref{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Ref{}, fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(full, obj.Data, 0o644); err != nil {
		return Ref{}, fmt.Errorf("write %s: %w", key, err)
	}
	return Ref{Bucket: obj.Bucket, Path: key, URL: l.url(obj.Bucket, key, full)}, nil
}

func (l *Local) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	full, err := l.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", internalerr.ErrNotFound, bucket, key)
	}
	return data, err
}

func (l *Local) Remove(ctx context.Context, bucket, key string) error {
	full, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", internalerr.ErrNotFound, bucket, key)
		}
		return err
	}
	return nil
}

func (l *Local) List(ctx context.Context, bucket, folder string) ([]Ref, error) {
	dir, err := l.path(bucket, folder)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(l.Root, bucket)
	var out []Ref
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		out = append(out, Ref{Bucket: bucket, Path: key, URL: l.url(bucket, key, p)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// path resolves bucket/key under Root and refuses anything escaping it.
func (l *Local) path(bucket, key string) (string, error) {
	full := filepath.Join(l.Root, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes blob root", internalerr.ErrInvalidInput, key)
	}
	return full, nil
}

func (l *Local) url(bucket, key, full string) string {
	if l.BaseURL != "" {
		return l.BaseURL + "/" + bucket + "/" + key
	}
	return "file://" + filepath.ToSlash(full)
}
