package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

const (
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
	listTimeout   = 30 * time.Second
)

// GCSOptions configures the Cloud Storage backend.
type GCSOptions struct {
	CredentialsFile string
	// CDNDomain, when set, serves public URLs from https://<domain>/<key>.
	CDNDomain string
}

// GCS stores objects in Google Cloud Storage.
type GCS struct {
	log    *logger.Logger
	client *storage.Client
	cdn    string
}

var _ Store = (*GCS)(nil)

// NewGCS opens a storage client. Without a credentials file the default
// application credentials are used.
func NewGCS(ctx context.Context, opts GCSOptions, log *logger.Logger) (*GCS, error) {
	clientOpts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create storage client: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &GCS{
		log:    logger.OrDiscard(log).Component("blob.gcs"),
		client: client,
		cdn:    strings.TrimSuffix(opts.CDNDomain, "/"),
	}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Upload(ctx context.Context, obj Object) (Ref, error) {
	if obj.Bucket == "" {
		return Ref{}, fmt.Errorf("%w: bucket is required", internalerr.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := Key(obj.Folder, obj.Name)
	w := g.client.Bucket(obj.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := io.Copy(w, bytes.NewReader(obj.Data)); err != nil {
		_ = w.Close()
		return Ref{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return Ref{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	g.log.WithField("bucket", obj.Bucket).WithField("key", key).Debug("uploaded object")
	return Ref{Bucket: obj.Bucket, Path: key, URL: PublicURL(obj.Bucket, g.cdn, key)}, nil
}

func (g *GCS) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", internalerr.ErrNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object %q: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (g *GCS) Remove(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := g.client.Bucket(bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s/%s", internalerr.ErrNotFound, bucket, key)
	}
	if err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

func (g *GCS) List(ctx context.Context, bucket, folder string) ([]Ref, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	prefix := strings.Trim(folder, "/")
	if prefix != "" {
		prefix += "/"
	}
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []Ref{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Ref{Bucket: bucket, Path: attrs.Name, URL: PublicURL(bucket, g.cdn, attrs.Name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// PublicURL is the browser-facing address of an object.
func PublicURL(bucket, cdnDomain, key string) string {
	if cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}
