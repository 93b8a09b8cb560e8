package blob

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

// RetryingStore retries transient failures of another Store with
// exponential backoff. Not-found and invalid-input errors are final.
type RetryingStore struct {
	next       Store
	log        *logger.Logger
	maxElapsed time.Duration
	initial    time.Duration
}

var _ Store = (*RetryingStore)(nil)

// Retrying wraps s. A zero maxElapsed defaults to 15 seconds.
func Retrying(s Store, maxElapsed time.Duration, log *logger.Logger) *RetryingStore {
	if maxElapsed <= 0 {
		maxElapsed = 15 * time.Second
	}
	return &RetryingStore{
		next:       s,
		log:        logger.OrDiscard(log).Component("blob.retry"),
		maxElapsed: maxElapsed,
		initial:    backoff.DefaultInitialInterval,
	}
}

func (r *RetryingStore) Upload(ctx context.Context, obj Object) (Ref, error) {
	var ref Ref
	err := r.do(ctx, "upload", func() (err error) {
		ref, err = r.next.Upload(ctx, obj)
		return err
	})
	return ref, err
}

func (r *RetryingStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "download", func() (err error) {
		data, err = r.next.Download(ctx, bucket, key)
		return err
	})
	return data, err
}

func (r *RetryingStore) Remove(ctx context.Context, bucket, key string) error {
	return r.do(ctx, "remove", func() error {
		return r.next.Remove(ctx, bucket, key)
	})
}

func (r *RetryingStore) List(ctx context.Context, bucket, folder string) ([]Ref, error) {
	var refs []Ref
	err := r.do(ctx, "list", func() (err error) {
		refs, err = r.next.List(ctx, bucket, folder)
		return err
	})
	return refs, err
}

func (r *RetryingStore) do(ctx context.Context, op string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initial
	bo.MaxElapsedTime = r.maxElapsed

	var lastErr error
	attempt := func() error {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, internalerr.ErrNotFound) || errors.Is(lastErr, internalerr.ErrInvalidInput) ||
			errors.Is(lastErr, context.Canceled) {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}
	notify := func(err error, wait time.Duration) {
		r.log.WithError(err).WithField("op", op).WithField("retry_in", wait).Warn("blob operation failed, retrying")
	}

	if err := backoff.RetryNotify(attempt, backoff.WithContext(bo, ctx), notify); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
