package stores

import (
	"context"
	"errors"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// resilientBlobStore wraps a remote blob store with a circuit breaker.
// When the backend is down, uploads fail fast instead of holding the
// avatar pipeline at Uploading until the timeout; the pipeline parks at
// the crop stage either way and commit can be retried.
type resilientBlobStore struct {
	inner   ports.BlobStore
	breaker *circuitbreaker.CircuitBreaker
}

func newResilientBlobStore(inner ports.BlobStore, logger *zap.SugaredLogger) ports.BlobStore {
	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("blob store circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})
	return &resilientBlobStore{inner: inner, breaker: breaker}
}

func (s *resilientBlobStore) Put(ctx context.Context, path string, data []byte, contentType string, progress ports.ProgressFunc) (string, error) {
	var url string
	err := s.breaker.Execute(ctx, func() error {
		var putErr error
		url, putErr = s.inner.Put(ctx, path, data, contentType, progress)
		return putErr
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *resilientBlobStore) Get(ctx context.Context, path string) (*ports.Blob, error) {
	var blob *ports.Blob
	var notFound error
	err := s.breaker.Execute(ctx, func() error {
		var getErr error
		blob, getErr = s.inner.Get(ctx, path)
		if errors.Is(getErr, domain.ErrBlobNotFound) {
			// A missing blob is a healthy backend answering; it must not
			// trip the breaker.
			notFound = getErr
			return nil
		}
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return blob, nil
}
