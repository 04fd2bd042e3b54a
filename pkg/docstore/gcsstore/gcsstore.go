// Package gcsstore keeps documents as objects "container/name" in one
// Google Cloud Storage bucket.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/artem13815/career/pkg/docstore"
)

type Store struct {
	client *storage.Client
	bucket string
}

var _ docstore.Store = (*Store)(nil)

// New creates a client with default credentials, or with credentialsFile
// when given.
func New(ctx context.Context, bucket, credentialsFile string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) object(container, name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(container + "/" + name)
}

func (s *Store) Get(ctx context.Context, container, name string) ([]byte, error) {
	r, err := s.object(container, name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", container, name, err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", container, name, err)
	}
	return raw, nil
}

func (s *Store) Put(ctx context.Context, container, name string, data []byte, contentType string) error {
	w := s.object(container, name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s/%s: %w", container, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs write %s/%s: %w", container, name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, container, name string) error {
	err := s.object(container, name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s/%s: %w", container, name, err)
	}
	return nil
}

// Lease creates an empty marker object under a DoesNotExist precondition.
// A marker older than ttl is taken over by matching its generation, so two
// callers never both win.
func (s *Store) Lease(ctx context.Context, container, name string, ttl time.Duration) (bool, error) {
	obj := s.object(container, name)
	ok, err := s.writeMarker(ctx, obj.If(storage.Conditions{DoesNotExist: true}))
	if ok || err != nil {
		return ok, err
	}
	attrs, err := obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return s.writeMarker(ctx, obj.If(storage.Conditions{DoesNotExist: true}))
	}
	if err != nil {
		return false, fmt.Errorf("gcs attrs %s/%s: %w", container, name, err)
	}
	if time.Since(attrs.Updated) < ttl {
		return false, nil
	}
	return s.writeMarker(ctx, obj.If(storage.Conditions{GenerationMatch: attrs.Generation}))
}

func (s *Store) writeMarker(ctx context.Context, obj *storage.ObjectHandle) (bool, error) {
	w := obj.NewWriter(ctx)
	w.ContentType = "text/plain"
	err := w.Close()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs lease %s: %w", obj.ObjectName(), err)
	}
	return true, nil
}

func (s *Store) Close() error { return s.client.Close() }
