// Package docstore is the blob store behind the legacy document path.
// Documents are addressed by container and name; backends are
// interchangeable.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ContainerProfiles    = "career-profiles"
	ContainerInterviews  = "skill-interviews"
	ContainerPlans       = "learning-plans"
	ContainerPlanDetails = "learning-plan-details"
)

var ErrNotFound = errors.New("document not found")

type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, container, name string) ([]byte, error)
	Put(ctx context.Context, container, name string, data []byte, contentType string) error
	// Delete is a no-op for missing documents. It also releases a lease
	// held under the same name.
	Delete(ctx context.Context, container, name string) error
	// Lease atomically takes a marker that lives for ttl. It reports false
	// while another unexpired marker holds the name.
	Lease(ctx context.Context, container, name string, ttl time.Duration) (bool, error)
}

// Key is the per-user document name, {provider}-{userId}.json.
func Key(provider string, userID uuid.UUID) string {
	return fmt.Sprintf("%s-%s.json", provider, userID)
}

// DetailName is the name of a cached step explanation, {userId}/{stage}.md.
func DetailName(userID uuid.UUID, stage int) string {
	return fmt.Sprintf("%s/%d.md", userID, stage)
}

// PendingName marks a step explanation whose generation is queued,
// {userId}/{stage}.pending.
func PendingName(userID uuid.UUID, stage int) string {
	return fmt.Sprintf("%s/%d.pending", userID, stage)
}

func GetJSON(ctx context.Context, s Store, container, name string, v any) error {
	raw, err := s.Get(ctx, container, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", container, name, err)
	}
	return nil
}

func PutJSON(ctx context.Context, s Store, container, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", container, name, err)
	}
	return s.Put(ctx, container, name, raw, "application/json")
}

func GetText(ctx context.Context, s Store, container, name string) (string, error) {
	raw, err := s.Get(ctx, container, name)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func PutText(ctx context.Context, s Store, container, name, text string) error {
	return s.Put(ctx, container, name, []byte(text), "text/markdown; charset=utf-8")
}
