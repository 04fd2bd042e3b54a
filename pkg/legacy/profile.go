// Package legacy serves the schema-less document view of profiles,
// interviews and learning plans. The relational model stays canonical;
// documents here are derived copies kept for older clients.
package legacy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/docstore"
	"github.com/artem13815/career/pkg/merge"
)

// ProfileDocs reads and merges career-profiles documents.
type ProfileDocs struct {
	store    docstore.Store
	provider string
	now      func() time.Time
}

func NewProfileDocs(store docstore.Store, provider string) *ProfileDocs {
	return &ProfileDocs{store: store, provider: provider, now: time.Now}
}

func (d *ProfileDocs) Get(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	doc := map[string]any{}
	err := docstore.GetJSON(ctx, d.store, docstore.ContainerProfiles, docstore.Key(d.provider, userID), &doc)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("profile document")
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update merges incoming into the stored document and writes it back.
func (d *ProfileDocs) Update(ctx context.Context, userID uuid.UUID, incoming map[string]any) (map[string]any, error) {
	existing, err := d.Get(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		existing = map[string]any{}
	} else if err != nil {
		return nil, err
	}
	merged := merge.Profile(existing, incoming)
	merged["userId"] = userID.String()
	merged["updatedAt"] = d.now().UTC().Format(time.RFC3339)
	if err := docstore.PutJSON(ctx, d.store, docstore.ContainerProfiles, docstore.Key(d.provider, userID), merged); err != nil {
		return nil, err
	}
	return merged, nil
}
