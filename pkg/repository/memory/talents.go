// Package memory holds in-process repositories used by tests and the
// single-node dev mode. They enforce the same invariants as the Postgres
// repositories.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/talent"
)

type Talents struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]talent.Profile
}

var _ talent.Repository = (*Talents)(nil)

func NewTalents() *Talents {
	return &Talents{byID: map[uuid.UUID]talent.Profile{}}
}

func (r *Talents) GetByUserID(_ context.Context, userID uuid.UUID) (talent.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if p.UserID == userID {
			return cloneProfile(p), nil
		}
	}
	return talent.Profile{}, apperr.NotFound("profile")
}

func (r *Talents) GetByID(_ context.Context, id uuid.UUID) (talent.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return talent.Profile{}, apperr.NotFound("profile")
	}
	return cloneProfile(p), nil
}

func (r *Talents) Save(_ context.Context, p talent.Profile) (talent.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, other := range r.byID {
		if other.UserID == p.UserID && id != p.ID {
			return talent.Profile{}, apperr.Conflict("profile already exists")
		}
	}
	r.byID[p.ID] = cloneProfile(p)
	return cloneProfile(p), nil
}

func cloneProfile(p talent.Profile) talent.Profile {
	p.DesiredJobTitles = cloneStrings(p.DesiredJobTitles)
	p.Skills = cloneStrings(p.Skills)
	p.Certifications = cloneStrings(p.Certifications)
	if p.GraduationYear != nil {
		y := *p.GraduationYear
		p.GraduationYear = &y
	}
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
