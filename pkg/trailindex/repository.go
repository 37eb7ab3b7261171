// Package trailindex is the boundary to the precomputed trail data: trails
// with their along-trail-ordered access points, produced upstream by the
// spatial join. The engine only reads it.
package trailindex

import (
	"context"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

type Repository interface {
	// Trails returns every trail that has at least one access point.
	Trails(ctx context.Context) ([]htdf.Trail, error)

	// Trail returns a single trail by identifier, or nil when unknown.
	Trail(ctx context.Context, trailRef string) (*htdf.Trail, error)
}

type MemoryRepository struct {
	trails []htdf.Trail
}

func NewMemoryRepository(trails []htdf.Trail) *MemoryRepository {
	return &MemoryRepository{trails: trails}
}

func (m *MemoryRepository) Trails(ctx context.Context) ([]htdf.Trail, error) {
	trails := make([]htdf.Trail, len(m.trails))
	copy(trails, m.trails)

	return trails, nil
}

func (m *MemoryRepository) Trail(ctx context.Context, trailRef string) (*htdf.Trail, error) {
	for _, trail := range m.trails {
		if trail.PrimaryIdentifier == trailRef {
			found := trail
			return &found, nil
		}
	}

	return nil, nil
}
