package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// SnapshotCache stores assembled project snapshots.
// Get returns (nil, nil) on a miss. Invalidate must be called after every committed mutation.
//
// Every Invalidate advances the project's generation. A reader takes the
// generation before it reads the tables and hands it to Set, which stores
// nothing if the generation has moved on in the meantime.
type SnapshotCache interface {
	Get(ctx context.Context, projectID string) (*coding.ProjectSnapshot, error)
	Generation(ctx context.Context, projectID string) (int64, error)
	Set(ctx context.Context, snapshot *coding.ProjectSnapshot, generation int64) error
	Invalidate(ctx context.Context, projectID string) error
}
