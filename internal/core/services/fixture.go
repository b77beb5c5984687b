package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// Fixture prepares chain state, typically by deploying contracts, and
// returns whatever the test needs to use it.
type Fixture[T any] func(ctx context.Context) (T, error)

type fixtureSnapshot struct {
	name string
	id   uint64
	data any
}

// FixtureLoader runs each fixture once and afterwards restores the chain
// snapshot taken right after it instead of running it again.
type FixtureLoader struct {
	chain ports.Chain

	mu        sync.Mutex
	snapshots []*fixtureSnapshot
}

func NewFixtureLoader(chain ports.Chain) *FixtureLoader {
	return &FixtureLoader{chain: chain}
}

// LoadFixture returns the fixture's result with the chain in the state the
// fixture left it. A failing fixture takes no snapshot.
func LoadFixture[T any](ctx context.Context, l *FixtureLoader, name string, fixture Fixture[T]) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	if i := slices.IndexFunc(l.snapshots, func(s *fixtureSnapshot) bool { return s.name == name }); i >= 0 {
		s := l.snapshots[i]
		ok, err := l.chain.Revert(ctx, s.id)
		if err != nil {
			return zero, fmt.Errorf("failed to revert fixture %s: %w", name, err)
		}
		if !ok {
			return zero, fmt.Errorf("%w: fixture %s", domain.ErrSnapshotNotFound, name)
		}
		// the chain dropped every snapshot taken after this one
		l.snapshots = l.snapshots[:i+1]

		if s.id, err = l.chain.Snapshot(ctx); err != nil {
			return zero, fmt.Errorf("failed to snapshot fixture %s: %w", name, err)
		}
		data, ok := s.data.(T)
		if !ok {
			return zero, fmt.Errorf("fixture %s holds %T, not %T", name, s.data, zero)
		}
		return data, nil
	}

	data, err := fixture(ctx)
	if err != nil {
		return zero, err
	}

	id, err := l.chain.Snapshot(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to snapshot fixture %s: %w", name, err)
	}
	l.snapshots = append(l.snapshots, &fixtureSnapshot{name: name, id: id, data: data})
	return data, nil
}
