package points

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
	"github.com/greenloop/recycle-be/internal/storage/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	store.Seed(models.User{IdentityToken: "ADMIN", Email: "admin@example.com", IsAdmin: true})
	store.Seed(models.User{IdentityToken: "U1", Email: "u1@example.com", Points: 10})
	store.Seed(models.User{IdentityToken: "U2", Email: "u2@example.com", Points: 20})
	return store
}

func TestCanAwardPoints(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seedStore(t), nil, 0)

	admin, err := svc.CanAwardPoints(ctx, "ADMIN")
	require.NoError(t, err)
	assert.True(t, admin)

	regular, err := svc.CanAwardPoints(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, regular)

	// Unknown actors are not admins either.
	unknown, err := svc.CanAwardPoints(ctx, "NOBODY")
	require.NoError(t, err)
	assert.False(t, unknown)
}

func TestAwardHappyPath(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := NewService(store, nil, 0)

	total, err := svc.Award(ctx, "ADMIN", "U2", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(27), total)

	target, err := store.FindByIdentityToken(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, int64(27), target.Points)
}

func TestAwardRejectsNonPositiveDelta(t *testing.T) {
	svc := NewService(seedStore(t), nil, 0)
	for _, delta := range []int64{0, -1, -100} {
		_, err := svc.Award(context.Background(), "ADMIN", "U1", delta)
		assert.ErrorIs(t, err, ErrInvalidDelta)
	}
}

// gateProbe records directory traffic so tests can prove the authorization
// gate short-circuits before any target access.
type gateProbe struct {
	*memory.Store
	mu      sync.Mutex
	lookups []string
	updates int
}

func (p *gateProbe) FindByIdentityToken(ctx context.Context, token string) (models.User, error) {
	p.mu.Lock()
	p.lookups = append(p.lookups, token)
	p.mu.Unlock()
	return p.Store.FindByIdentityToken(ctx, token)
}

func (p *gateProbe) UpdatePoints(ctx context.Context, token string, prior, next int64) error {
	p.mu.Lock()
	p.updates++
	p.mu.Unlock()
	return p.Store.UpdatePoints(ctx, token, prior, next)
}

func TestAwardDeniedBeforeTargetAccess(t *testing.T) {
	probe := &gateProbe{Store: seedStore(t)}
	svc := NewService(probe, nil, 0)

	_, err := svc.Award(context.Background(), "U1", "U2", 5)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Equal(t, []string{"U1"}, probe.lookups, "only the actor may be read before denial")
	assert.Zero(t, probe.updates, "denied award must not mutate")

	target, err := probe.Store.FindByIdentityToken(context.Background(), "U2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), target.Points)
}

func TestAwardTargetNotFound(t *testing.T) {
	svc := NewService(seedStore(t), nil, 0)
	_, err := svc.Award(context.Background(), "ADMIN", "GHOST", 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAwardAbortsOnDuplicateDirectoryEntries(t *testing.T) {
	store := seedStore(t)
	store.Seed(models.User{IdentityToken: "U1", Email: "dup@example.com", Points: 99})
	probe := &gateProbe{Store: store}
	svc := NewService(probe, nil, 0)

	_, err := svc.Award(context.Background(), "ADMIN", "U1", 5)
	assert.ErrorIs(t, err, storage.ErrIntegrity)
	assert.Zero(t, probe.updates)
}

// conflictStore forces a fixed number of conflicts before letting the write
// through, regardless of the supplied prior.
type conflictStore struct {
	*memory.Store
	remaining int
}

func (c *conflictStore) UpdatePoints(ctx context.Context, token string, prior, next int64) error {
	if c.remaining > 0 {
		c.remaining--
		return storage.ErrConflict
	}
	return c.Store.UpdatePoints(ctx, token, prior, next)
}

func TestAwardRetriesThenCommits(t *testing.T) {
	store := seedStore(t)
	svc := NewService(&conflictStore{Store: store, remaining: 2}, nil, 3)

	total, err := svc.Award(context.Background(), "ADMIN", "U1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
}

func TestAwardSurfacesConflictAfterBoundedRetries(t *testing.T) {
	store := seedStore(t)
	svc := NewService(&conflictStore{Store: store, remaining: 10}, nil, 3)

	_, err := svc.Award(context.Background(), "ADMIN", "U1", 5)
	assert.ErrorIs(t, err, storage.ErrConflict)

	target, err := store.FindByIdentityToken(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), target.Points, "failed award must leave the balance alone")
}

func TestConcurrentAwardsNeverLoseAnUpdate(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := NewService(store, nil, 10)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, delta := range []int64{5, 3} {
		wg.Add(1)
		go func(d int64) {
			defer wg.Done()
			_, err := svc.Award(ctx, "ADMIN", "U1", d)
			errs <- err
		}(delta)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	target, err := store.FindByIdentityToken(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(18), target.Points, "10 + 5 + 3, never 13 or 15")
}

func TestAwardStopsOnCancelledContext(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Award(ctx, "ADMIN", "U1", 5)
	assert.ErrorIs(t, err, context.Canceled)

	target, err := store.FindByIdentityToken(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), target.Points)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []int64
}

func (r *recordingNotifier) PointsChanged(_ string, newTotal int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, newTotal)
}

func TestAwardNotifiesOnCommitOnly(t *testing.T) {
	store := seedStore(t)
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier, 0)

	_, err := svc.Award(context.Background(), "U1", "U2", 5)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, notifier.events)

	total, err := svc.Award(context.Background(), "ADMIN", "U2", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{total}, notifier.events)
}
