package materials

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   map[string]map[string]struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values: make(map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (f *fakeStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, found := f.values[key]
	return value, found, nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeStore) SAdd(_ context.Context, key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]struct{})
	}
	f.sets[key][member] = struct{}{}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets[key], member)
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := make([]string, 0, len(f.sets[key]))
	for member := range f.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func TestMaterialCRUD(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, Material{
		UserID:      "user-1",
		Title:       "Rangkuman Biologi Bab 3",
		Description: "Fotosintesis dan respirasi",
		Subject:     "Biologi",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := svc.Update(ctx, Material{
		ID:      created.ID,
		Title:   "Rangkuman Biologi Bab 3 (revisi)",
		Subject: "Biologi",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Rangkuman Biologi Bab 3 (revisi)", updated.Title)
	// Ownership and creation time are immutable.
	assert.Equal(t, created.UserID, updated.UserID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	assert.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMaterialListNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, Material{UserID: "user-1", Title: "Pertama"})
	assert.NoError(t, err)
	// Force distinct timestamps regardless of clock resolution.
	first.CreatedAt = first.CreatedAt.Add(-time.Minute)
	assert.NoError(t, svc.put(ctx, first))

	second, err := svc.Create(ctx, Material{UserID: "user-1", Title: "Kedua"})
	assert.NoError(t, err)

	records, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, []string{records[0].ID, records[1].ID})
}

func TestMaterialNotFound(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, Material{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

func TestListSkipsDanglingIndexEntries(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, Material{UserID: "user-1", Title: "Sementara"})
	assert.NoError(t, err)

	// Record vanished but the index entry remains.
	assert.NoError(t, store.Del(ctx, keyPrefix+created.ID))

	records, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, records)
}
