package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"nightchat/internal/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaginator(api *fakeConversationAPI, pageSize int) (*PaginationController, *MessageStore) {
	store := NewMessageStore(false)
	pc := NewPaginationController(api, store, zerolog.Nop(), "c1", pageSize)
	return pc, store
}

func TestReloadInstallsNewestWindow(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 25, storeBase)
	pc, store := newTestPaginator(api, 10)

	require.NoError(t, pc.Reload(context.Background()))

	assert.Equal(t, 10, store.Len())
	newest, _ := store.Newest()
	assert.Equal(t, "m25", newest.ID)
	assert.True(t, pc.HasMore())
}

func TestLoadOlderAnchorsOnOldestHeldMessage(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 25, storeBase)
	pc, store := newTestPaginator(api, 10)
	require.NoError(t, pc.Reload(context.Background()))

	fetched, err := pc.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)

	assert.Equal(t, 20, store.Len())
	oldest, _ := store.Oldest()
	assert.Equal(t, "m6", oldest.ID)
}

func TestLoadOlderOnEmptyStoreIsNoop(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 5, storeBase)
	pc, _ := newTestPaginator(api, 10)

	fetched, err := pc.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, 0, api.messageCalls())
}

func TestShortPageEndsPagination(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 14, storeBase)
	pc, _ := newTestPaginator(api, 10)
	require.NoError(t, pc.Reload(context.Background()))

	// Only 4 older messages remain; the short page flips hasMore off.
	fetched, err := pc.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.False(t, pc.HasMore())

	calls := api.messageCalls()
	fetched, err = pc.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, calls, api.messageCalls())
}

func TestConcurrentLoadOlderIssuesOneFetch(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 30, storeBase)
	pc, _ := newTestPaginator(api, 10)
	require.NoError(t, pc.Reload(context.Background()))
	baseline := api.messageCalls()

	release := make(chan struct{})
	api.mu.Lock()
	api.blockGetMessages = release
	api.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = pc.LoadOlder(context.Background())
	}()

	// Wait for the first fetch to be in flight, then hammer the guard.
	require.Eventually(t, pc.Loading, time.Second, time.Millisecond)
	for i := 0; i < 5; i++ {
		fetched, err := pc.LoadOlder(context.Background())
		require.NoError(t, err)
		assert.False(t, fetched)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, baseline+1, api.messageCalls())
}

func TestResetOrphansInFlightFetch(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 30, storeBase)
	pc, store := newTestPaginator(api, 10)
	require.NoError(t, pc.Reload(context.Background()))
	held := store.Len()

	release := make(chan struct{})
	api.mu.Lock()
	api.blockGetMessages = release
	api.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fetched, err := pc.LoadOlder(context.Background())
		assert.False(t, fetched)
		assert.NoError(t, err)
	}()
	require.Eventually(t, pc.Loading, time.Second, time.Millisecond)

	// Re-arming mid-flight orphans the pending page: when it resolves it
	// must neither reach the store nor flip hasMore or the guard.
	pc.Reset("c2")
	close(release)
	wg.Wait()

	assert.Equal(t, held, store.Len())
	assert.False(t, store.Contains("m11"))
	assert.True(t, pc.HasMore())
	assert.False(t, pc.Loading())
}

func TestLoadOlderFailureKeepsHasMore(t *testing.T) {
	api := newFakeConversationAPI()
	api.history = seedHistory("c1", 20, storeBase)
	pc, _ := newTestPaginator(api, 10)
	require.NoError(t, pc.Reload(context.Background()))

	api.mu.Lock()
	api.failGetMessages = errs.ErrRequestFailed
	api.mu.Unlock()

	fetched, err := pc.LoadOlder(context.Background())
	assert.False(t, fetched)
	assert.ErrorIs(t, err, errs.ErrRequestFailed)
	assert.True(t, pc.HasMore())
	assert.False(t, pc.Loading())

	// The guard is released; the next attempt goes out again.
	api.mu.Lock()
	api.failGetMessages = nil
	api.mu.Unlock()

	fetched, err = pc.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
}
