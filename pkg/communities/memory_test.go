package communities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Save(ctx, Community{TenantID: "t1", JiveURL: "https://a.example.com", JiveCommunity: "a.example.com"})
	require.NoError(t, err)
	_, err = store.Save(ctx, Community{TenantID: "t2", JiveURL: "https://b.example.com", JiveCommunity: "b.example.com"})
	require.NoError(t, err)

	all, err := store.Find(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "t1", all[0].TenantID, "results sorted by tenant id")

	got, ok, err := First(ctx, store, Filter{JiveCommunity: "b.example.com"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t2", got.TenantID)

	_, ok, err = First(ctx, store, Filter{TenantID: "missing"})
	require.NoError(t, err)
	assert.False(t, ok, "absence is not an error")

	removed, err := store.Remove(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, removed, "second remove reports nothing deleted")
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Save(ctx, Community{TenantID: "t1", JiveURL: "https://old.example.com"})
	require.NoError(t, err)
	_, err = store.Save(ctx, Community{TenantID: "t1", JiveURL: "https://new.example.com"})
	require.NoError(t, err)

	got, ok, err := First(ctx, store, Filter{TenantID: "t1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://new.example.com", got.JiveURL)
}
