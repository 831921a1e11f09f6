//go:build integration

package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"borderlink/internal/manifest/models"
	"borderlink/internal/platform/redis"
	"borderlink/pkg/testutil/containers"
)

func TestRedisDraftStoreRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := NewRedisDraftStore(&redis.Client{Client: rc.Client}, time.Hour)
	ctx := context.Background()

	loaded, err := store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	draft := &models.Bundle{
		Manifest: &models.Manifest{
			ManifestType: models.TypeACI,
			TripNumber:   "TR55",
			PortOfEntry:  "0440",
			Status:       models.StatusDraft,
		},
	}
	require.NoError(t, store.Save(ctx, "owner-1", draft))

	loaded, err = store.Load(ctx, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "TR55", loaded.Manifest.TripNumber)

	// Drafts are owner-scoped.
	other, err := store.Load(ctx, "owner-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.Delete(ctx, "owner-1"))
	loaded, err = store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisDraftStoreExpiry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := NewRedisDraftStore(&redis.Client{Client: rc.Client}, 50*time.Millisecond)
	ctx := context.Background()

	draft := &models.Bundle{Manifest: &models.Manifest{TripNumber: "TR1", Status: models.StatusDraft}}
	require.NoError(t, store.Save(ctx, "owner-1", draft))

	assert.Eventually(t, func() bool {
		loaded, err := store.Load(ctx, "owner-1")
		return err == nil && loaded == nil
	}, 2*time.Second, 25*time.Millisecond)
}
