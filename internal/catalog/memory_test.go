package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFindFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	for _, email := range []string{"a@x.com", "b@x.com", "a@x.com", "a@x.com"} {
		_, err := repo.Insert(ctx, Wishlists, Document{"email": email, "title": "trip"})
		require.NoError(t, err)
	}

	all, err := repo.Find(ctx, Wishlists, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	own, err := repo.Find(ctx, Wishlists, Filter{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Len(t, own, 3)
	for _, d := range own {
		assert.Equal(t, "a@x.com", d.Owner())
	}

	limited, err := repo.Find(ctx, Wishlists, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.Find(ctx, Bookings, Filter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryFindOne(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	id, err := repo.Insert(ctx, Packages, Document{"name": "Sundarbans"})
	require.NoError(t, err)

	d, err := repo.FindOne(ctx, Packages, id)
	require.NoError(t, err)
	assert.Equal(t, id, d["_id"])
	assert.Equal(t, "Sundarbans", d["name"])

	_, err = repo.FindOne(ctx, Packages, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindOne(ctx, TouristStories, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteOwned(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	id, err := repo.Insert(ctx, Wishlists, Document{"email": "a@x.com"})
	require.NoError(t, err)

	n, err := repo.DeleteOwned(ctx, Wishlists, id, "b@x.com")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindOne(ctx, Wishlists, id)
	require.NoError(t, err)

	n, err = repo.DeleteOwned(ctx, Wishlists, id, "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindOne(ctx, Wishlists, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
