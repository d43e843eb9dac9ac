package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayflo/internal/models/db_models"
	"stayflo/pkg/utils"
)

func TestMemoryRepository_GetBySlug(t *testing.T) {
	repo := NewMemoryPropertyRepository(DefaultProperties()...)
	ctx := context.Background()

	p, err := repo.GetBySlug(ctx, " Lamar ")
	require.NoError(t, err)
	assert.Equal(t, "Lamar Street", p.Name)
	assert.Equal(t, "San Antonio, TX", p.CityLabel())
	require.Len(t, p.Areas, 6)
	assert.Equal(t, "downtown", p.Areas[0].Key)
	assert.Contains(t, []string(p.Areas[0].Aliases), "pearl")

	_, err = repo.GetBySlug(ctx, "nowhere")
	assert.ErrorIs(t, err, utils.ErrPropertyNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryPropertyRepository(DefaultProperties()...)
	p, err := repo.GetBySlug(context.Background(), "gabriel")
	require.NoError(t, err)
	p.Areas[0].Key = "changed"

	again, err := repo.GetBySlug(context.Background(), "gabriel")
	require.NoError(t, err)
	assert.Equal(t, "downtown", again.Areas[0].Key)
}

func TestMemoryRepository_UpsertAndList(t *testing.T) {
	repo := NewMemoryPropertyRepository()
	ctx := context.Background()
	require.NoError(t, SeedDefaultProperties(ctx, repo))

	require.NoError(t, repo.Upsert(ctx, &db_models.Property{Slug: "ALAMO", Name: "Alamo Loft", City: "San Antonio"}))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	slugs := make([]string, 0, len(list))
	for _, p := range list {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"alamo", "gabriel", "lamar"}, slugs)
}

func TestSeedDefaultProperties_KeepsExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPropertyRepository(db_models.Property{Slug: "lamar", Name: "Renamed", City: "San Antonio"})
	require.NoError(t, SeedDefaultProperties(ctx, repo))

	p, err := repo.GetBySlug(ctx, "lamar")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)

	g, err := repo.GetBySlug(ctx, "gabriel")
	require.NoError(t, err)
	assert.Equal(t, "Gabriel Street", g.Name)
}
