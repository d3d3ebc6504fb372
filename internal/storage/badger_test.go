package storage

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frameshot/internal/domain"
)

// setupTestDB creates a temporary BadgerDB instance for testing.
// It returns the repository instance and a cleanup function.
func setupTestDB(t *testing.T) (*BadgerRepository, func()) {
	t.Helper()

	testLogger := logrus.New()
	testLogger.SetOutput(os.Stderr)
	testLogger.SetLevel(logrus.ErrorLevel)

	repo, err := NewBadgerRepository(t.TempDir(), testLogger)
	require.NoError(t, err, "Failed to create test BadgerDB repository")

	cleanup := func() {
		assert.NoError(t, repo.Close(), "Failed to close test BadgerDB repository")
	}
	return repo, cleanup
}

func TestBadgerRepository_SaveGetList(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	presets := []domain.Preset{
		{Name: "Phone", Width: 375, Height: 667, Category: domain.CategoryMobile},
		{Name: "Big Screen", Width: 2560, Height: 1440, Category: domain.CategoryDesktop},
		{Name: "Banner", Width: 1500, Height: 500, Category: domain.CategoryCustom},
		{Name: "Agenda", Width: 800, Height: 600, Category: domain.CategoryDesktop},
	}
	for _, p := range presets {
		require.NoError(t, repo.SavePreset(ctx, p))
	}

	got, err := repo.GetPreset(ctx, "phone")
	require.NoError(t, err, "lookups should ignore case")
	assert.Equal(t, presets[0], got)

	list, err := repo.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Agenda", "Big Screen", "Phone", "Banner"}, names,
		"presets should be ordered by category, then name")

	// --- Overwrite keeps a single entry ---
	require.NoError(t, repo.SavePreset(ctx, domain.Preset{Name: "PHONE", Width: 390, Height: 844, Category: domain.CategoryMobile}))
	list, err = repo.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
	got, err = repo.GetPreset(ctx, "Phone")
	require.NoError(t, err)
	assert.Equal(t, 390, got.Width)
}

func TestBadgerRepository_GetMissing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetPreset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestBadgerRepository_SaveRejectsEmptyName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.Error(t, repo.SavePreset(context.Background(), domain.Preset{Name: "  ", Width: 400, Height: 400}))
}

func TestBadgerRepository_DeletePreset(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SavePreset(ctx, domain.Preset{Name: "Delete Me", Width: 500, Height: 500}))
	require.NoError(t, repo.SavePreset(ctx, domain.Preset{Name: "Keep Me", Width: 600, Height: 600}))

	require.NoError(t, repo.DeletePreset(ctx, "delete me"))

	list, err := repo.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Keep Me", list[0].Name)

	// Deleting again, or deleting something that never existed, is fine.
	assert.NoError(t, repo.DeletePreset(ctx, "Delete Me"))
	assert.NoError(t, repo.DeletePreset(ctx, "never existed"))
}

func TestBadgerRepository_SeedPresets(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// A user edit made before seeding must survive it.
	edited := domain.Preset{Name: "Desktop", Width: 1280, Height: 800, Category: domain.CategoryDesktop}
	require.NoError(t, repo.SavePreset(ctx, edited))

	require.NoError(t, repo.SeedPresets(ctx, domain.DefaultPresets))
	require.NoError(t, repo.SeedPresets(ctx, domain.DefaultPresets), "seeding twice should be harmless")

	list, err := repo.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(domain.DefaultPresets))

	got, err := repo.GetPreset(ctx, "Desktop")
	require.NoError(t, err)
	assert.Equal(t, 1280, got.Width)
}

func TestBadgerRepository_SeedPresets_DeletedDefaultStaysDeleted(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewBadgerRepository(dir, logger)
	require.NoError(t, err)
	require.NoError(t, repo.SeedPresets(ctx, domain.DefaultPresets))
	require.NoError(t, repo.DeletePreset(ctx, "Desktop"))
	require.NoError(t, repo.Close())

	// Reopen, as on a restart.
	repo, err = NewBadgerRepository(dir, logger)
	require.NoError(t, err)
	defer func() { assert.NoError(t, repo.Close()) }()
	require.NoError(t, repo.SeedPresets(ctx, domain.DefaultPresets))

	_, err = repo.GetPreset(ctx, "Desktop")
	assert.ErrorIs(t, err, ErrPresetNotFound)

	list, err := repo.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(domain.DefaultPresets)-1, "the seed marker is not listed as a preset")
}

func TestNewBadgerRepository_InMemory(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	repo, err := NewBadgerRepository("", logger)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.SavePreset(context.Background(), domain.Preset{Name: "Tmp", Width: 320, Height: 320}))
	_, err = repo.GetPreset(context.Background(), "tmp")
	assert.NoError(t, err)
}
