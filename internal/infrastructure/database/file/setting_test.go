package file

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakreminder/internal/pkg/logger"
)

func TestMissingDocumentIsEmpty(t *testing.T) {
	repo := NewSettingRepository(afero.NewMemMapFs(), "/data/BreakReminder.txt", logger.Nop())
	v, found, err := repo.Get(context.Background(), "Frequency")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	repo := NewSettingRepository(fsys, "/data/BreakReminder.txt", logger.Nop())

	require.NoError(t, repo.Set(ctx, "Frequency", "2"))
	require.NoError(t, repo.Set(ctx, "LeadTime", "0"))

	data, err := afero.ReadFile(fsys, "/data/BreakReminder.txt")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Frequency\": \"2\",\n  \"LeadTime\": \"0\"\n}", string(data))

	reopened := NewSettingRepository(fsys, "/data/BreakReminder.txt", logger.Nop())
	v, found, err := reopened.Get(ctx, "LeadTime")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0", v)
}

func TestYAMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	repo := NewSettingRepository(fsys, "/etc/breakreminder/settings.yaml", logger.Nop())

	require.NoError(t, repo.Set(ctx, "Frequency", "4"))
	data, err := afero.ReadFile(fsys, "/etc/breakreminder/settings.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Frequency:")

	v, found, err := repo.Get(ctx, "Frequency")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "4", v)
}

func TestHandWrittenScalars(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/s.yml", []byte("Frequency: 3\nLeadTime: 5\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/s.json", []byte(`{"Frequency": 2, "LeadTime": null}`), 0o644))

	v, _, err := NewSettingRepository(fsys, "/s.yml", logger.Nop()).Get(ctx, "Frequency")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	repo := NewSettingRepository(fsys, "/s.json", logger.Nop())
	v, _, err = repo.Get(ctx, "Frequency")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	v, found, err := repo.Get(ctx, "LeadTime")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, v)
}

func TestMalformedDocument(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/BreakReminder.txt", []byte("{not json"), 0o644))
	var logs bytes.Buffer
	repo := NewSettingRepository(fsys, "/BreakReminder.txt", logger.New(&logs, "warn"))

	_, _, err := repo.Get(ctx, "Frequency")
	assert.Error(t, err)

	assert.Empty(t, logs.String())
	require.NoError(t, repo.Set(ctx, "Frequency", "2"))
	assert.Contains(t, logs.String(), "Replacing unreadable settings document /BreakReminder.txt")

	v, found, err := repo.Get(ctx, "Frequency")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2", v)
}

func TestEmptyDocumentIsEmpty(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/BreakReminder.txt", []byte("  \n"), 0o644))
	_, found, err := NewSettingRepository(fsys, "/BreakReminder.txt", logger.Nop()).Get(context.Background(), "LeadTime")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	repo := NewSettingRepository(fsys, "/data/BreakReminder.txt", logger.Nop())
	require.NoError(t, repo.Set(context.Background(), "Frequency", "2"))

	entries, err := afero.ReadDir(fsys, "/data")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BreakReminder.txt", entries[0].Name())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewSettingRepository(afero.NewMemMapFs(), "/BreakReminder.txt", logger.Nop())
	assert.Error(t, repo.Set(ctx, "Frequency", "2"))
	_, _, err := repo.Get(ctx, "Frequency")
	assert.Error(t, err)
}
