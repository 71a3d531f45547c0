package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add buyers table", "add_buyers_table"},
		{"Add-Buyers-Table", "add_buyers_table"},
		{"ADD_BUYERS_TABLE", "add_buyers_table"},
		{"add__buyers__table", "add_buyers_table"},
		{"Add Blocks 123", "add_blocks_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add tracking", "Tracking number on orders")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_tracking.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_add_tracking.down.sql", filepath.Base(first.DownPath))

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Tracking number on orders")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	second, err := CreateMigration(dir, "Add Email Log", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_add_email_log.up.sql", filepath.Base(second.UpPath))
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_second.up.sql":   {},
		"000001_first.up.sql":    {},
		"000001_first.down.sql":  {},
		"000002_second.down.sql": {},
		"000003_no_down.up.sql":  {},
		"README.md":              {},
		"notes.sql":              {},
	}

	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: 1, Name: "first", HasDown: true},
		{Version: 2, Name: "second", HasDown: true},
		{Version: 3, Name: "no_down", HasDown: false},
	}, entries)
}

func TestListMigrations_EmptyDir(t *testing.T) {
	entries, err := ListMigrations(os.DirFS(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmbeddedMigrations_AreSequentialAndReversible(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, "migration %s", e.Name)
		assert.True(t, e.HasDown, "migration %s has no down file", e.Name)
	}
}
