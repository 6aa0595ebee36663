package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add lot index", "add_lot_index"},
		{"Add-Lot-Index", "add_lot_index"},
		{"ADD__LOT__INDEX", "add_lot_index"},
		{"  spaces  ", "spaces"},
		{"scan v2", "scan_v2"},
		{"special!@#chars", "specialchars"},
		{"_leading_", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := CreateMigration(dir, "create scanning tables", "shipments, move lines and lots")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_create_scanning_tables", first.Name)

	second, err := CreateMigration(dir, "add lot index", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_add_lot_index.up.sql"), second.UpPath)
	assert.Equal(t, filepath.Join(dir, "000002_add_lot_index.down.sql"), second.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "000001_create_scanning_tables")
	assert.Contains(t, string(up), "shipments, move lines and lots")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback 000001_create_scanning_tables")
}

func TestCreateMigration_ContinuesAfterExisting(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "000007_seed.up.sql", "000007_seed.down.sql")

	f, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, uint(8), f.Version)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000010_later.up.sql", "000010_later.down.sql",
		"000002_add_index.up.sql", "000002_add_index.down.sql",
		"000001_init.up.sql", "000001_init.down.sql",
		"README.md", ".gitkeep",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"000001_init", "000002_add_index", "000010_later"},
		[]string{files[0].Name, files[1].Name, files[2].Name})
	assert.Equal(t, uint(10), files[2].Version)
	assert.Equal(t, filepath.Join(dir, "000001_init.down.sql"), files[0].DownPath)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListMigrations_RepositoryMigrationsArePaired(t *testing.T) {
	files, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := os.Stat(f.DownPath)
		assert.NoError(t, err, f.Name)
	}
}
