package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/spin.report/internal/monitoring"
)

func quietMigrateLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(original) })
}

func TestPrintMigrateHelp(t *testing.T) {
	var out bytes.Buffer
	PrintMigrateHelp(&out)
	assert.Contains(t, out.String(), "force <version>")
}

func TestRunMigrateCommand_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand([]string{"help"}, filepath.Join(t.TempDir(), "unused.db"), &out))
	assert.Contains(t, out.String(), "Usage: spin-report migrate")
}

func TestRunMigrateCommand_NoAction(t *testing.T) {
	var out bytes.Buffer
	err := RunMigrateCommand(nil, filepath.Join(t.TempDir(), "unused.db"), &out)
	assert.ErrorIs(t, err, ErrUnknownMigrateAction)
}

func TestRunMigrateCommand_UnknownAction(t *testing.T) {
	quietMigrateLogs(t)

	var out bytes.Buffer
	err := RunMigrateCommand([]string{"sideways"}, filepath.Join(t.TempDir(), "test.db"), &out)
	assert.ErrorIs(t, err, ErrUnknownMigrateAction)
}

func TestRunMigrateCommand_UpDownStatus(t *testing.T) {
	quietMigrateLogs(t)
	path := filepath.Join(t.TempDir(), "test.db")

	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand([]string{"up"}, path, &out))
	assert.Equal(t, "Current version: 2 (dirty: false)\n", out.String())

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"down"}, path, &out))
	assert.Equal(t, "Current version: 1 (dirty: false)\n", out.String())

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"status"}, path, &out))
	assert.Equal(t, "Current version: 1 (dirty: false)\n", out.String())
}

func TestRunMigrateCommand_To(t *testing.T) {
	quietMigrateLogs(t)
	path := filepath.Join(t.TempDir(), "test.db")

	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand([]string{"to", "1"}, path, &out))
	assert.Equal(t, "Current version: 1 (dirty: false)\n", out.String())

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"to", "2"}, path, &out))
	assert.Equal(t, "Current version: 2 (dirty: false)\n", out.String())
}

func TestRunMigrateCommand_Force(t *testing.T) {
	quietMigrateLogs(t)
	path := filepath.Join(t.TempDir(), "test.db")

	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand([]string{"up"}, path, &out))

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"force", "1"}, path, &out))
	assert.Equal(t, "Current version: 1 (dirty: false)\n", out.String())
}

func TestRunMigrateCommand_BadVersion(t *testing.T) {
	quietMigrateLogs(t)
	path := filepath.Join(t.TempDir(), "test.db")

	var out bytes.Buffer
	assert.Error(t, RunMigrateCommand([]string{"to"}, path, &out))
	assert.Error(t, RunMigrateCommand([]string{"to", "two"}, path, &out))
	assert.Error(t, RunMigrateCommand([]string{"force", "-3"}, path, &out))
}
