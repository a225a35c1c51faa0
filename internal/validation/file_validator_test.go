package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "directory with csv files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "a.CSV"), []byte("date\n"), 0644))
				return dir
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
			wantErr: ErrDirNotFound,
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file.csv")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			wantErr: ErrNotDirectory,
		},
		{
			name:    "empty directory",
			setup:   func(t *testing.T) string { return t.TempDir() },
			wantErr: ErrEmptyDirectory,
		},
		{
			name: "no matching files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644))
				require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0755))
				return dir
			},
			wantErr: ErrNoMatchingFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputDirectory(tt.setup(t), ".csv", ".xlsx")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	path := filepath.Join(dir, "exports", "districts.csv")
	require.NoError(t, v.ValidateOutputFile(path))
	assert.DirExists(t, filepath.Join(dir, "exports"))

	assert.Error(t, v.ValidateOutputFile(dir))
}
