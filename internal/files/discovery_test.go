package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindByMarker(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		dirs     []string
		expected []string
	}{
		{
			name:     "sorted by name",
			files:    []string{"eTender_TfNSW_2.xls", "eTender_TfNSW_10.xls", "eTender_TfNSW_1.xls"},
			expected: []string{"eTender_TfNSW_1.xls", "eTender_TfNSW_10.xls", "eTender_TfNSW_2.xls"},
		},
		{
			name:     "substring match anywhere in name",
			files:    []string{"old_eTender_A.xls", "eTender_B.xls", "readme.txt", "etender_lower.xls"},
			expected: []string{"eTender_B.xls", "old_eTender_A.xls"},
		},
		{
			name:     "directories and temp files skipped",
			files:    []string{"eTender_A.xls", "eTender_B.xls.123.part"},
			dirs:     []string{"eTender_dir"},
			expected: []string{"eTender_A.xls"},
		},
		{
			name:     "empty directory",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("data"), 0644))
			}
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
			}

			found, err := NewDiscovery("").FindByMarker(dir, "eTender_")
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(4), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindByMarkerRelative(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "dl"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "dl", "eTender_A.xls"), []byte("x"), 0644))

	found, err := NewDiscovery(base).FindByMarker("dl", "eTender_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "dl", "eTender_A.xls"), found[0].Path)
}

func TestFindByMarkerMissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindByMarker(filepath.Join(t.TempDir(), "nope"), "eTender_")
	assert.Error(t, err)
}

func TestTotalSize(t *testing.T) {
	assert.Equal(t, int64(0), TotalSize(nil))
	assert.Equal(t, int64(30), TotalSize([]Export{{Size: 10}, {Size: 20}}))
}
