package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.pdf":         "po b",
		"a.txt":         "po a",
		"notes.docx":    "notes",
		"sub/c.PNG":     "po c",
		".hidden/d.pdf": "po d",
		"copy-of-a.txt": "po a",
	})
	explicit := filepath.Join(dir, "notes.docx")

	files, stats, err := NewScanner(true, nil).Collect([]string{dir, explicit, filepath.Join(dir, "a.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "copy-of-a.txt"),
		filepath.Join(dir, "sub", "c.PNG"),
		explicit,
	}, paths(files))

	assert.False(t, files[0].Deduplicated)
	assert.True(t, files[2].Deduplicated)
	assert.Equal(t, files[0].HashHex, files[2].HashHex)
	assert.Len(t, files[0].HashHex, 64)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(5), stats.Matched)
}

func TestCollectIncludesHiddenWhenAsked(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".hidden/d.pdf": "po d"})

	files, _, err := NewScanner(false, nil).Collect([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ".hidden", "d.pdf")}, paths(files))
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
	}{
		{name: "missing file", paths: []string{filepath.Join(t.TempDir(), "missing.pdf")}},
		{name: "empty path", paths: []string{" "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewScanner(true, nil).Collect(tt.paths)
			assert.Error(t, err)
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/po.pdf"))
}
