package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/internal/ocr"
)

func TestOCRAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "po.txt")
	require.NoError(t, os.WriteFile(path, []byte("Production Order: 123456789\n"), 0o644))

	src := NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil))
	st, err := src.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, st.Path)
	assert.Equal(t, "TXT", st.SourceType)
	assert.Equal(t, "text", st.Method)
	assert.Equal(t, 1, st.Pages)
	assert.Contains(t, st.Text, "123456789")

	_, err = src.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
