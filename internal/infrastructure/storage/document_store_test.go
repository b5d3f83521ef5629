package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalDocumentStore_SaveAndOpen(t *testing.T) {
	tempDir := t.TempDir()
	store := NewLocalDocumentStore(tempDir, zap.NewNop())

	t.Run("round trips document content", func(t *testing.T) {
		content := []byte("PDF content here")

		relPath, err := store.Save("invoice.pdf", content)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(relPath, ".pdf"))
		assert.FileExists(t, filepath.Join(tempDir, relPath))

		got, err := store.Open(relPath)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("colliding filenames get distinct paths", func(t *testing.T) {
		first, err := store.Save("invoice.pdf", []byte("first"))
		require.NoError(t, err)
		second, err := store.Save("invoice.pdf", []byte("second"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestLocalDocumentStore_OpenRejectsEscapingPath(t *testing.T) {
	store := NewLocalDocumentStore(t.TempDir(), zap.NewNop())

	_, err := store.Open(filepath.Join("..", "..", "etc", "passwd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base directory")
}
