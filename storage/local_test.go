package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads/")
	ctx := context.Background()

	ref, err := store.Put(ctx, "verification/2/doc.pdf", "application/pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "verification/2/doc.pdf", ref)

	stored, err := os.ReadFile(filepath.Join(dir, "verification", "2", "doc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, stored)

	url, err := store.URL(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/verification/2/doc.pdf", url)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, "verification", "2", "doc.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStoreKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")

	ref, err := store.Put(context.Background(), "../../escape.pdf", "application/pdf", 3, bytes.NewReader([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, "escape.pdf", ref)

	_, err = os.Stat(filepath.Join(dir, "escape.pdf"))
	assert.NoError(t, err)
}
