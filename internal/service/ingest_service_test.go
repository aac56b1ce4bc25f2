package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "notes.pdf", sanitizeFilename("notes.pdf"))
	require.Equal(t, "notes.pdf", sanitizeFilename("../../etc/notes.pdf"))
	require.Equal(t, "notes.pdf", sanitizeFilename("C:\\Users\\me\\notes.pdf"))
	require.Equal(t, "my notes_v2.pdf", sanitizeFilename("my notes_v2.pdf"))
	require.Equal(t, "bad_name_.pdf", sanitizeFilename("bad<name>.pdf"))
	require.Equal(t, "uploaded.pdf", sanitizeFilename(""))
	require.Equal(t, "uploaded.pdf", sanitizeFilename("..."))
}

func TestObjectKeyFromURL(t *testing.T) {
	key, err := objectKeyFromURL("https://cdn.example.com/bucket/docs/abc123.pdf")
	require.NoError(t, err)
	require.Equal(t, "abc123.pdf", key)

	key, err = objectKeyFromURL("https://cdn.example.com/abc123.pdf?X-Amz-Expires=900")
	require.NoError(t, err)
	require.Equal(t, "abc123.pdf", key)

	_, err = objectKeyFromURL("https://cdn.example.com/")
	require.Error(t, err)
}
