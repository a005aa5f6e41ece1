package storage

import (
	"os"
	"path/filepath"
	"testing"

	"scriptaffiliator/pkg/supabase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_PutDelete(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir)
	require.NoError(t, err)

	url, err := d.Put("avatar/u1.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/avatar/u1.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "avatar", "u1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	key, ok := d.KeyFromURL("http://localhost:3000" + url)
	require.True(t, ok)
	assert.Equal(t, "avatar/u1.png", key)

	require.NoError(t, d.Delete(key))
	require.NoError(t, d.Delete(key), "deleting a missing object is not an error")
	_, err = os.Stat(filepath.Join(dir, "avatar", "u1.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestDisk_KeysStayInside(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir)
	require.NoError(t, err)

	_, err = d.Put("../../escape.txt", "text/plain", []byte("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)

	_, err = d.Put("", "text/plain", nil)
	assert.Error(t, err)
}

func TestBucket_KeyFromURL(t *testing.T) {
	b := NewBucket(supabase.New("https://x.supabase.co", "anon", ""), "avatar")
	key, ok := b.KeyFromURL("https://x.supabase.co/storage/v1/object/public/avatar/avatar/u1-1.png")
	require.True(t, ok)
	assert.Equal(t, "avatar/u1-1.png", key)

	_, ok = b.KeyFromURL("https://elsewhere/img.png")
	assert.False(t, ok)
}
