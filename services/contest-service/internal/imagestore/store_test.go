package imagestore

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLocalStore(t *testing.T, opts Options) *Store {
	t.Helper()
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return NewStore(backend, nil, opts)
}

func TestStore_SaveImageWithThumbnail(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t, Options{ThumbnailWidth: 64})
	data := pngBytes(t, 640, 320)

	stored, err := store.Save(ctx, "2026-10-16", data, "upload.PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Ref, "2026-10-16/"))
	assert.True(t, strings.HasSuffix(stored.Ref, ".png"))
	assert.True(t, ValidRef(stored.Ref))
	assert.True(t, ValidRef(stored.ThumbnailRef))
	assert.Equal(t, "image/png", stored.MimeType)

	exists, err := store.Exists(ctx, stored.Ref)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, mime, err := store.Open(ctx, stored.ThumbnailRef)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", mime)
	thumb, err := jpeg.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 32, thumb.Bounds().Dy())

	rc2, _, err := store.Open(ctx, stored.Ref)
	require.NoError(t, err)
	got, err := io.ReadAll(rc2)
	rc2.Close()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_SaveNonImageSkipsThumbnail(t *testing.T) {
	store := newLocalStore(t, Options{})

	stored, err := store.Save(context.Background(), "2026-10-16", []byte{0x00, 0x01, 0x02, 0x03}, "blob.raw")
	require.NoError(t, err)
	assert.Empty(t, stored.ThumbnailRef)
	assert.True(t, strings.HasSuffix(stored.Ref, ".raw"))
}

// withDeclaredSize rewrites the IHDR dimensions of an encoded PNG and fixes
// up the chunk CRC, leaving the pixel data untouched.
func withDeclaredSize(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestStore_OversizedImageSkipsThumbnail(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t, Options{})
	data := withDeclaredSize(pngBytes(t, 2, 2), 60000, 60000)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 60000, cfg.Width)

	_, err = store.thumbnail(data)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	stored, err := store.Save(ctx, "2026-10-16", data, "bomb.png")
	require.NoError(t, err)
	assert.True(t, ValidRef(stored.Ref))
	assert.Empty(t, stored.ThumbnailRef)
}

func TestStore_MaxPixelsOption(t *testing.T) {
	store := newLocalStore(t, Options{MaxPixels: 100})

	stored, err := store.Save(context.Background(), "2026-10-16", pngBytes(t, 20, 20), "small.png")
	require.NoError(t, err)
	assert.Empty(t, stored.ThumbnailRef)

	_, err = store.thumbnail(pngBytes(t, 10, 10))
	assert.NoError(t, err)
}

func TestStore_Rejections(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t, Options{MaxBytes: 8})

	_, err := store.Save(ctx, "2026-10-16", nil, "a.png")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = store.Save(ctx, "2026-10-16", bytes.Repeat([]byte{1}, 9), "a.png")
	assert.ErrorIs(t, err, ErrImageTooBig)

	_, _, err = store.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidRef)

	exists, err := store.Exists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = store.Open(ctx, "2026-10-16/123e4567-e89b-12d3-a456-426614174000.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t, Options{})

	stored, err := store.Save(ctx, "2026-10-16", pngBytes(t, 10, 10), "a.png")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ThumbnailRef)

	require.NoError(t, store.Delete(ctx, stored))
	for _, ref := range []string{stored.Ref, stored.ThumbnailRef} {
		exists, err := store.Exists(ctx, ref)
		require.NoError(t, err)
		assert.False(t, exists)
	}

	assert.NoError(t, store.Delete(ctx, stored))
	assert.NoError(t, store.Delete(ctx, nil))
}

func TestFTPBackend_UnreachableServer(t *testing.T) {
	backend := NewFTPBackend(FTPConfig{Host: "127.0.0.1", Port: "1", Timeout: 200 * time.Millisecond})
	defer backend.Close()

	err := backend.Put(context.Background(), "2026-10-16/a.png", bytes.NewReader([]byte("x")))
	assert.ErrorContains(t, err, "failed to connect to FTP")
}
