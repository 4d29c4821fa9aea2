package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Storage {
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return map[string]Storage{
		"local":  local,
		"memory": NewMemoryStorage(),
	}
}

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "vendors/v1/photo.jpg")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Save(ctx, "vendors/v1/photo.jpg", strings.NewReader("first")))
			require.NoError(t, store.Save(ctx, "vendors/v1/photo.jpg", strings.NewReader("second")))

			rc, err := store.Get(ctx, "vendors/v1/photo.jpg")
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, rc.Close())
			require.NoError(t, err)
			assert.Equal(t, "second", string(data))

			require.NoError(t, store.Delete(ctx, "vendors/v1/photo.jpg"))
			require.NoError(t, store.Delete(ctx, "vendors/v1/photo.jpg"))
			_, err = store.Get(ctx, "vendors/v1/photo.jpg")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside", "/etc/passwd", "a/../../b", ""} {
		assert.Error(t, store.Save(context.Background(), p, strings.NewReader("x")), p)
	}
}

func pngOf(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	_ = png.Encode(buf, img)
	return buf.Bytes()
}

func TestFitJPEG(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.FitJPEG(bytes.NewReader(pngOf(800, 400)), 200, 200)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	small, err := p.FitJPEG(bytes.NewReader(pngOf(40, 30)), 200, 200)
	require.NoError(t, err)
	cfg, _, err = image.DecodeConfig(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)

	_, err = p.FitJPEG(strings.NewReader("not an image"), 200, 200)
	assert.Error(t, err)
}
