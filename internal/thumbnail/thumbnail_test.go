package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/model"
)

type memStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	body, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, apperrors.New(apperrors.CodeStorageAccess, "NoSuchKey")
	}
	return body, nil
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, body []byte, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[bucket+"/"+key] = body
	m.contentTypes[bucket+"/"+key] = contentType
	return nil
}

func newGenerator(t *testing.T, store *memStore, log *logger.Logger) *Generator {
	t.Helper()
	if log == nil {
		log = logger.Nop()
	}
	g, err := NewGenerator(GeneratorParams{Store: store, Logger: log, Dir: "thumbnail_dir", MaxDim: 100})
	require.NoError(t, err)
	return g
}

func encodePNG(t *testing.T, w, h int, transparent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if transparent {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: a})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"a.jpg", "thumbnail_dir/a_thumbnail.jpg"},
		{"photos/2026/cat.PNG", "thumbnail_dir/photos/2026/cat_thumbnail.jpg"},
		{"archive.v1/pic.jpeg", "thumbnail_dir/archive.v1/pic_thumbnail.jpg"},
		{"noext", "thumbnail_dir/noext_thumbnail.jpg"},
		{"../secret.png", "thumbnail_dir/../secret_thumbnail.jpg"},
		{"x/../../../d.jpg", "thumbnail_dir/x/../../../d_thumbnail.jpg"},
		{"a//b.jpg", "thumbnail_dir/a//b_thumbnail.jpg"},
		{"./c.png", "thumbnail_dir/./c_thumbnail.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := Key("thumbnail_dir", tt.key)
			assert.Equal(t, tt.want, got)
			assert.True(t, InDir("thumbnail_dir", got), "thumbnail of %q left the thumbnail dir", tt.key)
		})
	}
	assert.Equal(t, "thumbnail_dir/a_thumbnail.jpg", Key("thumbnail_dir/", "a.jpg"))
}

func TestInDir(t *testing.T) {
	assert.True(t, InDir("thumbnail_dir", "thumbnail_dir/a_thumbnail.jpg"))
	assert.True(t, InDir("thumbnail_dir/", "thumbnail_dir/a_thumbnail.jpg"))
	assert.False(t, InDir("thumbnail_dir", "thumbnail_dir_old/a.jpg"))
	assert.False(t, InDir("thumbnail_dir", "a.jpg"))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 300, 150, 100, 50},
		{"portrait", 150, 300, 50, 100},
		{"square", 640, 640, 100, 100},
		{"already small", 80, 40, 80, 40},
		{"exact bound", 100, 100, 100, 100},
		{"thin strip", 5000, 10, 100, 1},
		{"odd ratio", 333, 200, 100, 60},
		{"degenerate", 0, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, 100)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFitPreservesAspectRatio(t *testing.T) {
	for _, size := range [][2]int{{1024, 768}, {768, 1024}, {4032, 3024}, {101, 99}, {250, 17}} {
		w, h := Fit(size[0], size[1], 100)
		require.LessOrEqual(t, w, 100)
		require.LessOrEqual(t, h, 100)
		assert.Equal(t, 100, max(w, h))
		assert.Equal(t, size[0] >= size[1], w >= h, "orientation changed for %v", size)

		want := float64(min(size[0], size[1])) * 100 / float64(max(size[0], size[1]))
		assert.InDelta(t, want, float64(min(w, h)), 0.5, "short side of %v", size)
	}
}

func TestRenderFlattensTransparency(t *testing.T) {
	src, _, err := image.Decode(bytes.NewReader(encodePNG(t, 40, 20, true)))
	require.NoError(t, err)

	dst := Render(src, 100)
	require.Equal(t, image.Rect(0, 0, 40, 20), dst.Bounds())
	assert.True(t, dst.Opaque())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, dst.RGBAAt(10, 10))
}

func TestGeneratePNGWithAlpha(t *testing.T) {
	store := newMemStore()
	store.objects["b/images/logo.png"] = encodePNG(t, 300, 150, true)
	g := newGenerator(t, store, nil)

	res := g.Generate(context.Background(), "b", "images/logo.png")
	require.True(t, res.IsOk(), "unexpected failure: %v", res.Err())

	thumbKey, _ := res.Value()
	assert.Equal(t, "thumbnail_dir/images/logo_thumbnail.jpg", thumbKey)
	assert.Equal(t, model.ThumbnailContentType, store.contentTypes["b/"+thumbKey])

	thumb, format, err := image.Decode(bytes.NewReader(store.objects["b/"+thumbKey]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())
}

func TestGenerateDoesNotUpscale(t *testing.T) {
	store := newMemStore()
	store.objects["b/small.JPG"] = encodeJPEG(t, 80, 40)
	g := newGenerator(t, store, nil)

	res := g.Generate(context.Background(), "b", "small.JPG")
	require.True(t, res.IsOk(), "unexpected failure: %v", res.Err())

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(store.objects["b/thumbnail_dir/small_thumbnail.jpg"]))
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestGenerateMissingObjectLogsAccessError(t *testing.T) {
	buf := &bytes.Buffer{}
	g := newGenerator(t, newMemStore(), logger.New(logger.Options{ServiceName: "test", Output: buf}))

	res := g.Generate(context.Background(), "b", "gone.jpg")
	require.False(t, res.IsOk())
	assert.Equal(t, apperrors.CodeStorageAccess, res.Code())
	assert.Equal(t, model.NotAvailable, res.ValueOr(model.NotAvailable))
	assert.Contains(t, buf.String(), "error accessing object in bucket 'b' with key 'gone.jpg'")
	assert.Contains(t, buf.String(), `"failure":"object storage access failed"`)
}

func TestGenerateCorruptImageLogsProcessingError(t *testing.T) {
	buf := &bytes.Buffer{}
	store := newMemStore()
	store.objects["b/fake.png"] = []byte("definitely not a png")
	g := newGenerator(t, store, logger.New(logger.Options{ServiceName: "test", Output: buf}))

	res := g.Generate(context.Background(), "b", "fake.png")
	require.False(t, res.IsOk())
	assert.Equal(t, apperrors.CodeDecode, res.Code())
	assert.Contains(t, buf.String(), "error processing object in bucket 'b' with key 'fake.png'")
	assert.Contains(t, buf.String(), `"failure":"image could not be processed"`)
	assert.NotContains(t, store.objects, "b/thumbnail_dir/fake_thumbnail.jpg")
}

func TestGeneratePutFailure(t *testing.T) {
	store := newMemStore()
	store.objects["b/a.jpg"] = encodeJPEG(t, 10, 10)
	store.putErr = apperrors.Wrap(apperrors.CodeStorageAccess, errors.New("AccessDenied"), "put")
	g := newGenerator(t, store, nil)

	res := g.Generate(context.Background(), "b", "a.jpg")
	require.False(t, res.IsOk())
	assert.Equal(t, apperrors.CodeStorageAccess, res.Code())
}

func TestNewGeneratorValidation(t *testing.T) {
	_, err := NewGenerator(GeneratorParams{Logger: logger.Nop(), Dir: "d"})
	assert.Error(t, err)
	_, err = NewGenerator(GeneratorParams{Store: newMemStore(), Dir: "d"})
	assert.Error(t, err)
	_, err = NewGenerator(GeneratorParams{Store: newMemStore(), Logger: logger.Nop()})
	assert.Error(t, err)

	g, err := NewGenerator(GeneratorParams{Store: newMemStore(), Logger: logger.Nop(), Dir: "d"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDim, g.maxDim)
	assert.Equal(t, "d", g.Dir())
}
