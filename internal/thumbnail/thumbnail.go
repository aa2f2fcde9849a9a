// Package thumbnail produces bounded-size JPEG copies of uploaded images.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"strings"

	// Registered decoders for the image types that get thumbnails.
	_ "image/png"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/model"
	"github.com/sh3r4rd/upload_reports/internal/outcome"
	"github.com/sh3r4rd/upload_reports/internal/storage"
)

const (
	DefaultMaxDim = 100
	jpegQuality   = 75
	// maxSourcePixels bounds the decoded bitmap so a small compressed file
	// cannot exhaust the function's memory.
	maxSourcePixels = 64 << 20
)

// Generator creates thumbnails next to their source objects.
type Generator struct {
	store  storage.ObjectStore
	logg   *logger.Logger
	dir    string
	maxDim int
}

// GeneratorParams configure a Generator.
type GeneratorParams struct {
	Store  storage.ObjectStore
	Logger *logger.Logger
	Dir    string
	MaxDim int
}

// NewGenerator validates params; MaxDim defaults to DefaultMaxDim.
func NewGenerator(params GeneratorParams) (*Generator, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dir == "" {
		return nil, fmt.Errorf("thumbnail dir required")
	}
	maxDim := params.MaxDim
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &Generator{
		store:  params.Store,
		logg:   params.Logger,
		dir:    params.Dir,
		maxDim: maxDim,
	}, nil
}

// Dir is the key prefix under which thumbnails are written.
func (g *Generator) Dir() string { return g.dir }

// Key derives the thumbnail key of an object key. The key is opaque and is
// never cleaned, so the result always stays under dir.
func Key(dir, key string) string {
	base := strings.TrimSuffix(key, path.Ext(key))
	return strings.TrimSuffix(dir, "/") + "/" + base + model.ThumbnailSuffix + model.ThumbnailExtension
}

// InDir reports whether key lives under the thumbnail directory.
func InDir(dir, key string) bool {
	return strings.HasPrefix(key, strings.TrimSuffix(dir, "/")+"/")
}

// Generate reads bucket/key, writes its thumbnail to the same bucket and
// returns the thumbnail key. Failures are logged and returned as a failed
// result; they never panic or abort the caller.
func (g *Generator) Generate(ctx context.Context, bucket, key string) outcome.Result[string] {
	ctx = g.logg.WithObject(ctx, bucket, key)
	thumbKey := Key(g.dir, key)

	if err := g.generate(ctx, bucket, key, thumbKey); err != nil {
		meta := apperrors.MetadataFor(apperrors.CodeOf(err))
		ctx = g.logg.WithField(ctx, "failure", meta.Summary)
		if meta.Provider {
			g.logg.Error(ctx, fmt.Sprintf("error accessing object in bucket '%s' with key '%s'", bucket, key), err)
		} else {
			g.logg.Error(ctx, fmt.Sprintf("error processing object in bucket '%s' with key '%s'", bucket, key), err)
		}
		return outcome.Failed[string](err)
	}

	g.logg.Info(g.logg.WithField(ctx, "thumbnail_key", thumbKey),
		fmt.Sprintf("thumbnail created and saved to '%s/%s'", bucket, thumbKey))
	return outcome.Ok(thumbKey)
}

func (g *Generator) generate(ctx context.Context, bucket, key, thumbKey string) error {
	body, err := g.store.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}

	src, err := decode(body)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Render(src, g.maxDim), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "encode thumbnail")
	}

	return g.store.PutObject(ctx, bucket, thumbKey, buf.Bytes(), model.ThumbnailContentType)
}

func decode(body []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, err, "read image header")
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, apperrors.New(apperrors.CodeDecode,
			fmt.Sprintf("image is %dx%d, larger than the %d pixel limit", cfg.Width, cfg.Height, maxSourcePixels))
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, err, "decode image")
	}
	return img, nil
}
