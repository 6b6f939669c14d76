package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/weltrada/product-research/internal/fetch"
)

// Fetcher downloads remote assets with bounded timeouts. Failures are
// reported as false, never as errors: a missing asset is simply absent from
// the run output.
type Fetcher struct {
	images  *fetch.Client
	docs    *fetch.Client
	quality int
	logger  *slog.Logger
}

type FetcherOptions struct {
	ImageTimeout    time.Duration
	DocumentTimeout time.Duration
	UserAgent       string
	// Quality is the JPEG encode quality for normalized images.
	Quality int
}

func NewFetcher(opts FetcherOptions, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		images:  fetch.NewClient(opts.ImageTimeout, opts.UserAgent),
		docs:    fetch.NewClient(opts.DocumentTimeout, opts.UserAgent),
		quality: opts.Quality,
		logger:  logger.With("component", "assets"),
	}
}

// SaveImage downloads url, flattens it to an opaque RGB image and writes it
// as JPEG to dest. Returns false on any fetch, decode, or write failure.
func (f *Fetcher) SaveImage(ctx context.Context, url, dest string) bool {
	body, err := f.images.Get(ctx, url)
	if err != nil {
		f.logger.Warn("image fetch failed", "url", url, "error", err)
		return false
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		f.logger.Warn("image decode failed", "url", url, "error", err)
		return false
	}

	// Flatten alpha and palette onto a white background, matching the fixed
	// 3-channel output contract.
	bounds := src.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, src, bounds.Min, draw.Over)

	out, err := os.Create(dest)
	if err != nil {
		f.logger.Warn("image write failed", "dest", dest, "error", err)
		return false
	}

	if err := jpeg.Encode(out, rgb, &jpeg.Options{Quality: f.quality}); err != nil {
		out.Close()
		os.Remove(dest)
		f.logger.Warn("image encode failed", "dest", dest, "error", err)
		return false
	}

	if err := out.Close(); err != nil {
		os.Remove(dest)
		return false
	}

	return true
}

// SaveDocument downloads url and writes the raw body to dest. Returns false
// on any failure; no file is left behind.
func (f *Fetcher) SaveDocument(ctx context.Context, url, dest string) bool {
	body, err := f.docs.Get(ctx, url)
	if err != nil {
		f.logger.Warn("document fetch failed", "url", url, "error", err)
		return false
	}

	if err := os.WriteFile(dest, body, 0644); err != nil {
		f.logger.Warn("document write failed", "dest", dest, "error", err)
		return false
	}

	return true
}

// ImageFilename builds the saved-image name for the seq-th successful save
// of a product: <slug-brand>-<code>-<NNN>.jpg. seq reflects saved-file
// count, so failed downloads leave no gaps.
func ImageFilename(brand, code string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d.jpg", Slugify(brand), strings.ToLower(code), seq)
}
