// Package imagestore keeps submitted images and their thumbnails behind opaque refs.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/shared/pkg/helpers"
	"dailyart/shared/pkg/logger"
)

var (
	ErrEmptyImage  = errors.New("empty image")
	ErrInvalidRef  = errors.New("invalid image ref")
	ErrImageTooBig = errors.New("image too large")
	// ErrTooManyPixels is returned by thumbnailing when the declared
	// dimensions exceed Options.MaxPixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

// DefaultMaxPixels caps the decoded size of an image before thumbnailing.
const DefaultMaxPixels = 40_000_000

// refPattern matches "<period>/<uuid>[_thumb].<ext>".
var refPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(_thumb)?\.[a-z0-9]{1,8}$`)

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// ValidRef reports whether ref has the shape produced by Store.
func ValidRef(ref string) bool {
	return refPattern.MatchString(ref)
}

// Stored describes a saved image.
type Stored struct {
	Ref          string
	ThumbnailRef string
	MimeType     string
}

// Options tunes a Store.
type Options struct {
	MaxBytes       int64
	ThumbnailWidth uint
	MaxPixels      int64
}

// Store saves images through a Backend.
type Store struct {
	backend Backend
	ids     *helpers.IDGenerator
	log     *logger.Logger
	opts    Options
}

func NewStore(backend Backend, log *logger.Logger, opts Options) *Store {
	if opts.ThumbnailWidth == 0 {
		opts.ThumbnailWidth = 320
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{backend: backend, ids: helpers.NewIDGenerator(), log: log, opts: opts}
}

// Save writes data under a fresh ref in period. The extension comes from the
// sniffed content type, falling back to the suggested file name. A JPEG
// thumbnail is written when the bytes decode as an image.
func (s *Store) Save(ctx context.Context, period clock.Period, data []byte, suggestedName string) (*Stored, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooBig, len(data))
	}

	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if ext == "" {
		ext = suggestedExt(suggestedName)
	}

	id := s.ids.GenerateUUID()
	stored := &Stored{
		Ref:      fmt.Sprintf("%s/%s.%s", period, id, ext),
		MimeType: mt.String(),
	}

	if err := s.backend.Put(ctx, stored.Ref, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	thumb, err := s.thumbnail(data)
	if err != nil {
		s.log.WithPeriod(string(period)).WithError(err).Debug("thumbnail skipped")
		return stored, nil
	}
	thumbRef := fmt.Sprintf("%s/%s_thumb.jpg", period, id)
	if err := s.backend.Put(ctx, thumbRef, bytes.NewReader(thumb)); err != nil {
		s.log.WithPeriod(string(period)).WithError(err).Warn("failed to store thumbnail")
		return stored, nil
	}
	stored.ThumbnailRef = thumbRef
	return stored, nil
}

// thumbnail reads the header first so an oversized image is never decoded.
func (s *Store) thumbnail(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > s.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := resize.Thumbnail(s.opts.ThumbnailWidth, s.opts.ThumbnailWidth, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func suggestedExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		ext := strings.ToLower(name[i+1:])
		if extPattern.MatchString(ext) {
			return ext
		}
	}
	return "bin"
}

// Exists reports whether ref names a stored image.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	if !ValidRef(ref) {
		return false, nil
	}
	return s.backend.Exists(ctx, ref)
}

// Open streams a stored image or thumbnail.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if !ValidRef(ref) {
		return nil, "", ErrInvalidRef
	}
	rc, err := s.backend.Open(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	return rc, mimeForExt(ref), nil
}

func mimeForExt(ref string) string {
	switch {
	case strings.HasSuffix(ref, ".jpg"), strings.HasSuffix(ref, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(ref, ".png"):
		return "image/png"
	case strings.HasSuffix(ref, ".gif"):
		return "image/gif"
	case strings.HasSuffix(ref, ".webp"):
		return "image/webp"
	}
	return "application/octet-stream"
}

// Delete removes an image and its thumbnail. Missing files are ignored.
func (s *Store) Delete(ctx context.Context, stored *Stored) error {
	if stored == nil {
		return nil
	}
	var errs []error
	for _, ref := range []string{stored.Ref, stored.ThumbnailRef} {
		if ref == "" {
			continue
		}
		if err := s.backend.Delete(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) Close() error {
	return s.backend.Close()
}
