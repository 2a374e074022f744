// Package service contains the business logic layer.
//
// This file implements responsive image variants for the site's pictures.
package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"github.com/fnaconcept/site/internal/domain"
)

// AllowedWidths are the variant widths served by ImageService.
var AllowedWidths = []int{320, 640, 960, 1280}

// VariantJPEGQuality is the JPEG quality of generated variants.
const VariantJPEGQuality = 82

// =============================================================================
// Interface Definition
// =============================================================================

// ImageService produces resized copies of the site's images.
type ImageService interface {
	// Variant returns the image called name fitted to width pixels, as JPEG.
	// cached reports whether the variant was already in memory.
	// Returns domain.EINVALID for a bad name or width.
	// Returns domain.ENOTFOUND if the image does not exist.
	Variant(ctx context.Context, name string, width int) (variant *ImageVariant, cached bool, err error)
}

// ImageVariant is an encoded image.
type ImageVariant struct {
	Data        []byte
	ContentType string
	ETag        string
	Width       int
	Height      int
}

// =============================================================================
// Implementation
// =============================================================================

type variantKey struct {
	name  string
	width int
}

// imageService implements ImageService over an fs.FS of originals.
type imageService struct {
	source fs.FS
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[variantKey]*ImageVariant
	group singleflight.Group
}

// NewImageService creates an ImageService reading originals from source.
func NewImageService(source fs.FS, logger *slog.Logger) ImageService {
	return &imageService{
		source: source,
		logger: logger,
		cache:  make(map[variantKey]*ImageVariant),
	}
}

// Variant returns the image called name fitted to width pixels.
func (s *imageService) Variant(ctx context.Context, name string, width int) (*ImageVariant, bool, error) {
	const op = "image.variant"

	if err := validateImageName(name); err != nil {
		return nil, false, domain.Invalid(op, err.Error())
	}
	if !slices.Contains(AllowedWidths, width) {
		return nil, false, domain.Invalid(op, fmt.Sprintf("width must be one of %v", AllowedWidths))
	}

	key := variantKey{name: name, width: width}

	s.mu.RLock()
	v, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// Concurrent misses for the same variant share one resize. The resize
	// does not depend on the caller that started it, so one caller going
	// away does not fail the others.
	res, err, _ := s.group.Do(fmt.Sprintf("%s@%d", name, width), func() (interface{}, error) {
		v, err := s.render(op, name, width)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[key] = v
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.(*ImageVariant), false, nil
}

// render decodes the original and fits it to width while preserving the
// aspect ratio. Images narrower than width are not enlarged.
func (s *imageService) render(op, name string, width int) (*ImageVariant, error) {
	f, err := s.source.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(op, "image", name)
		}
		return nil, domain.Internal(err, op, "failed to open image")
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to decode image")
	}

	fitted := imaging.Fit(img, width, img.Bounds().Dy(), imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(VariantJPEGQuality)); err != nil {
		return nil, domain.Internal(err, op, "failed to encode image")
	}

	sum := sha256.Sum256(buf.Bytes())
	v := &ImageVariant{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		ETag:        fmt.Sprintf(`"%x"`, sum[:8]),
		Width:       fitted.Bounds().Dx(),
		Height:      fitted.Bounds().Dy(),
	}

	s.logger.Debug("rendered image variant",
		"name", name,
		"width", v.Width,
		"height", v.Height,
		"bytes", len(v.Data),
	)
	return v, nil
}

// validateImageName accepts plain file names with a raster extension.
func validateImageName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid image name %q", name)
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return nil
	default:
		return fmt.Errorf("unsupported image type %q", path.Ext(name))
	}
}
