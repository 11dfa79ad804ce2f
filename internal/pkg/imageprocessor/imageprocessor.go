package imageprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

const (
	// Variant bounds. Images smaller than a bound keep their size.
	thumbnailWidth = 400
	mediumWidth    = 1200

	webpQuality = 85
)

// ProcessListingImage generates the WebP display variants for an uploaded
// gallery image, records its pixel dimensions, and persists the result.
// The original stays untouched next to the variants.
func ProcessListingImage(db *gorm.DB, img *models.ListingImage, originalPath string) error {
	src, err := imaging.Open(originalPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", img.UUID, err)
	}

	bounds := src.Bounds()
	img.Width = bounds.Dx()
	img.Height = bounds.Dy()

	// EXIF is optional; a missing block is not an error.
	if err := ExtractMetadata(img, originalPath); err != nil {
		log.Warnf("metadata extraction failed for image %s: %v", img.UUID, err)
	}

	dir := filepath.Dir(originalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create variant directory: %w", err)
	}

	for _, v := range []struct {
		width int
		path  string
	}{
		{thumbnailWidth, ThumbnailPath(img)},
		{mediumWidth, MediumPath(img)},
	} {
		variant := src
		if bounds.Dx() > v.width {
			variant = imaging.Resize(src, v.width, 0, imaging.Lanczos)
		}
		if err := saveWebP(variant, filepath.Join(dir, filepath.Base(v.path))); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filepath.Base(v.path), err)
		}
	}

	img.HasWebP = true
	if err := db.Save(img).Error; err != nil {
		return fmt.Errorf("failed to persist image %s: %w", img.UUID, err)
	}

	return nil
}

// ThumbnailPath returns the public path of the small WebP variant.
func ThumbnailPath(img *models.ListingImage) string {
	return variantPath(img, "thumb")
}

// MediumPath returns the public path of the medium WebP variant.
func MediumPath(img *models.ListingImage) string {
	return variantPath(img, "medium")
}

// variantPath places variants next to the original inside FilePath, which
// holds the storage directory of the image.
func variantPath(img *models.ListingImage, suffix string) string {
	return filepath.ToSlash(filepath.Join(img.FilePath, fmt.Sprintf("%s_%s.webp", img.UUID, suffix)))
}

// OriginalPath returns the on-disk location of the uploaded original.
func OriginalPath(img *models.ListingImage) string {
	return filepath.Join(img.FilePath, img.FileName)
}

func saveWebP(img image.Image, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return err
	}
	return webp.Encode(out, img, options)
}
