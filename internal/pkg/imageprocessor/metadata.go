package imageprocessor

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// ExtractMetadata reads the capture timestamp from the image's EXIF block.
// Images without EXIF data are left unchanged.
func ExtractMetadata(img *models.ListingImage, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening image file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	if dt, err := x.DateTime(); err == nil {
		img.TakenAt = &dt
	}

	return nil
}
