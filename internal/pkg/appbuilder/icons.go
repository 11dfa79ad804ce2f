package appbuilder

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

// iconSizes are the variants the manifest references. 192 covers the install
// prompt, 512 the splash screen.
var iconSizes = []int{192, 512}

// GenerateIconVariants produces the square PNG icon variants from an uploaded
// source image and returns the icon entries for the app. WebP variants are
// added when the admin toggle is on; they are best effort, so encoding
// failure keeps the PNG and logs.
func GenerateIconVariants(settings models.SettingsSnapshot, app *models.PwaApp, sourcePath, outputDir string) ([]models.AppIcon, error) {
	src, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open icon source: %w", err)
	}

	appDir := filepath.Join(outputDir, app.AppUUID)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create icon directory: %w", err)
	}

	icons := make([]models.AppIcon, 0, len(iconSizes)*2)
	for _, size := range iconSizes {
		variant := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)
		sizes := fmt.Sprintf("%dx%d", size, size)

		pngName := fmt.Sprintf("icon-%d.png", size)
		if err := imaging.Save(variant, filepath.Join(appDir, pngName)); err != nil {
			return nil, fmt.Errorf("failed to save %s icon: %w", sizes, err)
		}
		icons = append(icons, models.AppIcon{
			Path:    publicIconPath(app.AppUUID, pngName),
			Sizes:   sizes,
			Type:    "image/png",
			Purpose: "any",
		})

		if !settings.WebPIconsEnabled {
			continue
		}
		webpName := fmt.Sprintf("icon-%d.webp", size)
		if err := saveWebP(variant, filepath.Join(appDir, webpName)); err != nil {
			log.Warnf("webp icon variant skipped for app %s: %v", app.AppUUID, err)
			continue
		}
		icons = append(icons, models.AppIcon{
			Path:  publicIconPath(app.AppUUID, webpName),
			Sizes: sizes,
			Type:  "image/webp",
		})
	}

	return icons, nil
}

func publicIconPath(appUUID, name string) string {
	return fmt.Sprintf("/a/%s/icons/%s", appUUID, name)
}

// saveWebP saves an image in WebP format
func saveWebP(img image.Image, outputPath string) error {
	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}

	return nil
}
