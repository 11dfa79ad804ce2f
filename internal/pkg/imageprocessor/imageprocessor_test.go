package imageprocessor

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ListingImage{}))
	return db
}

func writeTestPNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestProcessListingImage(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	img := &models.ListingImage{
		ListingID:   1,
		UUID:        uuid.New().String(),
		FileName:    "storefront.png",
		FilePath:    dir,
		ContentType: "image/png",
	}
	require.NoError(t, db.Create(img).Error)
	writeTestPNG(t, dir, img.FileName, 1600, 900)

	require.NoError(t, ProcessListingImage(db, img, OriginalPath(img)))

	assert.Equal(t, 1600, img.Width)
	assert.Equal(t, 900, img.Height)
	assert.True(t, img.HasWebP)

	for _, p := range []string{ThumbnailPath(img), MediumPath(img)} {
		info, err := os.Stat(filepath.FromSlash(p))
		require.NoError(t, err, "variant %s should exist", p)
		assert.Greater(t, info.Size(), int64(0))
	}

	var stored models.ListingImage
	require.NoError(t, db.First(&stored, img.ID).Error)
	assert.True(t, stored.HasWebP)
	assert.Equal(t, 1600, stored.Width)
}

func TestProcessListingImageSmallSourceKeepsSize(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	img := &models.ListingImage{
		ListingID: 2,
		UUID:      uuid.New().String(),
		FileName:  "logo.png",
		FilePath:  dir,
	}
	require.NoError(t, db.Create(img).Error)
	writeTestPNG(t, dir, img.FileName, 200, 200)

	require.NoError(t, ProcessListingImage(db, img, OriginalPath(img)))

	assert.Equal(t, 200, img.Width)
	assert.Equal(t, 200, img.Height)
}

func TestProcessListingImageMissingFile(t *testing.T) {
	db := newTestDB(t)

	img := &models.ListingImage{
		ListingID: 3,
		UUID:      uuid.New().String(),
		FileName:  "missing.png",
		FilePath:  t.TempDir(),
	}
	err := ProcessListingImage(db, img, OriginalPath(img))
	assert.Error(t, err)
}
