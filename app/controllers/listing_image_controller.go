package controllers

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/constants"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/imageprocessor"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/jobqueue"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/upload"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/usercontext"
)

const maxGalleryImageSize = 10 * 1024 * 1024 // 10 MB

// ownedListing loads a listing and verifies the current user owns it.
// Admins pass the ownership check.
func ownedListing(c *fiber.Ctx, listingID uint) (*models.BusinessListing, error) {
	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != currentUserID(c) && !usercontext.IsAdmin(c) {
		return nil, fiber.ErrForbidden
	}
	return listing, nil
}

// HandleListingImageUpload accepts a gallery image for an owned listing.
// The original is stored immediately; WebP variants are generated by a
// background job.
func HandleListingImageUpload(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	listing, err := ownedListing(c, uint(id))
	if err != nil {
		return listingAccessError(c, err)
	}

	if !usercontext.IsAdmin(c) {
		features, err := planService.EffectiveFeaturesForListing(requestSettings(c), listing.ID)
		if err != nil {
			log.Errorf("feature lookup failed for listing %d: %v", listing.ID, err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
		}
		if !features.Has(entitlements.FeatureGallery) {
			return jsonError(c, fiber.StatusForbidden, "plan_required", "the current plan does not include a gallery")
		}
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "image file is required")
	}
	if fileHeader.Size > maxGalleryImageSize {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "image exceeds the 10 MB limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Errorf("failed to open upload: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}
	head := make([]byte, 512)
	n, _ := src.Read(head)
	src.Close()

	contentType, err := upload.ValidateImageBySniff(fileHeader.Filename, head[:n])
	if err != nil {
		return jsonError(c, fiber.StatusUnsupportedMediaType, "invalid_image", err.Error())
	}

	imageUUID := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	dir := filepath.Join(constants.UploadsPath, "listings", strconv.FormatUint(uint64(listing.ID), 10))
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Errorf("failed to create upload directory %s: %v", dir, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}

	img := models.ListingImage{
		ListingID:   listing.ID,
		UUID:        imageUUID,
		FileName:    imageUUID + ext,
		FilePath:    dir,
		FileSize:    fileHeader.Size,
		ContentType: contentType,
		IsLogo:      c.FormValue("is_logo") == "true",
	}

	if err := c.SaveFile(fileHeader, imageprocessor.OriginalPath(&img)); err != nil {
		log.Errorf("failed to store upload: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Listing.AddImage(&img); err != nil {
		os.Remove(imageprocessor.OriginalPath(&img))
		log.Errorf("failed to record image: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}

	if _, err := jobqueue.GetManager().EnqueueListingImageProcessing(img.ID); err != nil {
		// The original is already stored; variants can be regenerated later
		log.Errorf("failed to enqueue image processing for %d: %v", img.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(img)
}

// HandleListingImageDelete removes a gallery image and its variants.
func HandleListingImageDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}
	imageID, err := strconv.ParseUint(c.Params("imageID"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid image id")
	}

	if _, err := ownedListing(c, uint(id)); err != nil {
		return listingAccessError(c, err)
	}

	repos := repository.GetGlobalRepositories()
	img, err := repos.Listing.GetImageByID(uint(imageID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "image not found")
		}
		log.Errorf("image lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if img.ListingID != uint(id) {
		return jsonError(c, fiber.StatusNotFound, "not_found", "image not found")
	}

	if err := repos.Listing.DeleteImage(img.ID); err != nil {
		log.Errorf("failed to delete image %d: %v", img.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "delete failed")
	}

	// Local files are removed best-effort; the DB row is authoritative
	os.Remove(imageprocessor.OriginalPath(img))
	if img.HasWebP {
		os.Remove(imageprocessor.ThumbnailPath(img))
		os.Remove(imageprocessor.MediumPath(img))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// listingAccessError maps ownership lookup failures to API responses.
func listingAccessError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, fiber.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
	default:
		log.Errorf("listing lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
}
