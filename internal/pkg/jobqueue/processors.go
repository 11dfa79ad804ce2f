package jobqueue

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/imageprocessor"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/mediastore"
)

// processListingImageJob generates the WebP variants for a freshly uploaded
// listing image and, when offsite backup is configured, enqueues copies of
// the original and its variants.
func (q *Queue) processListingImageJob(job *Job) error {
	imageID, ok := UintFromPayload(job.Payload, "image_id")
	if !ok {
		return fmt.Errorf("invalid payload: image_id is missing or not numeric")
	}

	db := database.GetDB()

	var img models.ListingImage
	if err := db.First(&img, imageID).Error; err != nil {
		return fmt.Errorf("listing image %d not found: %w", imageID, err)
	}

	if err := imageprocessor.ProcessListingImage(db, &img, imageprocessor.OriginalPath(&img)); err != nil {
		return fmt.Errorf("failed to process listing image %d: %w", imageID, err)
	}

	q.enqueueMediaBackups(&img)
	return nil
}

// enqueueMediaBackups schedules offsite copies for an image and its variants.
// Skipped silently when backup is not configured.
func (q *Queue) enqueueMediaBackups(img *models.ListingImage) {
	cfg, err := mediastore.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		return
	}

	paths := []string{imageprocessor.OriginalPath(img)}
	if img.HasWebP {
		paths = append(paths, imageprocessor.ThumbnailPath(img), imageprocessor.MediumPath(img))
	}

	for _, p := range paths {
		_, err := q.EnqueueJob(JobTypeMediaBackup, map[string]interface{}{
			"local_path": p,
			"object_key": mediastore.ObjectKeyForListing(img.ListingID, filepath.Base(p)),
		})
		if err != nil {
			log.Errorf("[JobQueue] Failed to enqueue media backup for %s: %v", p, err)
		}
	}
}

// processMediaBackupJob copies a local media file to the offsite bucket.
func (q *Queue) processMediaBackupJob(ctx context.Context, job *Job) error {
	localPath, _ := job.Payload["local_path"].(string)
	objectKey, _ := job.Payload["object_key"].(string)
	if localPath == "" || objectKey == "" {
		return fmt.Errorf("invalid payload: local_path and object_key are required")
	}

	client, err := mediastore.GetClient()
	if err != nil {
		return fmt.Errorf("media store unavailable: %w", err)
	}

	if _, err := client.UploadFile(ctx, localPath, objectKey); err != nil {
		return err
	}
	return nil
}
