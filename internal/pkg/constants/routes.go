package constants

// Static route constants shared by the router and the media pipeline.
const (
	// UploadsRoute is the public URL prefix for listing gallery images and
	// generated PWA icons.
	UploadsRoute = "/uploads"
	// UploadsPath is the on-disk uploads directory, without leading slash,
	// used when building file paths.
	UploadsPath = "uploads"
)
