package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"goingmarry-api/internal/config"
	"goingmarry-api/pkg/apierror"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageService resolves inbound image payloads to stable hosted URLs and
// cleans up superseded uploads.
type ImageService interface {
	// Resolve passes absolute URLs through unchanged; anything else is
	// treated as embedded image data and uploaded to the image host.
	// Repeated resolution of an already-hosted URL never re-uploads.
	Resolve(ctx context.Context, rawImage string) (string, error)

	// Remove deletes a managed upload, best-effort. URLs that do not belong
	// to the managed host are left alone. Failures are logged, never raised.
	Remove(ctx context.Context, hostedURL string)
}

// CloudinaryService is the Cloudinary-backed ImageService.
type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryService creates an image service from Cloudinary credentials.
func NewCloudinaryService(cfg *config.CloudinaryConfig) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryService{cld: cld, folder: cfg.Folder}, nil
}

// Resolve uploads embedded image data and returns the hosted URL.
func (s *CloudinaryService) Resolve(ctx context.Context, rawImage string) (string, error) {
	if strings.HasPrefix(rawImage, "http") {
		return rawImage, nil
	}

	resp, err := s.cld.Upload.Upload(ctx, rawImage, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		log.Printf("[CloudinaryService] upload error: %v", err)
		return "", apierror.UploadFailed("Failed to upload image")
	}
	if resp.Error.Message != "" {
		log.Printf("[CloudinaryService] upload rejected: %s", resp.Error.Message)
		return "", apierror.UploadFailed("Failed to upload image")
	}
	return resp.SecureURL, nil
}

// Remove deletes a managed upload. External and default images are a silent
// no-op; deletion failures only get logged so orphaned remote images are
// possible, broken references are not.
func (s *CloudinaryService) Remove(ctx context.Context, hostedURL string) {
	publicID := ExtractPublicID(hostedURL)
	if publicID == "" {
		return
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Printf("[CloudinaryService] failed to delete image %s: %v", publicID, err)
		return
	}
	if resp.Result != "ok" {
		log.Printf("[CloudinaryService] failed to delete image %s: %s", publicID, resp.Result)
		return
	}
	log.Printf("[CloudinaryService] deleted image %s", publicID)
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ExtractPublicID derives the image host's internal identifier from a hosted
// URL: the path after the upload segment, minus an optional version segment
// and the file extension. Returns "" for URLs outside the managed host.
func ExtractPublicID(url string) string {
	if !strings.Contains(url, "res.cloudinary.com") {
		return ""
	}

	parts := strings.Split(url, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || len(parts) <= uploadIndex+2 {
		return ""
	}

	pathParts := parts[uploadIndex+1:]
	if versionSegment.MatchString(pathParts[0]) {
		pathParts = pathParts[1:]
	}

	filename := strings.Join(pathParts, "/")
	if dot := strings.LastIndex(filename, "."); dot > strings.LastIndex(filename, "/") {
		filename = filename[:dot]
	}
	return filename
}

// Ensure CloudinaryService implements ImageService
var _ ImageService = (*CloudinaryService)(nil)

// PassthroughImageService is used when no image host is configured. Embedded
// payloads are rejected so listings fall back to URLs the client already has.
type PassthroughImageService struct{}

// Resolve accepts hosted URLs as-is and refuses raw image data.
func (PassthroughImageService) Resolve(ctx context.Context, rawImage string) (string, error) {
	if rawImage == "" || strings.HasPrefix(rawImage, "http") {
		return rawImage, nil
	}
	return "", apierror.UploadFailed("Image uploads are not configured")
}

// Remove is a no-op without an image host.
func (PassthroughImageService) Remove(ctx context.Context, hostedURL string) {}

var _ ImageService = PassthroughImageService{}
