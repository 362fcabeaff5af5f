// Package cloudmedia talks to the hosted media service: it streams
// uploads, batch-deletes assets by public ID, and keeps hosted URLs in
// step with the Mongo documents that reference them.
package cloudmedia

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"

	// 400x400 face-centered crop applied to avatars at upload time.
	faceCropTransform = "c_fill,g_face,h_400,w_400/q_auto"

	defaultFolder = "roadsafe/reports"
)

type UploadOptions struct {
	Folder       string
	ResourceType string
	FaceCrop     bool
}

// Host is the slice of the media service the handlers need. The
// Cloudinary SDK stays behind this interface so tests can fake it.
type Host interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (string, error)
	Delete(ctx context.Context, resourceType string, publicIDs []string) error
}

type cloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

// FromEnv builds a Host from CLOUDINARY_* environment variables.
// Returns ok=false when credentials are missing; callers decide whether
// that is fatal (it is only when files were actually attached).
func FromEnv() (Host, string, bool) {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, "", false
	}

	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = defaultFolder
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, "", false
	}

	return &cloudinaryHost{cld: cld}, folder, true
}

func (c *cloudinaryHost) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (string, error) {
	params := uploader.UploadParams{
		Folder:       opts.Folder,
		ResourceType: opts.ResourceType,
	}
	if opts.FaceCrop {
		params.Transformation = faceCropTransform
	}

	resp, err := c.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("media host: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("media host returned no URL")
	}
	return resp.SecureURL, nil
}

func (c *cloudinaryHost) Delete(ctx context.Context, resourceType string, publicIDs []string) error {
	if len(publicIDs) == 0 {
		return nil
	}

	assetType := api.Image
	if resourceType == ResourceVideo {
		assetType = api.Video
	}

	resp, err := c.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		AssetType: assetType,
		PublicIDs: publicIDs,
	})
	if err != nil {
		return err
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("media host: %s", resp.Error.Message)
	}
	return nil
}
