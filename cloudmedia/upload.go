package cloudmedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageBytes = 8 << 20   // 8 MiB per image
	MaxVideoBytes = 100 << 20 // 100 MiB per clip
	MaxImages     = 5
	MaxVideos     = 3

	maxImageDim = 2000
	memoryLimit = 32 << 20
)

var ErrHostNotConfigured = errors.New(
	"media upload requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")

// FormFiles holds the attachments of a report submission, in the order
// the client sent them.
type FormFiles struct {
	Images []*multipart.FileHeader
	Videos []*multipart.FileHeader
}

func (f *FormFiles) Count() int {
	return len(f.Images) + len(f.Videos)
}

// CollectFormFiles parses the multipart body and validates the
// "images" and "videos" fields against the count, size and mimetype
// limits. Violations map to 400s at the handler.
func CollectFormFiles(r *http.Request) (*FormFiles, error) {
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		return nil, fmt.Errorf("invalid form data")
	}
	if r.MultipartForm == nil {
		return &FormFiles{}, nil
	}

	ff := &FormFiles{
		Images: r.MultipartForm.File["images"],
		Videos: r.MultipartForm.File["videos"],
	}

	if len(ff.Images) > MaxImages || len(ff.Videos) > MaxVideos {
		return nil, fmt.Errorf("too many files. Maximum is %d images and %d videos", MaxImages, MaxVideos)
	}
	for _, fh := range ff.Images {
		if err := checkFile(fh, "image/", MaxImageBytes); err != nil {
			return nil, err
		}
	}
	for _, fh := range ff.Videos {
		if err := checkFile(fh, "video/", MaxVideoBytes); err != nil {
			return nil, err
		}
	}
	return ff, nil
}

// CollectProfileImage pulls the single "profileImage" field from an
// already-parsed multipart form. Returns nil when absent.
func CollectProfileImage(r *http.Request) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File["profileImage"]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]
	if err := checkFile(fh, "image/", MaxImageBytes); err != nil {
		return nil, err
	}
	return fh, nil
}

func checkFile(fh *multipart.FileHeader, mimePrefix string, maxBytes int64) error {
	if fh.Size > maxBytes {
		return fmt.Errorf("file too large. Maximum size is %dMB", maxBytes>>20)
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), mimePrefix) {
		return fmt.Errorf("only image and video uploads are allowed")
	}
	return nil
}

// UploadAll streams every attachment to the host and returns the
// hosted URLs per type, in submission order. The first failed upload
// aborts the whole request; files already sent are not rolled back.
func UploadAll(ctx context.Context, host Host, folder string, ff *FormFiles) (imageUris, videoUris []string, err error) {
	imageUris = []string{}
	videoUris = []string{}

	for _, fh := range ff.Images {
		data, err := readFile(fh)
		if err != nil {
			return nil, nil, err
		}
		url, err := host.Upload(ctx, bytes.NewReader(downscale(data)), UploadOptions{
			Folder:       folder,
			ResourceType: ResourceImage,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		imageUris = append(imageUris, url)
	}

	for _, fh := range ff.Videos {
		data, err := readFile(fh)
		if err != nil {
			return nil, nil, err
		}
		url, err := host.Upload(ctx, bytes.NewReader(data), UploadOptions{
			Folder:       folder + "/videos",
			ResourceType: ResourceVideo,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		videoUris = append(videoUris, url)
	}

	return imageUris, videoUris, nil
}

// UploadProfileImage sends an avatar to the profiles folder with the
// face-centered crop applied host-side.
func UploadProfileImage(ctx context.Context, host Host, folder string, fh *multipart.FileHeader) (string, error) {
	data, err := readFile(fh)
	if err != nil {
		return "", err
	}
	return host.Upload(ctx, bytes.NewReader(downscale(data)), UploadOptions{
		Folder:       folder + "/profiles",
		ResourceType: ResourceImage,
		FaceCrop:     true,
	})
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// downscale re-encodes images larger than maxImageDim on either side.
// Anything that fails to decode is streamed untouched; the host does
// its own validation.
func downscale(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data
	}
	b := img.Bounds()
	if b.Dx() <= maxImageDim && b.Dy() <= maxImageDim {
		return data
	}

	resized := imaging.Fit(img, maxImageDim, maxImageDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return data
	}
	return buf.Bytes()
}
