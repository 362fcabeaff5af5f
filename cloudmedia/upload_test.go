package cloudmedia

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func newUploadRequest(t *testing.T, files ...testFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/report", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func image(name string) testFile {
	return testFile{field: "images", name: name, contentType: "image/jpeg", data: []byte("jpeg-bytes")}
}

func video(name string) testFile {
	return testFile{field: "videos", name: name, contentType: "video/mp4", data: []byte("mp4-bytes")}
}

func TestCollectFormFiles(t *testing.T) {
	req := newUploadRequest(t, image("a.jpg"), image("b.jpg"), video("c.mp4"))

	ff, err := CollectFormFiles(req)
	require.NoError(t, err)
	require.Len(t, ff.Images, 2)
	require.Len(t, ff.Videos, 1)
	assert.Equal(t, 3, ff.Count())
	assert.Equal(t, "a.jpg", ff.Images[0].Filename)
	assert.Equal(t, "b.jpg", ff.Images[1].Filename)
}

func TestCollectFormFilesNoAttachments(t *testing.T) {
	req := newUploadRequest(t)

	ff, err := CollectFormFiles(req)
	require.NoError(t, err)
	assert.Equal(t, 0, ff.Count())
}

func TestCollectFormFilesTooManyImages(t *testing.T) {
	files := make([]testFile, 0, MaxImages+1)
	for i := 0; i <= MaxImages; i++ {
		files = append(files, image(fmt.Sprintf("img%d.jpg", i)))
	}

	_, err := CollectFormFiles(newUploadRequest(t, files...))
	assert.Error(t, err)
}

func TestCollectFormFilesRejectsWrongMimetype(t *testing.T) {
	bad := testFile{field: "images", name: "evil.exe", contentType: "application/octet-stream", data: []byte("x")}

	_, err := CollectFormFiles(newUploadRequest(t, bad))
	assert.Error(t, err)
}

func TestCollectFormFilesRejectsVideoInImageField(t *testing.T) {
	bad := testFile{field: "images", name: "clip.mp4", contentType: "video/mp4", data: []byte("x")}

	_, err := CollectFormFiles(newUploadRequest(t, bad))
	assert.Error(t, err)
}

func TestUploadAllPreservesOrderAndFolders(t *testing.T) {
	req := newUploadRequest(t, image("a.jpg"), image("b.jpg"), video("c.mp4"))
	ff, err := CollectFormFiles(req)
	require.NoError(t, err)

	host := newFakeHost()
	imageUris, videoUris, err := UploadAll(context.Background(), host, "roadsafe/reports", ff)
	require.NoError(t, err)
	require.Len(t, imageUris, 2)
	require.Len(t, videoUris, 1)

	require.Len(t, host.uploads, 3)
	assert.Equal(t, "roadsafe/reports", host.uploads[0].Folder)
	assert.Equal(t, ResourceImage, host.uploads[0].ResourceType)
	assert.Equal(t, "roadsafe/reports/videos", host.uploads[2].Folder)
	assert.Equal(t, ResourceVideo, host.uploads[2].ResourceType)

	// URLs come back in submission order.
	assert.Contains(t, imageUris[0], "file1")
	assert.Contains(t, imageUris[1], "file2")
	assert.Contains(t, videoUris[0], "file3")
}

func TestUploadAllAbortsOnFirstFailure(t *testing.T) {
	req := newUploadRequest(t, image("a.jpg"), image("b.jpg"))
	ff, err := CollectFormFiles(req)
	require.NoError(t, err)

	host := newFakeHost()
	host.failFrom = 1 // first upload succeeds, second fails

	imageUris, videoUris, err := UploadAll(context.Background(), host, "roadsafe/reports", ff)
	assert.Error(t, err)
	assert.Nil(t, imageUris)
	assert.Nil(t, videoUris)
	assert.Len(t, host.uploads, 1)
}

func TestUploadProfileImageUsesFaceCrop(t *testing.T) {
	req := newUploadRequest(t,
		testFile{field: "profileImage", name: "me.png", contentType: "image/png", data: []byte("png-bytes")})
	require.NoError(t, req.ParseMultipartForm(32<<20))

	fh, err := CollectProfileImage(req)
	require.NoError(t, err)
	require.NotNil(t, fh)

	host := newFakeHost()
	url, err := UploadProfileImage(context.Background(), host, "roadsafe/reports", fh)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.Len(t, host.uploads, 1)
	assert.Equal(t, "roadsafe/reports/profiles", host.uploads[0].Folder)
	assert.True(t, host.uploads[0].FaceCrop)
}

func TestCollectProfileImageAbsent(t *testing.T) {
	req := newUploadRequest(t)
	require.NoError(t, req.ParseMultipartForm(32<<20))

	fh, err := CollectProfileImage(req)
	require.NoError(t, err)
	assert.Nil(t, fh)
}
