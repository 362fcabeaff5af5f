package cloudmedia

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// fakeHost records uploads and deletes in place of the real media
// service.
type fakeHost struct {
	mu       sync.Mutex
	uploads  []UploadOptions
	deletes  map[string][][]string
	failFrom int // fail uploads once this many have succeeded; -1 never
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		deletes:  make(map[string][][]string),
		failFrom: -1,
	}
}

func (f *fakeHost) Upload(_ context.Context, r io.Reader, opts UploadOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFrom >= 0 && len(f.uploads) >= f.failFrom {
		return "", fmt.Errorf("host rejected upload")
	}
	f.uploads = append(f.uploads, opts)
	return fmt.Sprintf("https://res.example.com/demo/%s/upload/v1700000000/%s/file%d.jpg",
		opts.ResourceType, opts.Folder, len(f.uploads)), nil
}

func (f *fakeHost) Delete(_ context.Context, resourceType string, publicIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes[resourceType] = append(f.deletes[resourceType], publicIDs)
	return nil
}

func (f *fakeHost) deletedIDs(resourceType string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, call := range f.deletes[resourceType] {
		ids = append(ids, call...)
	}
	return ids
}
