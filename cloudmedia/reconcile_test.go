package cloudmedia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	old := []string{"a", "b", "c"}
	desired := []string{"b", "d"}

	assert.Equal(t, []string{"a", "c"}, Reconcile(old, desired))
}

func TestReconcileKeepsSharedURLs(t *testing.T) {
	urls := []string{"a", "b"}
	assert.Empty(t, Reconcile(urls, urls))
}

func TestReconcileEmptyDesiredDropsAll(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Reconcile([]string{"a", "b"}, nil))
}

func TestReconcileDeletesEachURLOnce(t *testing.T) {
	old := []string{"a", "a", "b"}
	assert.Equal(t, []string{"a", "b"}, Reconcile(old, nil))
}

func TestDeleteURLsSkipsMalformed(t *testing.T) {
	host := newFakeHost()
	DeleteURLs(context.Background(), host, ResourceImage, []string{
		"https://example.com/not-hosted/a.jpg",
		"https://res.example.com/demo/image/upload/v1700000000/roadsafe/reports/b.jpg",
	})

	assert.Equal(t, []string{"roadsafe/reports/b"}, host.deletedIDs(ResourceImage))
}

func TestDeleteURLsAllMalformedMakesNoCall(t *testing.T) {
	host := newFakeHost()
	DeleteURLs(context.Background(), host, ResourceImage, []string{"garbage"})

	assert.Empty(t, host.deletes)
}

func TestDeleteURLsNilHostIsNoop(t *testing.T) {
	DeleteURLs(context.Background(), nil, ResourceImage, []string{"whatever"})
}

// Replacing images=[a.jpg] with images=[b.jpg] must delete exactly a's
// derived identifier, in one batch call.
func TestUpdateScenarioReplaceSingleImage(t *testing.T) {
	host := newFakeHost()

	oldURL := "https://res.example.com/demo/image/upload/v1700000000/roadsafe/reports/a.jpg"
	newURL := "https://res.example.com/demo/image/upload/v1700000001/roadsafe/reports/b.jpg"

	toDelete := Reconcile([]string{oldURL}, []string{newURL})
	require.Equal(t, []string{oldURL}, toDelete)

	DeleteURLs(context.Background(), host, ResourceImage, toDelete)

	require.Len(t, host.deletes[ResourceImage], 1)
	assert.Equal(t, []string{"roadsafe/reports/a"}, host.deletes[ResourceImage][0])
}
