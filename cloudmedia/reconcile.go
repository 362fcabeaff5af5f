package cloudmedia

import (
	"context"
	"log"
)

// Reconcile compares the stored URL array with the caller-supplied
// desired state and returns the URLs to delete from the host: present
// in old, absent from new, each at most once.
func Reconcile(old, desired []string) []string {
	keep := make(map[string]struct{}, len(desired))
	for _, u := range desired {
		keep[u] = struct{}{}
	}

	seen := make(map[string]struct{}, len(old))
	var toDelete []string
	for _, u := range old {
		if _, ok := keep[u]; ok {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		toDelete = append(toDelete, u)
	}
	return toDelete
}

// DeleteURLs derives public IDs from the given hosted URLs and issues
// one batch delete for the resource type. Failures are logged and
// swallowed: stale assets on the host must never block a record update
// or deletion.
func DeleteURLs(ctx context.Context, host Host, resourceType string, urls []string) {
	if host == nil || len(urls) == 0 {
		return
	}

	var ids []string
	for _, u := range urls {
		id, ok := DerivePublicID(u)
		if !ok {
			log.Printf("cloudmedia: cannot derive identifier from %q, skipping", u)
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return
	}

	if err := host.Delete(ctx, resourceType, ids); err != nil {
		log.Printf("cloudmedia: deleting %d %s asset(s) failed: %v", len(ids), resourceType, err)
	}
}
