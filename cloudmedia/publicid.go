package cloudmedia

import "regexp"

// Hosted URLs look like .../upload/v<version>/<path>.<ext>; the host
// keys deletion on <path> (no extension), not on the URL.
var (
	uploadPathRe = regexp.MustCompile(`/upload/v\d+/(.+)$`)
	mediaExtRe   = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|mp4|mov|avi|webm)$`)
)

// DerivePublicID extracts the host-internal identifier from a hosted
// URL. ok is false for URLs without an /upload/v<digits>/ segment;
// such URLs are skipped on delete, never retried.
func DerivePublicID(rawURL string) (string, bool) {
	m := uploadPathRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return mediaExtRe.ReplaceAllString(m[1], ""), true
}
