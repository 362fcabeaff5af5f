package cloudmedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePublicID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "image url",
			url:    "https://res.cloudinary.com/demo/image/upload/v1700000000/roadsafe/reports/abc123.jpg",
			wantID: "roadsafe/reports/abc123",
			wantOK: true,
		},
		{
			name:   "video url with nested folder",
			url:    "https://res.cloudinary.com/demo/video/upload/v1712345678/roadsafe/reports/videos/clip.mp4",
			wantID: "roadsafe/reports/videos/clip",
			wantOK: true,
		},
		{
			name:   "profile url uppercase extension",
			url:    "https://res.cloudinary.com/demo/image/upload/v1/roadsafe/reports/profiles/me.PNG",
			wantID: "roadsafe/reports/profiles/me",
			wantOK: true,
		},
		{
			name:   "unknown extension kept",
			url:    "https://res.cloudinary.com/demo/raw/upload/v1700000000/roadsafe/reports/notes.txt",
			wantID: "roadsafe/reports/notes.txt",
			wantOK: true,
		},
		{
			name: "no upload segment",
			url:  "https://example.com/images/abc123.jpg",
		},
		{
			name: "version without digits",
			url:  "https://res.cloudinary.com/demo/image/upload/vNaN/abc.jpg",
		},
		{
			name: "empty string",
			url:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := DerivePublicID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
