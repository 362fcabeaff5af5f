package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a single incident report. UserID is the hex id of the
// reporting user, stored as a plain string; User is a display-name
// snapshot taken at submission time.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	User        string             `bson:"user" json:"user"`
	UserID      string             `bson:"userId" json:"userId"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Lat         *float64           `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon         *float64           `bson:"lon,omitempty" json:"lon,omitempty"`
	ImageUris   []string           `bson:"imageUris" json:"imageUris"`
	VideoUris   []string           `bson:"videoUris" json:"videoUris"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnrichedReport is a Report joined with the owner's current profile
// image for the feed. UserProfileImage is null when the owner has no
// image or the stored userId is malformed.
type EnrichedReport struct {
	Report           `bson:",inline"`
	UserProfileImage *string `json:"userProfileImage"`
}
