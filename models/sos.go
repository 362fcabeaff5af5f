package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sos is an emergency-alert record; append-only, never edited through
// the API.
type Sos struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User           string             `bson:"user" json:"user"`
	Message        string             `bson:"message" json:"message"`
	IncidentNumber string             `bson:"incidentNumber" json:"incidentNumber"`
	Lat            *float64           `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon            *float64           `bson:"lon,omitempty" json:"lon,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}
