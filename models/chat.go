package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is one assistant exchange; the transcript is append-only.
type Chat struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User     string             `bson:"user" json:"user"`
	Message  string             `bson:"message" json:"message"`
	Response string             `bson:"response" json:"response"`
	DateTime time.Time          `bson:"dateTime" json:"dateTime"`
}
