package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// PublicUser is the shape returned by auth and profile endpoints:
// everything except the password hash.
type PublicUser struct {
	ID           primitive.ObjectID `json:"_id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	ProfileImage string             `json:"profileImage,omitempty"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}
