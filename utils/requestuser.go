package utils

import (
	"net/http"

	"roadsafe/globals"
	"roadsafe/models"
)

// GetUserIDFromRequest returns the authenticated user's hex id, or ""
// when the request was not authenticated.
func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		return ""
	}
	return requestingUserID
}

// GetUserFromRequest returns the user document the auth middleware
// loaded, or nil.
func GetUserFromRequest(r *http.Request) *models.User {
	user, ok := r.Context().Value(globals.UserKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
