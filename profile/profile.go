package profile

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"roadsafe/cloudmedia"
	"roadsafe/db"
	"roadsafe/models"
	"roadsafe/mq"
	"roadsafe/rdx"
	"roadsafe/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const profileCacheTTL = 2 * time.Hour

func cacheKey(userID string) string {
	return "profile:" + userID
}

// GetProfile returns the authenticated user's profile, served from the
// Redis cache when warm.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := utils.GetUserFromRequest(r)
	if user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	key := cacheKey(user.ID.Hex())
	if cached, err := rdx.RdxGet(key); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	payload := utils.M{"user": user.Public()}
	if data, err := json.Marshal(payload); err == nil {
		if err := rdx.RdxSet(key, string(data), profileCacheTTL); err != nil {
			log.Printf("profile cache set failed for %s: %v", user.ID.Hex(), err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, payload)
}

// UpdateProfile changes name and/or email and optionally replaces the
// profile image. The old hosted image is deleted first; that deletion
// failing never blocks the update.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := utils.GetUserFromRequest(r)
	if user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var name, email string
	var imageURL string
	hasImage := false

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
			return
		}
		name = r.FormValue("name")
		email = r.FormValue("email")

		fh, err := cloudmedia.CollectProfileImage(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if fh != nil {
			host, folder, ok := cloudmedia.FromEnv()
			if !ok {
				utils.RespondWithError(w, http.StatusBadRequest, cloudmedia.ErrHostNotConfigured.Error())
				return
			}

			if user.ProfileImage != "" {
				cloudmedia.DeleteURLs(r.Context(), host, cloudmedia.ResourceImage, []string{user.ProfileImage})
			}

			imageURL, err = cloudmedia.UploadProfileImage(r.Context(), host, folder, fh)
			if err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload profile image")
				return
			}
			hasImage = true
		}
	} else {
		var input struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		name, email = input.Name, input.Email
	}

	updates := bson.M{}
	if hasImage {
		updates["profileImage"] = imageURL
	}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		err := db.UserCollection.FindOne(r.Context(),
			bson.M{"email": email, "_id": bson.M{"$ne": user.ID}}).Err()
		if err == nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		if err != mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		updates["email"] = email
	}

	if len(updates) > 0 {
		if _, err := db.UserCollection.UpdateOne(r.Context(),
			bson.M{"_id": user.ID}, bson.M{"$set": updates}); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	if _, err := rdx.RdxDel(cacheKey(user.ID.Hex())); err != nil {
		log.Printf("profile cache invalidation failed for %s: %v", user.ID.Hex(), err)
	}

	var updated models.User
	if err := db.UserCollection.FindOne(r.Context(), bson.M{"_id": user.ID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load updated profile")
		return
	}

	go mq.Emit(context.Background(), "profile-edited", models.Index{
		EntityType: "profile", Method: "PUT", EntityId: user.ID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Profile updated successfully",
		"user":    updated.Public(),
	})
}
