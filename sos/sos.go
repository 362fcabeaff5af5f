package sos

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"roadsafe/db"
	"roadsafe/models"
	"roadsafe/mq"
	"roadsafe/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateSos persists an emergency alert and pushes it to the live feed.
func CreateSos(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var input struct {
			User    string   `json:"user"`
			Message string   `json:"message"`
			Lat     *float64 `json:"lat"`
			Lon     *float64 `json:"lon"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		if strings.TrimSpace(input.User) == "" || strings.TrimSpace(input.Message) == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "User and message required")
			return
		}

		alert := models.Sos{
			User:           input.User,
			Message:        input.Message,
			IncidentNumber: "SOS-" + strings.ToUpper(uuid.NewString()[:8]),
			Lat:            input.Lat,
			Lon:            input.Lon,
			Timestamp:      time.Now().UTC(),
		}

		res, err := db.SosCollection.InsertOne(r.Context(), alert)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save alert")
			return
		}
		alert.ID = res.InsertedID.(primitive.ObjectID)

		hub.Broadcast(alert)
		go mq.Emit(context.Background(), "sos-created", models.Index{
			EntityType: "sos", Method: "POST", EntityId: alert.ID.Hex(),
		})

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"sos":     alert,
		})
	}
}

// GetSosEvents returns alerts, newest first.
func GetSosEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := db.SosCollection.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}
	defer cursor.Close(r.Context())

	alerts := []models.Sos{}
	if err := cursor.All(r.Context(), &alerts); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing alerts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, alerts)
}
