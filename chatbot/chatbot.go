package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"roadsafe/db"
	"roadsafe/models"
	"roadsafe/utils"

	"github.com/julienschmidt/httprouter"
	openai "github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const systemPrompt = "You are RoadSafe's travel-safety assistant. " +
	"Answer questions about road incidents, safe routes and emergency preparedness, briefly and practically."

// ChatWithBot forwards the message to the LLM provider and persists the
// exchange. Provider failures degrade to a canned reply; only missing
// configuration or a failed DB write surface as errors.
func ChatWithBot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		User    string `json:"user"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Message required")
		return
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		utils.RespondWithError(w, http.StatusInternalServerError, "OpenAI API key not loaded")
		return
	}

	reply := askBot(r.Context(), apiKey, input.Message)

	userName := input.User
	if userName == "" {
		userName = "User"
	}
	chat := models.Chat{
		User:     userName,
		Message:  input.Message,
		Response: reply,
		DateTime: time.Now().UTC(),
	}
	if _, err := db.ChatsCollection.InsertOne(r.Context(), chat); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save chat")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"user": input.Message,
		"bot":  reply,
	})
}

func askBot(ctx context.Context, apiKey, message string) string {
	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		log.Printf("chatbot: completion failed: %v", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "Sorry, the assistant quota is exceeded. Try again later!"
		}
		return "Sorry, the assistant request failed!"
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "Sorry, no reply"
	}
	return resp.Choices[0].Message.Content
}

// GetChats returns the transcript in chronological order.
func GetChats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}})
	cursor, err := db.ChatsCollection.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}
	defer cursor.Close(r.Context())

	chats := []models.Chat{}
	if err := cursor.All(r.Context(), &chats); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing chats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, chats)
}
