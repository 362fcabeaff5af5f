package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection    *mongo.Collection
	ReportsCollection *mongo.Collection
	ChatsCollection   *mongo.Collection
	SosCollection     *mongo.Collection
	Client            *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("roadsafe")
	UserCollection = database.Collection("users")
	ReportsCollection = database.Collection("reports")
	ChatsCollection = database.Collection("chats")
	SosCollection = database.Collection("sos")
}

// EnsureIndexes creates the indexes the handlers rely on; called once
// at startup.
func EnsureIndexes() {
	// Unique email: signup checks first, the index catches races.
	_, err := UserCollection.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("users email index: %v", err)
	}

	_, err = ReportsCollection.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		log.Printf("reports userId index: %v", err)
	}
}
