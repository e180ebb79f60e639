package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	BaseURL           string
	DatabaseDSN       string
	AccessSecret      string
	FirebaseAPIKey    string
	FirebaseProjectID string
	FCMAccessToken    string
	KafkaBroker       string
	KafkaTopic        string
	KafkaUsername     string
	KafkaPassword     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:        os.Getenv("SERVER_PORT"),
		BaseURL:           os.Getenv("BASE_URL"),
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		AccessSecret:      os.Getenv("ACCESS_SECRET"),
		FirebaseAPIKey:    os.Getenv("FIREBASE_API_KEY"),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		FCMAccessToken:    os.Getenv("FCM_ACCESS_TOKEN"),
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
		KafkaTopic:        os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:     os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:     os.Getenv("KAFKA_PASSWORD"),
	}
}
