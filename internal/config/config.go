package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	// AskTimeout bounds every request/reply exchange with an actor.
	AskTimeout time.Duration
	// PricePerHourCents is the fixed parking rate.
	PricePerHourCents int

	AWSRegion            string
	SQSOccupancyQueueURL string
	IoTMQTTEndpoint      string

	LPREnabled bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Config: could not load .env file: %v", err)
	}

	askTimeoutSeconds := getEnvInt("ASK_TIMEOUT_SECONDS", 5)
	pricePerHourCents := getEnvInt("PRICE_PER_HOUR_CENTS", 200)

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		AskTimeout:        time.Duration(askTimeoutSeconds) * time.Second,
		PricePerHourCents: pricePerHourCents,

		AWSRegion:            getEnv("AWS_REGION", "eu-central-1"),
		SQSOccupancyQueueURL: getEnv("SQS_OCCUPANCY_QUEUE_URL", ""),
		IoTMQTTEndpoint:      getEnv("IOT_MQTT_ENDPOINT", ""),

		LPREnabled: getEnv("LPR_ENABLED", "false") == "true",
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Config: environment variable '%s' not set, using default '%s'", key, fallback)
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Printf("Config: environment variable '%s' not set, using default %d", key, fallback)
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Config: invalid value '%s' for '%s', using default %d", value, key, fallback)
		return fallback
	}
	return parsed
}
