package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Streak policies for the daily check-in ledger. The historical behavior
// computes streaks across all of a user's plans; per_plan scopes the
// lookback to the plan being checked in.
const (
	StreakPolicyGlobal  = "global"
	StreakPolicyPerPlan = "per_plan"
)

type Config struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	ServerPort   string
	StreakPolicy string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "quitcoach"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		StreakPolicy: getEnv("STREAK_POLICY", StreakPolicyGlobal),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
