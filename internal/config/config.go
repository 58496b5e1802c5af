package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Estimation provider identifiers accepted in ESTIMATION_PROVIDER.
const (
	EstimationProviderGemini = "gemini"
	EstimationProviderOpenAI = "openai"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	EstimationProvider               string `mapstructure:"ESTIMATION_PROVIDER"`
	GeminiAPIKey                     string `mapstructure:"GEMINI_API_KEY"`
	OpenAIAPIKey                     string `mapstructure:"OPENAI_API_KEY"`
	RequireCalorieConfirmation       bool   `mapstructure:"REQUIRE_CALORIE_CONFIRMATION"`
}

// LoadConfig loads configuration from environment variables using Viper.
//
// The estimation API keys are deliberately not required: a missing key is a
// recognized, non-fatal condition that makes the meal pipeline fall back to a
// zero-calorie estimate instead of failing.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("ESTIMATION_PROVIDER", EstimationProviderGemini)
	viper.SetDefault("REQUIRE_CALORIE_CONFIRMATION", true)

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("FIREBASE_STORAGE_BUCKET")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("ESTIMATION_PROVIDER")
	viper.BindEnv("GEMINI_API_KEY")
	viper.BindEnv("OPENAI_API_KEY")
	viper.BindEnv("REQUIRE_CALORIE_CONFIRMATION")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.FirebaseStorageBucket == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET is required")
	}
	if cfg.EstimationProvider != EstimationProviderGemini && cfg.EstimationProvider != EstimationProviderOpenAI {
		return nil, errors.New("ESTIMATION_PROVIDER must be 'gemini' or 'openai'")
	}

	return &cfg, nil
}
