package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "")
	t.Setenv("FIREBASE_STORAGE_BUCKET", "demo-project.appspot.com")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, EstimationProviderGemini, cfg.EstimationProvider)
	assert.True(t, cfg.RequireCalorieConfirmation)
}

func TestLoadConfigRequiredFields(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadConfigRequiresSomeCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := LoadConfig()
	require.Error(t, err)

	// Inline base64 credentials are an accepted alternative.
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "eyJmYWtlIjogdHJ1ZX0=")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "eyJmYWtlIjogdHJ1ZX0=", cfg.FirebaseServiceAccountJSONBase64)
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ESTIMATION_PROVIDER", "palm")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ESTIMATION_PROVIDER")
}

func TestLoadConfigEstimationKeysAreOptional(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ESTIMATION_PROVIDER", EstimationProviderOpenAI)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, EstimationProviderOpenAI, cfg.EstimationProvider)
	assert.Empty(t, cfg.OpenAIAPIKey)
}
