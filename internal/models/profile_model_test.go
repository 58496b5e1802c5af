package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfileDoc() map[string]interface{} {
	return map[string]interface{}{
		"gender":        "female",
		"age":           int64(30),
		"height":        float64(165),
		"weight":        float64(60),
		"activityLevel": "moderatelyActive",
		"goal":          "weightLoss",
	}
}

func TestProfileFromDocCanonicalKeys(t *testing.T) {
	profile, err := ProfileFromDoc("u1", validProfileDoc())
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, 30, profile.Age)
	assert.Equal(t, 165.0, profile.HeightCm)
	assert.Equal(t, 60.0, profile.WeightKg)
	assert.Equal(t, ActivityModeratelyActive, profile.ActivityLevel)
	assert.Equal(t, GoalWeightLoss, profile.Goal)
	assert.Nil(t, profile.DailyCalorieLimit)
}

func TestProfileFromDocLegacyKeys(t *testing.T) {
	doc := validProfileDoc()
	delete(doc, "height")
	delete(doc, "weight")
	doc["heightCm"] = float64(170)
	doc["weightKg"] = int64(72)

	profile, err := ProfileFromDoc("u1", doc)
	require.NoError(t, err)
	assert.Equal(t, 170.0, profile.HeightCm)
	assert.Equal(t, 72.0, profile.WeightKg)
}

func TestProfileFromDocCanonicalKeyWinsOverLegacy(t *testing.T) {
	doc := validProfileDoc()
	doc["heightCm"] = float64(999)

	profile, err := ProfileFromDoc("u1", doc)
	require.NoError(t, err)
	assert.Equal(t, 165.0, profile.HeightCm)
}

func TestProfileFromDocMissingFields(t *testing.T) {
	doc := validProfileDoc()
	delete(doc, "age")
	_, err := ProfileFromDoc("u1", doc)
	assert.ErrorIs(t, err, ErrProfileMissingAge)

	doc = validProfileDoc()
	delete(doc, "height")
	_, err = ProfileFromDoc("u1", doc)
	assert.ErrorIs(t, err, ErrProfileMissingHeight)

	doc = validProfileDoc()
	delete(doc, "weight")
	_, err = ProfileFromDoc("u1", doc)
	assert.ErrorIs(t, err, ErrProfileMissingWeight)
}

func TestProfileFromDocEnumFallbacks(t *testing.T) {
	doc := validProfileDoc()
	doc["activityLevel"] = "marathonRunner"
	doc["goal"] = "bulk"

	profile, err := ProfileFromDoc("u1", doc)
	require.NoError(t, err)
	assert.Equal(t, ActivitySedentary, profile.ActivityLevel)
	assert.Equal(t, GoalWeightMaintenance, profile.Goal)
}

func TestProfileFromDocDailyCalorieLimit(t *testing.T) {
	doc := validProfileDoc()
	doc["dailyCalorieLimit"] = int64(1800)
	profile, err := ProfileFromDoc("u1", doc)
	require.NoError(t, err)
	require.NotNil(t, profile.DailyCalorieLimit)
	assert.Equal(t, 1800, *profile.DailyCalorieLimit)

	// Non-positive overrides are treated as unset.
	doc["dailyCalorieLimit"] = int64(0)
	profile, err = ProfileFromDoc("u1", doc)
	require.NoError(t, err)
	assert.Nil(t, profile.DailyCalorieLimit)
}

func TestProfileToDocWritesCanonicalKeys(t *testing.T) {
	limit := 1800
	profile := UserProfile{
		ID:                "u1",
		Gender:            "male",
		Age:               40,
		HeightCm:          180,
		WeightKg:          80,
		ActivityLevel:     ActivityVeryActive,
		Goal:              GoalWeightGain,
		DailyCalorieLimit: &limit,
	}

	doc := profile.ToDoc()
	assert.Equal(t, 180.0, doc["height"])
	assert.Equal(t, 80.0, doc["weight"])
	assert.NotContains(t, doc, "heightCm")
	assert.NotContains(t, doc, "weightKg")
	assert.Equal(t, "veryActive", doc["activityLevel"])
	assert.Equal(t, "weightGain", doc["goal"])
	assert.Equal(t, 1800, doc["dailyCalorieLimit"])

	profile.DailyCalorieLimit = nil
	assert.NotContains(t, profile.ToDoc(), "dailyCalorieLimit")
}
