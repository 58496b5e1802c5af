package models

import "errors"

// ActivityLevel is the 5-valued ordinal describing how active a user is.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightlyActive"
	ActivityModeratelyActive ActivityLevel = "moderatelyActive"
	ActivityVeryActive       ActivityLevel = "veryActive"
	ActivityExtremelyActive  ActivityLevel = "extremelyActive"
)

// Valid reports whether the activity level is one of the known values.
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLightlyActive, ActivityModeratelyActive,
		ActivityVeryActive, ActivityExtremelyActive:
		return true
	}
	return false
}

// Goal is the user's weight goal.
type Goal string

const (
	GoalWeightLoss        Goal = "weightLoss"
	GoalWeightMaintenance Goal = "weightMaintenance"
	GoalWeightGain        Goal = "weightGain"
)

// Valid reports whether the goal is one of the known values.
func (g Goal) Valid() bool {
	switch g {
	case GoalWeightLoss, GoalWeightMaintenance, GoalWeightGain:
		return true
	}
	return false
}

// Decode errors for profile documents.
var (
	ErrProfileMissingAge    = errors.New("profile document is missing required field 'age'")
	ErrProfileMissingHeight = errors.New("profile document is missing field 'height' (or legacy 'heightCm')")
	ErrProfileMissingWeight = errors.New("profile document is missing field 'weight' (or legacy 'weightKg')")
)

// UserProfile holds the physiological inputs for the calorie target calculation.
// It is owned by the profile/session layer; the meal core only reads it.
type UserProfile struct {
	ID                string        `json:"id" firestore:"-"` // Firebase Auth UID, doubles as document ID
	Gender            string        `json:"gender" firestore:"gender"` // "male" / "female", case-insensitive
	Age               int           `json:"age" firestore:"age"`
	HeightCm          float64       `json:"height" firestore:"height"`
	WeightKg          float64       `json:"weight" firestore:"weight"`
	ActivityLevel     ActivityLevel `json:"activityLevel" firestore:"activityLevel"`
	Goal              Goal          `json:"goal" firestore:"goal"`
	DailyCalorieLimit *int          `json:"dailyCalorieLimit,omitempty" firestore:"dailyCalorieLimit,omitempty"` // manual override
}

// ProfileFromDoc decodes a raw Firestore document into a UserProfile.
//
// Older documents stored height and weight under "heightCm" / "weightKg"; the
// canonical keys are tried first, then the legacy ones. Unknown activity levels
// fall back to sedentary and unknown goals to weightMaintenance, matching how
// legacy clients decoded these enums.
func ProfileFromDoc(id string, data map[string]interface{}) (UserProfile, error) {
	age := coerceInt(data["age"])
	if age <= 0 {
		return UserProfile{}, ErrProfileMissingAge
	}

	height, ok := coerceFloat(data, "height", "heightCm")
	if !ok || height <= 0 {
		return UserProfile{}, ErrProfileMissingHeight
	}
	weight, ok := coerceFloat(data, "weight", "weightKg")
	if !ok || weight <= 0 {
		return UserProfile{}, ErrProfileMissingWeight
	}

	gender, _ := data["gender"].(string)

	activityRaw, _ := data["activityLevel"].(string)
	activity := ActivityLevel(activityRaw)
	if !activity.Valid() {
		activity = ActivitySedentary
	}

	goalRaw, _ := data["goal"].(string)
	goal := Goal(goalRaw)
	if !goal.Valid() {
		goal = GoalWeightMaintenance
	}

	profile := UserProfile{
		ID:            id,
		Gender:        gender,
		Age:           age,
		HeightCm:      height,
		WeightKg:      weight,
		ActivityLevel: activity,
		Goal:          goal,
	}

	if limit := coerceInt(data["dailyCalorieLimit"]); limit > 0 {
		profile.DailyCalorieLimit = &limit
	}

	return profile, nil
}

// ToDoc converts the profile to its Firestore document representation, always
// writing the canonical keys so legacy variants age out on the next save.
func (p UserProfile) ToDoc() map[string]interface{} {
	doc := map[string]interface{}{
		"gender":        p.Gender,
		"age":           p.Age,
		"height":        p.HeightCm,
		"weight":        p.WeightKg,
		"activityLevel": string(p.ActivityLevel),
		"goal":          string(p.Goal),
	}
	if p.DailyCalorieLimit != nil {
		doc["dailyCalorieLimit"] = *p.DailyCalorieLimit
	}
	return doc
}

// coerceFloat reads the first of the given keys that holds a usable numeric
// value. The ordered key list is how legacy field names are supported.
func coerceFloat(data map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := data[key].(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}
