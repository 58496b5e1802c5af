package core

import (
	"math"
	"strings"

	"calorietracker-backend-go/internal/models"
)

// minimumDailyCalories is the floor safeguard: the computed target never
// recommends eating less than this.
const minimumDailyCalories = 1200

// activityFactors multiply the basal metabolic rate into total daily energy
// expenditure.
var activityFactors = map[models.ActivityLevel]float64{
	models.ActivitySedentary:        1.2,
	models.ActivityLightlyActive:    1.375,
	models.ActivityModeratelyActive: 1.55,
	models.ActivityVeryActive:       1.725,
	models.ActivityExtremelyActive:  1.9,
}

// goalAdjustments are fixed kcal offsets applied after the activity factor.
var goalAdjustments = map[models.Goal]float64{
	models.GoalWeightLoss:        -500,
	models.GoalWeightMaintenance: 0,
	models.GoalWeightGain:        300,
}

// TargetCalories computes the personalized daily calorie target for a profile
// using the Mifflin–St Jeor basal metabolic rate formula. It is a total
// function with no failure modes.
//
// A positive manual DailyCalorieLimit always takes precedence over the
// computed value.
func TargetCalories(profile models.UserProfile) int {
	if profile.DailyCalorieLimit != nil && *profile.DailyCalorieLimit > 0 {
		return *profile.DailyCalorieLimit
	}

	s := -161.0
	if strings.HasPrefix(strings.ToLower(profile.Gender), "m") {
		s = 5
	}
	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age) + s

	factor, ok := activityFactors[profile.ActivityLevel]
	if !ok {
		factor = activityFactors[models.ActivitySedentary]
	}

	tdee := bmr*factor + goalAdjustments[profile.Goal]

	computed := int(math.Round(tdee))
	if computed < minimumDailyCalories {
		computed = minimumDailyCalories
	}
	return computed
}
