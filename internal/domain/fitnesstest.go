package domain

import (
	"math"
	"strings"
	"time"
)

const (
	metersPerInch = 0.0254
	maxInches     = 11.99
)

// Strength measurements.
type Strength struct {
	PushupReps  int `json:"pushup_reps" bson:"pushup_reps"`
	SquatsReps  int `json:"squats_reps" bson:"squats_reps"`
	PullUpsReps int `json:"pull_ups_reps" bson:"pull_ups_reps"`
}

// Flexibility measurements in centimetres.
type Flexibility struct {
	SitAndTouchCm      float64 `json:"sit_and_touch_cm" bson:"sit_and_touch_cm"`
	ShoulderStretchCm  float64 `json:"shoulder_stretch_cm" bson:"shoulder_stretch_cm"`
	HamstringStretchCm float64 `json:"hamstring_stretch_cm" bson:"hamstring_stretch_cm"`
}

// CardioEndurance records heart rate after ten minute efforts.
type CardioEndurance struct {
	TenMinRunBpm   int `json:"ten_min_run_bpm" bson:"ten_min_run_bpm"`
	TenMinCycleBpm int `json:"ten_min_cycle_bpm" bson:"ten_min_cycle_bpm"`
}

// TestExercises groups the measured exercise blocks.
type TestExercises struct {
	Strength        Strength        `json:"strength" bson:"strength"`
	Flexibility     Flexibility     `json:"flexibility" bson:"flexibility"`
	CardioEndurance CardioEndurance `json:"cardio_endurance" bson:"cardio_endurance"`
}

// Height in imperial units.
type Height struct {
	Feet   float64 `json:"feet" bson:"feet"`
	Inches float64 `json:"inches" bson:"inches"`
}

// Meters converts the height to metres.
func (h Height) Meters() float64 {
	return (h.Feet*12 + h.Inches) * metersPerInch
}

// PhysicalData holds body measurements. BMI is computed when the test is recorded.
type PhysicalData struct {
	WeightKg      float64  `json:"weight_kg" bson:"weight_kg"`
	Height        Height   `json:"height" bson:"height"`
	BpmBeforeTest int      `json:"bpm_before_test" bson:"bpm_before_test"`
	BpmAfterTest  int      `json:"bpm_after_test" bson:"bpm_after_test"`
	BMI           *float64 `json:"bmi" bson:"bmi"`
}

// FitnessTest is a dated assessment of a user.
type FitnessTest struct {
	ID           string        `json:"id" bson:"test_id"`
	UserID       string        `json:"user_id" bson:"user_id"`
	Date         time.Time     `json:"date" bson:"date"`
	Goal         string        `json:"goal" bson:"goal"`
	Exercises    TestExercises `json:"exercises" bson:"exercises"`
	PhysicalData PhysicalData  `json:"physical_data" bson:"physical_data"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Validate checks assessment invariants.
func (f FitnessTest) Validate() error {
	if strings.TrimSpace(f.UserID) == "" {
		return invalid("user_id is required")
	}
	if f.Date.IsZero() {
		return invalid("date is required")
	}
	if strings.TrimSpace(f.Goal) == "" {
		return invalid("goal is required")
	}
	s, c, p := f.Exercises.Strength, f.Exercises.CardioEndurance, f.PhysicalData
	if s.PushupReps < 0 || s.SquatsReps < 0 || s.PullUpsReps < 0 {
		return invalid("strength counts must be >= 0")
	}
	if c.TenMinRunBpm < 0 || c.TenMinCycleBpm < 0 {
		return invalid("cardio bpm must be >= 0")
	}
	if p.WeightKg < 0 || p.Height.Feet < 0 || p.Height.Inches < 0 {
		return invalid("weight and height must be >= 0")
	}
	if p.Height.Inches > maxInches {
		return invalid("height.inches must be <= 11.99")
	}
	if p.BpmBeforeTest < 0 || p.BpmAfterTest < 0 {
		return invalid("bpm must be >= 0")
	}
	return nil
}

// ComputeBMI returns weight / height² rounded to two decimals, or nil when either is zero.
func ComputeBMI(weightKg float64, height Height) *float64 {
	meters := height.Meters()
	if weightKg == 0 || meters == 0 {
		return nil
	}
	bmi := math.Round(weightKg/(meters*meters)*100) / 100
	return &bmi
}
