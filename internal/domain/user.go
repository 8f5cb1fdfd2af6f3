package domain

import (
	"regexp"
	"strings"
	"time"
)

// Gender values accepted on a user profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

var (
	tenDigits    = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^.+@.+\..+$`)
)

// User is a gym member profile keyed by the natural identifier UserID.
type User struct {
	UserID           string    `json:"user_id" bson:"user_id"`
	Name             string    `json:"name" bson:"name"`
	PhoneNo          string    `json:"phone_no" bson:"phone_no"`
	Email            string    `json:"email" bson:"email"`
	Gender           string    `json:"gender" bson:"gender"`
	Age              int       `json:"age" bson:"age"`
	Injury           []string  `json:"injury" bson:"injury"`
	Disease          []string  `json:"disease" bson:"disease"`
	FitnessGoal      string    `json:"fitness_goal" bson:"fitness_goal"`
	EmergencyContact string    `json:"emergency_contact" bson:"emergency_contact"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// Validate checks profile invariants.
func (u User) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return invalid("user_id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return invalid("name is required")
	}
	if !tenDigits.MatchString(u.PhoneNo) {
		return invalid("phone_no must be a 10-digit number")
	}
	if !tenDigits.MatchString(u.EmergencyContact) {
		return invalid("emergency_contact must be a 10-digit number")
	}
	if !emailPattern.MatchString(u.Email) {
		return invalid("email is not valid")
	}
	switch u.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return invalid("gender must be one of Male, Female, Other")
	}
	if u.Age < 16 || u.Age > 100 {
		return invalid("age must be between 16 and 100")
	}
	if strings.TrimSpace(u.FitnessGoal) == "" {
		return invalid("fitness_goal is required")
	}
	return nil
}

func (u *User) normalize() {
	if u.Injury == nil {
		u.Injury = []string{}
	}
	if u.Disease == nil {
		u.Disease = []string{}
	}
}
