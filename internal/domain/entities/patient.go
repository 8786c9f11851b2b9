package entities

import (
	"time"
)

// Patient is the subset of the patient record this service owns: identity
// references plus the adherence streak state. Account credentials and
// verification live with the external auth system.
type Patient struct {
	RehabPatientID    string     `json:"rehab_patient_id" db:"rehab_patient_id"`
	HospitalPatientID string     `json:"hospital_patient_id" db:"hospital_patient_id"`
	Username          string     `json:"username" db:"username"`
	Email             string     `json:"email" db:"email"`
	MobileNumber      string     `json:"mobile_number" db:"mobile_number"`
	Streak            int        `json:"streak" db:"streak"`
	LastStreakUpdate  *time.Time `json:"last_streak_update,omitempty" db:"last_streak_update"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
