package entities

import (
	"time"
)

// RehabStatus represents the state of a rehabilitation program
type RehabStatus string

const (
	RehabStatusActive     RehabStatus = "active"
	RehabStatusCompleted  RehabStatus = "completed"
	RehabStatusPaused     RehabStatus = "paused"
	RehabStatusDischarged RehabStatus = "discharged"
)

// RehabProfile links a patient to the doctor running their program.
// Ownership checks (may this doctor touch this patient's data) resolve
// through this record.
type RehabProfile struct {
	ID               string      `json:"id" db:"id"`
	RehabPatientID   string      `json:"rehab_patient_id" db:"rehab_patient_id"`
	AssignedDoctorID string      `json:"assigned_doctor_id" db:"assigned_doctor_id"`
	PrimaryDiagnosis string      `json:"primary_diagnosis" db:"primary_diagnosis"`
	RehabStartDate   *time.Time  `json:"rehab_start_date,omitempty" db:"rehab_start_date"`
	RehabEndDate     *time.Time  `json:"rehab_end_date,omitempty" db:"rehab_end_date"`
	Status           RehabStatus `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}
