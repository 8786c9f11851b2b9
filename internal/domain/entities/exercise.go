package entities

import (
	"time"

	"github.com/rehabnet/rehabtracking/backend/pkg/dates"
)

// ExerciseKind identifies a prescribable exercise type
type ExerciseKind string

const (
	ExerciseKindTreePose ExerciseKind = "tree_pose"
)

// Prescription defaults applied when a doctor omits a field.
const (
	DefaultNumberOfSets       = 3
	DefaultTimePerSetSeconds  = 30
	DefaultConfidenceThreshold = 70

	// DefaultConfidenceScore is recorded when the client completes a set
	// without reporting a pose-detection score.
	DefaultConfidenceScore = 50
)

// IsValid reports whether k is in the current allowed set of exercise
// kinds. Assignments with kinds outside this set are legacy data and get
// purged on read.
func (k ExerciseKind) IsValid() bool {
	return k == ExerciseKindTreePose
}

// DisplayName returns the patient-facing name for the exercise kind. The
// name is snapshotted into progress logs so history keeps rendering after
// the assignment is edited or deleted.
func (k ExerciseKind) DisplayName() string {
	switch k {
	case ExerciseKindTreePose:
		return "Tree Pose"
	default:
		return string(k)
	}
}

// CompletedSet records one set completed today
type CompletedSet struct {
	SetNumber       int       `json:"set_number" db:"set_number"`
	ConfidenceScore int       `json:"confidence_score" db:"confidence_score"`
	CompletedAt     time.Time `json:"completed_at" db:"completed_at"`
}

// ExerciseAssignment represents one prescribed exercise for one patient.
// CompletedSets holds the current calendar day's progress only; the lazy
// reset clears it the first time the assignment is touched on a new day.
type ExerciseAssignment struct {
	ID                  string         `json:"id" db:"id"`
	RehabPatientID      string         `json:"rehab_patient_id" db:"rehab_patient_id"`
	ExerciseKind        ExerciseKind   `json:"exercise_kind" db:"exercise_kind"`
	NumberOfSets        int            `json:"number_of_sets" db:"number_of_sets"`
	TimePerSetSeconds   int            `json:"time_per_set_seconds" db:"time_per_set_seconds"`
	ConfidenceThreshold int            `json:"confidence_threshold" db:"confidence_threshold"`
	CompletedSets       []CompletedSet `json:"completed_sets" db:"completed_sets"`
	LastUpdated         time.Time      `json:"last_updated" db:"last_updated"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// ResetDue reports whether the assignment was last updated on a calendar
// day strictly before now's day, meaning its completed sets belong to a
// previous day and must be cleared before the state is observed.
func (e *ExerciseAssignment) ResetDue(now time.Time) bool {
	return dates.Before(e.LastUpdated, now)
}

// ApplyDailyReset clears the previous day's completed sets and stamps the
// assignment as touched now. Callers persist the assignment afterwards so
// a crash cannot resurrect yesterday's sets.
func (e *ExerciseAssignment) ApplyDailyReset(now time.Time) {
	e.CompletedSets = nil
	e.LastUpdated = now
}

// SetsExhausted reports whether all prescribed sets are already completed
// for the current day.
func (e *ExerciseAssignment) SetsExhausted() bool {
	return len(e.CompletedSets) >= e.NumberOfSets
}

// NextSetNumber returns the 1-based number the next completed set gets.
func (e *ExerciseAssignment) NextSetNumber() int {
	return len(e.CompletedSets) + 1
}
