package entities

import (
	"time"
)

// SetPerformance is one completed set inside a day's performance entry
type SetPerformance struct {
	SetNumber       int `json:"set_number" db:"set_number"`
	ConfidenceScore int `json:"confidence_score" db:"confidence_score"`
}

// ExercisePerformance groups the sets a patient completed for one
// assignment on one day. ExerciseName is a snapshot taken when the first
// set lands so history survives later edits or deletion of the assignment.
type ExercisePerformance struct {
	ExerciseID   string           `json:"exercise_id" db:"exercise_id"`
	ExerciseName string           `json:"exercise_name" db:"exercise_name"`
	Sets         []SetPerformance `json:"sets" db:"sets"`
}

// ProgressLog is the single record of a patient's activity for one
// calendar day. Day is always normalized to midnight; there is at most one
// log per (patient, day).
type ProgressLog struct {
	ID                   string                `json:"id" db:"id"`
	RehabPatientID       string                `json:"rehab_patient_id" db:"rehab_patient_id"`
	Day                  time.Time             `json:"day" db:"visit_date"`
	PainLevel            *int                  `json:"pain_level,omitempty" db:"pain_level"`
	ConfidenceLevel      *int                  `json:"confidence_level,omitempty" db:"confidence_level"`
	Notes                *string               `json:"notes,omitempty" db:"notes"`
	ExercisePerformance  []ExercisePerformance `json:"exercise_performance" db:"exercise_performance"`
	CompletedExerciseIDs []string              `json:"completed_exercise_ids" db:"completed_exercise_ids"`
	CreatedAt            time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at" db:"updated_at"`
}

// PerformanceFor returns the performance entry for the given assignment,
// or nil when no set has been recorded for it today.
func (l *ProgressLog) PerformanceFor(exerciseID string) *ExercisePerformance {
	for i := range l.ExercisePerformance {
		if l.ExercisePerformance[i].ExerciseID == exerciseID {
			return &l.ExercisePerformance[i]
		}
	}
	return nil
}

// AppendSet records one completed set for the given assignment, seeding a
// new performance entry on the first set of the day.
func (l *ProgressLog) AppendSet(exerciseID, exerciseName string, set SetPerformance) {
	if perf := l.PerformanceFor(exerciseID); perf != nil {
		perf.Sets = append(perf.Sets, set)
		return
	}
	l.ExercisePerformance = append(l.ExercisePerformance, ExercisePerformance{
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
		Sets:         []SetPerformance{set},
	})
}

// MarkExerciseCompleted adds the assignment to the day's completed set,
// ignoring duplicates.
func (l *ProgressLog) MarkExerciseCompleted(exerciseID string) {
	for _, id := range l.CompletedExerciseIDs {
		if id == exerciseID {
			return
		}
	}
	l.CompletedExerciseIDs = append(l.CompletedExerciseIDs, exerciseID)
}
