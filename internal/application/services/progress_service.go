package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
	"github.com/rehabnet/rehabtracking/backend/pkg/dates"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// DefaultHistoryWindowDays is the history window used when the caller
// does not ask for a specific one.
const DefaultHistoryWindowDays = 7

// CheckInInput carries the fields of a daily check-in. Nil fields are
// left untouched on the day's log; only present fields overwrite. A zero
// Day targets today; any other instant is normalized to its calendar day.
type CheckInInput struct {
	Day                  time.Time
	PainLevel            *int
	ConfidenceLevel      *int
	Notes                *string
	CompletedExerciseIDs []string
}

// ProgressService maintains the one-log-per-day progress records and the
// adherence streak derived from them.
type ProgressService struct {
	logRepo      repositories.ProgressLogRepository
	patientRepo  repositories.PatientRepository
	exerciseRepo repositories.ExerciseRepository
	metrics      *observability.Metrics
	now          func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	logRepo repositories.ProgressLogRepository,
	patientRepo repositories.PatientRepository,
	exerciseRepo repositories.ExerciseRepository,
	metrics *observability.Metrics,
) *ProgressService {
	return &ProgressService{
		logRepo:      logRepo,
		patientRepo:  patientRepo,
		exerciseRepo: exerciseRepo,
		metrics:      metrics,
		now:          time.Now,
	}
}

// dayLog loads today's log for the patient, creating a fresh in-memory one
// when no progress has been recorded yet today.
func (s *ProgressService) dayLog(ctx context.Context, rehabPatientID string, day time.Time) (*entities.ProgressLog, error) {
	log, err := s.logRepo.GetByPatientAndDay(ctx, rehabPatientID, day)
	if err == nil {
		return log, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}
	return &entities.ProgressLog{
		ID:             uuid.New().String(),
		RehabPatientID: rehabPatientID,
		Day:            day,
		CreatedAt:      s.now(),
	}, nil
}

// RecordSetCompletion folds one completed set into today's log. When the
// set finishes the assignment for the day the assignment is marked
// completed, and if that brings the patient to parity with their assigned
// exercises the streak is re-evaluated. A streak failure does not undo the
// recorded set; the next qualifying action re-runs the evaluation.
func (s *ProgressService) RecordSetCompletion(ctx context.Context, rehabPatientID, exerciseID, exerciseName string, set entities.SetPerformance, exerciseCompleted bool) (*entities.ProgressLog, error) {
	log := observability.LoggerFromContext(ctx)

	day := dates.StartOfDay(s.now())
	progressLog, err := s.dayLog(ctx, rehabPatientID, day)
	if err != nil {
		return nil, err
	}

	progressLog.AppendSet(exerciseID, exerciseName, set)
	if exerciseCompleted {
		progressLog.MarkExerciseCompleted(exerciseID)
	}
	progressLog.UpdatedAt = s.now()

	if err := s.logRepo.Upsert(ctx, progressLog); err != nil {
		return nil, err
	}

	if exerciseCompleted {
		if err := s.evaluateStreakIfAllDone(ctx, rehabPatientID, progressLog); err != nil {
			log.Warn().
				Str("rehab_patient_id", rehabPatientID).
				Err(err).
				Msg("streak evaluation failed after set completion")
		}
	}

	return progressLog, nil
}

// UpsertDailyCheckIn creates or updates the log for the check-in's day
// with the patient's subjective fields. Omitted fields keep their stored
// value. The streak rule still runs against today: back-filling an old
// day's log never moves the streak.
func (s *ProgressService) UpsertDailyCheckIn(ctx context.Context, rehabPatientID string, input CheckInInput) (*entities.ProgressLog, error) {
	if input.PainLevel != nil && (*input.PainLevel < 0 || *input.PainLevel > 10) {
		return nil, apperrors.NewValidationError("pain level must be between 0 and 10")
	}
	if input.ConfidenceLevel != nil && (*input.ConfidenceLevel < 1 || *input.ConfidenceLevel > 5) {
		return nil, apperrors.NewValidationError("confidence level must be between 1 and 5")
	}

	log := observability.LoggerFromContext(ctx)

	target := input.Day
	if target.IsZero() {
		target = s.now()
	}
	day := dates.StartOfDay(target)
	progressLog, err := s.dayLog(ctx, rehabPatientID, day)
	if err != nil {
		return nil, err
	}

	if input.PainLevel != nil {
		progressLog.PainLevel = input.PainLevel
	}
	if input.ConfidenceLevel != nil {
		progressLog.ConfidenceLevel = input.ConfidenceLevel
	}
	if input.Notes != nil {
		progressLog.Notes = input.Notes
	}
	// Completion marks only accumulate. Dropping one here would let a
	// sparse check-in payload undo a completion the streak already counted.
	completionsChanged := false
	for _, id := range input.CompletedExerciseIDs {
		before := len(progressLog.CompletedExerciseIDs)
		progressLog.MarkExerciseCompleted(id)
		if len(progressLog.CompletedExerciseIDs) != before {
			completionsChanged = true
		}
	}
	progressLog.UpdatedAt = s.now()

	if err := s.logRepo.Upsert(ctx, progressLog); err != nil {
		return nil, err
	}

	if completionsChanged {
		if err := s.evaluateStreakIfAllDone(ctx, rehabPatientID, progressLog); err != nil {
			log.Warn().
				Str("rehab_patient_id", rehabPatientID).
				Err(err).
				Msg("streak evaluation failed after check-in")
		}
	}

	return progressLog, nil
}

// History returns the patient's logs for the trailing window, ascending by
// day. windowDays <= 0 falls back to the default window.
func (s *ProgressService) History(ctx context.Context, rehabPatientID string, windowDays int) ([]*entities.ProgressLog, error) {
	if windowDays <= 0 {
		windowDays = DefaultHistoryWindowDays
	}
	since := dates.DaysAgo(dates.StartOfDay(s.now()), windowDays)
	return s.logRepo.ListSince(ctx, rehabPatientID, since)
}

// Streak returns the patient's current streak state
func (s *ProgressService) Streak(ctx context.Context, rehabPatientID string) (*entities.Patient, error) {
	return s.patientRepo.GetByRehabID(ctx, rehabPatientID)
}

// evaluateStreakIfAllDone re-evaluates the streak once the day's completed
// assignments cover everything currently assigned to the patient.
func (s *ProgressService) evaluateStreakIfAllDone(ctx context.Context, rehabPatientID string, progressLog *entities.ProgressLog) error {
	assigned, err := s.exerciseRepo.CountByPatient(ctx, rehabPatientID)
	if err != nil {
		return err
	}
	if assigned == 0 || len(progressLog.CompletedExerciseIDs) < assigned {
		return nil
	}
	_, err = s.EvaluateStreak(ctx, rehabPatientID)
	return err
}

// EvaluateStreak applies the adherence rule for today and persists the
// result. Consecutive qualifying days increment the streak, a gap resets
// it to 1, and a repeat evaluation on the same day changes nothing, so the
// streak moves at most once per calendar day.
func (s *ProgressService) EvaluateStreak(ctx context.Context, rehabPatientID string) (int, error) {
	patient, err := s.patientRepo.GetByRehabID(ctx, rehabPatientID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	if patient.LastStreakUpdate != nil && dates.SameDay(*patient.LastStreakUpdate, now) {
		return patient.Streak, nil
	}

	streak := 1
	change := "reset"
	switch {
	case patient.LastStreakUpdate == nil:
		change = "start"
	case dates.IsNextDay(*patient.LastStreakUpdate, now):
		streak = patient.Streak + 1
		change = "increment"
	}

	if err := s.patientRepo.UpdateStreak(ctx, rehabPatientID, streak, now); err != nil {
		return 0, err
	}

	observability.RecordStreakUpdate(ctx, s.metrics, change)
	observability.LoggerFromContext(ctx).Info().
		Str("rehab_patient_id", rehabPatientID).
		Int("streak", streak).
		Str("change", change).
		Msg("streak updated")

	return streak, nil
}
