package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// AssignExerciseInput carries a doctor's prescription. Zero-valued numeric
// fields fall back to the documented defaults.
type AssignExerciseInput struct {
	RehabPatientID      string
	ExerciseKind        entities.ExerciseKind
	NumberOfSets        int
	TimePerSetSeconds   int
	ConfidenceThreshold int
}

// EditExerciseInput carries a partial prescription update. Nil fields are
// left untouched; anything outside this whitelist cannot be edited.
type EditExerciseInput struct {
	ExerciseKind        *entities.ExerciseKind
	NumberOfSets        *int
	TimePerSetSeconds   *int
	ConfidenceThreshold *int
}

// ExerciseService owns the per-assignment daily state: prescription CRUD,
// the lazy daily reset, and set completion. Completing a set also feeds
// today's progress log through the progress service.
type ExerciseService struct {
	repo            repositories.ExerciseRepository
	progressService *ProgressService
	metrics         *observability.Metrics
	now             func() time.Time
}

// NewExerciseService creates a new exercise service
func NewExerciseService(
	repo repositories.ExerciseRepository,
	progressService *ProgressService,
	metrics *observability.Metrics,
) *ExerciseService {
	return &ExerciseService{
		repo:            repo,
		progressService: progressService,
		metrics:         metrics,
		now:             time.Now,
	}
}

// Assign prescribes an exercise to a patient, filling in defaults for any
// prescription field the doctor omitted.
func (s *ExerciseService) Assign(ctx context.Context, input AssignExerciseInput) (*entities.ExerciseAssignment, error) {
	if input.RehabPatientID == "" {
		return nil, apperrors.NewValidationError("rehab patient id is required")
	}
	if !input.ExerciseKind.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown exercise kind: %s", input.ExerciseKind))
	}
	if input.NumberOfSets < 0 || input.TimePerSetSeconds < 0 {
		return nil, apperrors.NewValidationError("sets and time per set must be positive")
	}
	if input.ConfidenceThreshold < 0 || input.ConfidenceThreshold > 100 {
		return nil, apperrors.NewValidationError("confidence threshold must be between 0 and 100")
	}

	if input.NumberOfSets == 0 {
		input.NumberOfSets = entities.DefaultNumberOfSets
	}
	if input.TimePerSetSeconds == 0 {
		input.TimePerSetSeconds = entities.DefaultTimePerSetSeconds
	}
	if input.ConfidenceThreshold == 0 {
		input.ConfidenceThreshold = entities.DefaultConfidenceThreshold
	}

	now := s.now()
	exercise := &entities.ExerciseAssignment{
		ID:                  uuid.New().String(),
		RehabPatientID:      input.RehabPatientID,
		ExerciseKind:        input.ExerciseKind,
		NumberOfSets:        input.NumberOfSets,
		TimePerSetSeconds:   input.TimePerSetSeconds,
		ConfidenceThreshold: input.ConfidenceThreshold,
		LastUpdated:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, exercise); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("exercise_id", exercise.ID).
		Str("rehab_patient_id", exercise.RehabPatientID).
		Str("kind", string(exercise.ExerciseKind)).
		Msg("exercise assigned")

	return exercise, nil
}

// Get retrieves a single assignment
func (s *ExerciseService) Get(ctx context.Context, id string) (*entities.ExerciseAssignment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForPatient returns the patient's assignments with today's state.
// Reading is not a pure read here: assignments last touched on a previous
// day get their completed sets cleared and the cleared state persisted,
// and assignments of retired kinds are purged from storage.
func (s *ExerciseService) ListForPatient(ctx context.Context, rehabPatientID string) ([]*entities.ExerciseAssignment, error) {
	log := observability.LoggerFromContext(ctx)

	exercises, err := s.repo.ListByPatient(ctx, rehabPatientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]*entities.ExerciseAssignment, 0, len(exercises))
	for _, exercise := range exercises {
		if !exercise.ExerciseKind.IsValid() {
			if err := s.repo.Delete(ctx, exercise.ID); err != nil {
				return nil, err
			}
			log.Info().
				Str("exercise_id", exercise.ID).
				Str("kind", string(exercise.ExerciseKind)).
				Msg("purged legacy exercise assignment")
			continue
		}

		if exercise.ResetDue(now) {
			exercise.ApplyDailyReset(now)
			exercise.UpdatedAt = now
			if err := s.repo.Update(ctx, exercise); err != nil {
				return nil, err
			}
		}

		result = append(result, exercise)
	}

	return result, nil
}

// Edit applies a partial prescription update. Only prescription fields can
// change; daily progress state is untouched.
func (s *ExerciseService) Edit(ctx context.Context, id string, input EditExerciseInput) (*entities.ExerciseAssignment, error) {
	exercise, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ExerciseKind != nil {
		if !input.ExerciseKind.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown exercise kind: %s", *input.ExerciseKind))
		}
		exercise.ExerciseKind = *input.ExerciseKind
	}
	if input.NumberOfSets != nil {
		if *input.NumberOfSets < 1 {
			return nil, apperrors.NewValidationError("number of sets must be at least 1")
		}
		exercise.NumberOfSets = *input.NumberOfSets
	}
	if input.TimePerSetSeconds != nil {
		if *input.TimePerSetSeconds < 1 {
			return nil, apperrors.NewValidationError("time per set must be at least 1 second")
		}
		exercise.TimePerSetSeconds = *input.TimePerSetSeconds
	}
	if input.ConfidenceThreshold != nil {
		if *input.ConfidenceThreshold < 1 || *input.ConfidenceThreshold > 100 {
			return nil, apperrors.NewValidationError("confidence threshold must be between 1 and 100")
		}
		exercise.ConfidenceThreshold = *input.ConfidenceThreshold
	}

	exercise.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	return exercise, nil
}

// CompleteSet records one completed set on the assignment and folds it
// into today's progress log, returning the updated assignment and the
// number of the set just completed. The daily reset runs first so a stale
// assignment never rejects the day's first set as exhausted. The log write
// is part of the operation: if it fails after the assignment update, the
// error surfaces to the caller rather than leaving the two stores quietly
// disagreeing.
func (s *ExerciseService) CompleteSet(ctx context.Context, id string, confidenceScore *int) (*entities.ExerciseAssignment, int, error) {
	exercise, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !exercise.ExerciseKind.IsValid() {
		if err := s.repo.Delete(ctx, exercise.ID); err != nil {
			return nil, 0, err
		}
		return nil, 0, apperrors.NewNotFoundError("exercise assignment not found")
	}

	now := s.now()
	if exercise.ResetDue(now) {
		exercise.ApplyDailyReset(now)
	}

	if exercise.SetsExhausted() {
		return nil, 0, apperrors.NewSetsExhaustedError(fmt.Sprintf("all %d sets already completed today", exercise.NumberOfSets))
	}

	score := entities.DefaultConfidenceScore
	if confidenceScore != nil {
		if *confidenceScore < 0 || *confidenceScore > 100 {
			return nil, 0, apperrors.NewValidationError("confidence score must be between 0 and 100")
		}
		score = *confidenceScore
	}

	set := entities.CompletedSet{
		SetNumber:       exercise.NextSetNumber(),
		ConfidenceScore: score,
		CompletedAt:     now,
	}
	exercise.CompletedSets = append(exercise.CompletedSets, set)
	exercise.LastUpdated = now
	exercise.UpdatedAt = now

	if err := s.repo.Update(ctx, exercise); err != nil {
		return nil, 0, err
	}

	observability.RecordSetCompletion(ctx, s.metrics, string(exercise.ExerciseKind))

	_, err = s.progressService.RecordSetCompletion(
		ctx,
		exercise.RehabPatientID,
		exercise.ID,
		exercise.ExerciseKind.DisplayName(),
		entities.SetPerformance{SetNumber: set.SetNumber, ConfidenceScore: set.ConfidenceScore},
		exercise.SetsExhausted(),
	)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("set recorded but progress log update failed", err)
	}

	return exercise, set.SetNumber, nil
}

// Delete removes an assignment
func (s *ExerciseService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
