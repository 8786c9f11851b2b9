package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rehabnet/rehabtracking/backend/internal/application/services"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

func newExerciseService(exerciseRepo *MockExerciseRepository, logRepo *MockProgressLogRepository, patientRepo *MockPatientRepository) *services.ExerciseService {
	progress := services.NewProgressService(logRepo, patientRepo, exerciseRepo, nil)
	return services.NewExerciseService(exerciseRepo, progress, nil)
}

func intPtr(v int) *int { return &v }

func TestExerciseService_Assign(t *testing.T) {
	t.Run("applies prescription defaults", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.ExerciseAssignment")).Return(nil)

		exercise, err := service.Assign(context.Background(), services.AssignExerciseInput{
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, exercise.NumberOfSets)
		assert.Equal(t, 30, exercise.TimePerSetSeconds)
		assert.Equal(t, 70, exercise.ConfidenceThreshold)
		assert.NotEmpty(t, exercise.ID)
		assert.Empty(t, exercise.CompletedSets)
		repo.AssertExpectations(t)
	})

	t.Run("keeps explicit prescription values", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.ExerciseAssignment")).Return(nil)

		exercise, err := service.Assign(context.Background(), services.AssignExerciseInput{
			RehabPatientID:      "patient-1",
			ExerciseKind:        entities.ExerciseKindTreePose,
			NumberOfSets:        5,
			TimePerSetSeconds:   45,
			ConfidenceThreshold: 80,
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, exercise.NumberOfSets)
		assert.Equal(t, 45, exercise.TimePerSetSeconds)
		assert.Equal(t, 80, exercise.ConfidenceThreshold)
	})

	t.Run("rejects unknown exercise kind", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		_, err := service.Assign(context.Background(), services.AssignExerciseInput{
			RehabPatientID: "patient-1",
			ExerciseKind:   "headstand",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestExerciseService_ListForPatient(t *testing.T) {
	t.Run("resets stale assignments and persists the cleared state", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		yesterday := time.Now().Add(-24 * time.Hour)
		stale := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			CompletedSets: []entities.CompletedSet{
				{SetNumber: 1, ConfidenceScore: 80, CompletedAt: yesterday},
				{SetNumber: 2, ConfidenceScore: 75, CompletedAt: yesterday},
			},
			LastUpdated: yesterday,
		}

		repo.On("ListByPatient", mock.Anything, "patient-1").Return([]*entities.ExerciseAssignment{stale}, nil)
		repo.On("Update", mock.Anything, stale).Return(nil)

		exercises, err := service.ListForPatient(context.Background(), "patient-1")

		assert.NoError(t, err)
		assert.Len(t, exercises, 1)
		assert.Empty(t, exercises[0].CompletedSets)
		assert.False(t, exercises[0].ResetDue(time.Now()))
		repo.AssertExpectations(t)
	})

	t.Run("leaves today's assignments untouched", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		fresh := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			CompletedSets:  []entities.CompletedSet{{SetNumber: 1, ConfidenceScore: 90, CompletedAt: time.Now()}},
			LastUpdated:    time.Now(),
		}

		repo.On("ListByPatient", mock.Anything, "patient-1").Return([]*entities.ExerciseAssignment{fresh}, nil)

		exercises, err := service.ListForPatient(context.Background(), "patient-1")

		assert.NoError(t, err)
		assert.Len(t, exercises, 1)
		assert.Len(t, exercises[0].CompletedSets, 1)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("purges assignments of retired kinds", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		legacy := &entities.ExerciseAssignment{
			ID:             "ex-legacy",
			RehabPatientID: "patient-1",
			ExerciseKind:   "shoulder_press",
			LastUpdated:    time.Now(),
		}
		current := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			LastUpdated:    time.Now(),
		}

		repo.On("ListByPatient", mock.Anything, "patient-1").Return([]*entities.ExerciseAssignment{legacy, current}, nil)
		repo.On("Delete", mock.Anything, "ex-legacy").Return(nil)

		exercises, err := service.ListForPatient(context.Background(), "patient-1")

		assert.NoError(t, err)
		assert.Len(t, exercises, 1)
		assert.Equal(t, "ex-1", exercises[0].ID)
		repo.AssertExpectations(t)
	})
}

func TestExerciseService_CompleteSet(t *testing.T) {
	t.Run("records ordered sets with the default score", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		logRepo := new(MockProgressLogRepository)
		service := newExerciseService(repo, logRepo, new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			CompletedSets:  []entities.CompletedSet{{SetNumber: 1, ConfidenceScore: 88, CompletedAt: time.Now()}},
			LastUpdated:    time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)
		repo.On("Update", mock.Anything, exercise).Return(nil)
		logRepo.On("GetByPatientAndDay", mock.Anything, "patient-1", mock.AnythingOfType("time.Time")).
			Return(nil, apperrors.NewNotFoundError("no log for day"))
		logRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*entities.ProgressLog")).Return(nil)

		updated, setNumber, err := service.CompleteSet(context.Background(), "ex-1", nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, setNumber)
		assert.Len(t, updated.CompletedSets, 2)
		assert.Equal(t, 2, updated.CompletedSets[1].SetNumber)
		assert.Equal(t, entities.DefaultConfidenceScore, updated.CompletedSets[1].ConfidenceScore)
		repo.AssertExpectations(t)
		logRepo.AssertExpectations(t)
	})

	t.Run("rejects a set once the prescription is exhausted", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		logRepo := new(MockProgressLogRepository)
		service := newExerciseService(repo, logRepo, new(MockPatientRepository))

		now := time.Now()
		exercise := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   2,
			CompletedSets: []entities.CompletedSet{
				{SetNumber: 1, ConfidenceScore: 90, CompletedAt: now},
				{SetNumber: 2, ConfidenceScore: 85, CompletedAt: now},
			},
			LastUpdated: now,
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)

		_, _, err := service.CompleteSet(context.Background(), "ex-1", intPtr(95))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSetsExhausted))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		logRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("resets a stale assignment before judging exhaustion", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		logRepo := new(MockProgressLogRepository)
		service := newExerciseService(repo, logRepo, new(MockPatientRepository))

		yesterday := time.Now().Add(-24 * time.Hour)
		exercise := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   2,
			CompletedSets: []entities.CompletedSet{
				{SetNumber: 1, ConfidenceScore: 90, CompletedAt: yesterday},
				{SetNumber: 2, ConfidenceScore: 85, CompletedAt: yesterday},
			},
			LastUpdated: yesterday,
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)
		repo.On("Update", mock.Anything, exercise).Return(nil)
		logRepo.On("GetByPatientAndDay", mock.Anything, "patient-1", mock.AnythingOfType("time.Time")).
			Return(nil, apperrors.NewNotFoundError("no log for day"))
		logRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*entities.ProgressLog")).Return(nil)

		updated, setNumber, err := service.CompleteSet(context.Background(), "ex-1", intPtr(77))

		assert.NoError(t, err)
		assert.Equal(t, 1, setNumber)
		assert.Len(t, updated.CompletedSets, 1)
		assert.Equal(t, 1, updated.CompletedSets[0].SetNumber)
		assert.Equal(t, 77, updated.CompletedSets[0].ConfidenceScore)
	})

	t.Run("surfaces a log write failure after the set was recorded", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		logRepo := new(MockProgressLogRepository)
		service := newExerciseService(repo, logRepo, new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			LastUpdated:    time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)
		repo.On("Update", mock.Anything, exercise).Return(nil)
		logRepo.On("GetByPatientAndDay", mock.Anything, "patient-1", mock.AnythingOfType("time.Time")).
			Return(nil, apperrors.NewNotFoundError("no log for day"))
		logRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*entities.ProgressLog")).
			Return(apperrors.NewInternalError("db down", nil))

		_, _, err := service.CompleteSet(context.Background(), "ex-1", nil)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})

	t.Run("rejects an out-of-range confidence score", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			LastUpdated:    time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)

		_, _, err := service.CompleteSet(context.Background(), "ex-1", intPtr(120))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestExerciseService_Edit(t *testing.T) {
	t.Run("updates only the provided prescription fields", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:                  "ex-1",
			RehabPatientID:      "patient-1",
			ExerciseKind:        entities.ExerciseKindTreePose,
			NumberOfSets:        3,
			TimePerSetSeconds:   30,
			ConfidenceThreshold: 70,
			LastUpdated:         time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)
		repo.On("Update", mock.Anything, exercise).Return(nil)

		updated, err := service.Edit(context.Background(), "ex-1", services.EditExerciseInput{
			NumberOfSets: intPtr(5),
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, updated.NumberOfSets)
		assert.Equal(t, 30, updated.TimePerSetSeconds)
		assert.Equal(t, 70, updated.ConfidenceThreshold)
	})

	t.Run("rejects invalid edits", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:           "ex-1",
			ExerciseKind: entities.ExerciseKindTreePose,
			NumberOfSets: 3,
			LastUpdated:  time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)

		_, err := service.Edit(context.Background(), "ex-1", services.EditExerciseInput{
			NumberOfSets: intPtr(0),
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects a zero confidence threshold", func(t *testing.T) {
		repo := new(MockExerciseRepository)
		service := newExerciseService(repo, new(MockProgressLogRepository), new(MockPatientRepository))

		exercise := &entities.ExerciseAssignment{
			ID:                  "ex-1",
			ExerciseKind:        entities.ExerciseKindTreePose,
			NumberOfSets:        3,
			ConfidenceThreshold: 70,
			LastUpdated:         time.Now(),
		}

		repo.On("GetByID", mock.Anything, "ex-1").Return(exercise, nil)

		_, err := service.Edit(context.Background(), "ex-1", services.EditExerciseInput{
			ConfidenceThreshold: intPtr(0),
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
