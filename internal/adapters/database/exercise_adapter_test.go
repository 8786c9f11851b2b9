package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rehabnet/rehabtracking/backend/internal/adapters/database"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

func setupExerciseAdapter(t *testing.T) (repositories.ExerciseRepository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	adapter := database.NewExerciseAdapter(postgres.NewClientFromDB(mockDB))
	return adapter, mock
}

var exerciseRows = []string{
	"id", "rehab_patient_id", "exercise_kind", "number_of_sets",
	"time_per_set_seconds", "confidence_threshold", "completed_sets",
	"last_updated", "created_at", "updated_at",
}

func TestExerciseAdapter_GetByID(t *testing.T) {
	t.Run("scans the assignment with its completed sets", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM "exercises" WHERE`).
			WillReturnRows(sqlmock.NewRows(exerciseRows).AddRow(
				"ex-1", "patient-1", "tree_pose", 3, 30, 70,
				[]byte(`[{"set_number":1,"confidence_score":85,"completed_at":"2026-08-31T09:00:00Z"}]`),
				now, now, now,
			))

		exercise, err := adapter.GetByID(context.Background(), "ex-1")

		assert.NoError(t, err)
		assert.Equal(t, "ex-1", exercise.ID)
		assert.Equal(t, entities.ExerciseKindTreePose, exercise.ExerciseKind)
		assert.Len(t, exercise.CompletedSets, 1)
		assert.Equal(t, 85, exercise.CompletedSets[0].ConfidenceScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing row to not found", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		mock.ExpectQuery(`SELECT .* FROM "exercises" WHERE`).
			WillReturnRows(sqlmock.NewRows(exerciseRows))

		_, err := adapter.GetByID(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestExerciseAdapter_ListByPatient(t *testing.T) {
	t.Run("returns assignments ordered by creation", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM "exercises" WHERE .*"rehab_patient_id"`).
			WillReturnRows(sqlmock.NewRows(exerciseRows).
				AddRow("ex-1", "patient-1", "tree_pose", 3, 30, 70, []byte(`[]`), now, now, now).
				AddRow("ex-2", "patient-1", "tree_pose", 5, 45, 80, []byte(`[]`), now, now, now))

		exercises, err := adapter.ListByPatient(context.Background(), "patient-1")

		assert.NoError(t, err)
		assert.Len(t, exercises, 2)
		assert.Empty(t, exercises[0].CompletedSets)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExerciseAdapter_Update(t *testing.T) {
	t.Run("writes the whole document", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		mock.ExpectExec(`UPDATE "exercises" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Update(context.Background(), &entities.ExerciseAssignment{
			ID:             "ex-1",
			RehabPatientID: "patient-1",
			ExerciseKind:   entities.ExerciseKindTreePose,
			NumberOfSets:   3,
			LastUpdated:    time.Now(),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to not found", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		mock.ExpectExec(`UPDATE "exercises" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Update(context.Background(), &entities.ExerciseAssignment{
			ID:           "missing",
			ExerciseKind: entities.ExerciseKindTreePose,
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestExerciseAdapter_Delete(t *testing.T) {
	t.Run("maps zero affected rows to not found", func(t *testing.T) {
		adapter, mock := setupExerciseAdapter(t)

		mock.ExpectExec(`DELETE FROM "exercises" WHERE`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Delete(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestExerciseAdapter_CountByPatient(t *testing.T) {
	adapter, mock := setupExerciseAdapter(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := adapter.CountByPatient(context.Background(), "patient-1")

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
