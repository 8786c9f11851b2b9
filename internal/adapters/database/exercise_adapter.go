package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

var exerciseColumns = []interface{}{
	"id", "rehab_patient_id", "exercise_kind", "number_of_sets",
	"time_per_set_seconds", "confidence_threshold", "completed_sets",
	"last_updated", "created_at", "updated_at",
}

// ExerciseAdapter implements the ExerciseRepository interface
type ExerciseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewExerciseAdapter creates a new exercise adapter
func NewExerciseAdapter(client *postgres.Client) repositories.ExerciseRepository {
	return &ExerciseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new exercise assignment
func (a *ExerciseAdapter) Create(ctx context.Context, exercise *entities.ExerciseAssignment) error {
	record, err := exerciseRecord(exercise)
	if err != nil {
		return err
	}

	query, args, err := a.db.Insert("exercises").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create exercise assignment", err)
	}

	return nil
}

// GetByID retrieves an assignment by ID
func (a *ExerciseAdapter) GetByID(ctx context.Context, id string) (*entities.ExerciseAssignment, error) {
	query, args, err := a.db.Select(exerciseColumns...).
		From("exercises").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	exercise, err := scanExercise(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("exercise assignment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get exercise assignment", err)
	}

	return exercise, nil
}

// ListByPatient retrieves all assignments for a patient
func (a *ExerciseAdapter) ListByPatient(ctx context.Context, rehabPatientID string) ([]*entities.ExerciseAssignment, error) {
	query, args, err := a.db.Select(exerciseColumns...).
		From("exercises").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list exercise assignments", err)
	}
	defer rows.Close()

	var exercises []*entities.ExerciseAssignment
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan exercise assignment", err)
		}
		exercises = append(exercises, exercise)
	}

	return exercises, rows.Err()
}

// CountByPatient returns the number of assignments for a patient
func (a *ExerciseAdapter) CountByPatient(ctx context.Context, rehabPatientID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("exercises").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count exercise assignments", err)
	}

	return count, nil
}

// Update replaces the stored assignment document (last write wins)
func (a *ExerciseAdapter) Update(ctx context.Context, exercise *entities.ExerciseAssignment) error {
	exercise.UpdatedAt = time.Now()

	record, err := exerciseRecord(exercise)
	if err != nil {
		return err
	}
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update("exercises").
		Set(record).
		Where(goqu.Ex{"id": exercise.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update exercise assignment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("exercise assignment with id %s not found", exercise.ID))
	}

	return nil
}

// Delete removes an assignment
func (a *ExerciseAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("exercises").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete exercise assignment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("exercise assignment with id %s not found", id))
	}

	return nil
}

// DeleteByPatient removes all assignments for a patient
func (a *ExerciseAdapter) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	query, args, err := a.db.Delete("exercises").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete exercise assignments", err)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func exerciseRecord(exercise *entities.ExerciseAssignment) (goqu.Record, error) {
	completedSets, err := marshalJSONB(exercise.CompletedSets)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal completed sets", err)
	}

	return goqu.Record{
		"id":                   exercise.ID,
		"rehab_patient_id":     exercise.RehabPatientID,
		"exercise_kind":        exercise.ExerciseKind,
		"number_of_sets":       exercise.NumberOfSets,
		"time_per_set_seconds": exercise.TimePerSetSeconds,
		"confidence_threshold": exercise.ConfidenceThreshold,
		"completed_sets":       completedSets,
		"last_updated":         exercise.LastUpdated,
		"created_at":           exercise.CreatedAt,
		"updated_at":           exercise.UpdatedAt,
	}, nil
}

func scanExercise(row rowScanner) (*entities.ExerciseAssignment, error) {
	exercise := &entities.ExerciseAssignment{}
	var completedSets []byte

	err := row.Scan(
		&exercise.ID,
		&exercise.RehabPatientID,
		&exercise.ExerciseKind,
		&exercise.NumberOfSets,
		&exercise.TimePerSetSeconds,
		&exercise.ConfidenceThreshold,
		&completedSets,
		&exercise.LastUpdated,
		&exercise.CreatedAt,
		&exercise.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(completedSets) > 0 {
		if err := json.Unmarshal(completedSets, &exercise.CompletedSets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed sets: %w", err)
		}
	}

	return exercise, nil
}

// marshalJSONB serializes a document-valued field, writing an empty JSON
// array instead of null so appends on read never hit a null column.
func marshalJSONB(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}
