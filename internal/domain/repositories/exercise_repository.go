package repositories

import (
	"context"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// ExerciseRepository defines the interface for exercise assignment data operations
type ExerciseRepository interface {
	// Create creates a new exercise assignment
	Create(ctx context.Context, exercise *entities.ExerciseAssignment) error

	// GetByID retrieves an assignment by ID
	GetByID(ctx context.Context, id string) (*entities.ExerciseAssignment, error)

	// ListByPatient retrieves all assignments for a patient
	ListByPatient(ctx context.Context, rehabPatientID string) ([]*entities.ExerciseAssignment, error)

	// CountByPatient returns the number of assignments for a patient
	CountByPatient(ctx context.Context, rehabPatientID string) (int, error)

	// Update replaces the stored assignment document (last write wins)
	Update(ctx context.Context, exercise *entities.ExerciseAssignment) error

	// Delete removes an assignment
	Delete(ctx context.Context, id string) error

	// DeleteByPatient removes all assignments for a patient
	DeleteByPatient(ctx context.Context, rehabPatientID string) error
}
