package repositories

import (
	"context"
	"time"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// PatientRepository defines the interface for patient streak-state operations
type PatientRepository interface {
	// GetByRehabID retrieves a patient by rehab patient ID
	GetByRehabID(ctx context.Context, rehabPatientID string) (*entities.Patient, error)

	// UpdateStreak persists a new streak count and last-update instant
	UpdateStreak(ctx context.Context, rehabPatientID string, streak int, lastUpdate time.Time) error

	// Delete removes the patient record
	Delete(ctx context.Context, rehabPatientID string) error
}
