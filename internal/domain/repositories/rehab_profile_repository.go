package repositories

import (
	"context"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// RehabProfileRepository defines the interface for rehab profile data operations
type RehabProfileRepository interface {
	// GetByPatient retrieves the profile for a patient
	GetByPatient(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error)

	// GetByPatientAndDoctor retrieves the profile linking the patient to
	// the doctor, or a not found error when the doctor is not assigned
	GetByPatientAndDoctor(ctx context.Context, rehabPatientID, doctorID string) (*entities.RehabProfile, error)

	// DeleteByPatient removes the patient's profile
	DeleteByPatient(ctx context.Context, rehabPatientID string) error
}
