package services

import (
	"context"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// PatientService handles patient-level operations: ownership checks
// between doctors and their assigned patients, and account removal with
// its cascade over exercises, logs, and the rehab profile.
type PatientService struct {
	patientRepo  repositories.PatientRepository
	profileRepo  repositories.RehabProfileRepository
	exerciseRepo repositories.ExerciseRepository
	logRepo      repositories.ProgressLogRepository
}

// NewPatientService creates a new patient service
func NewPatientService(
	patientRepo repositories.PatientRepository,
	profileRepo repositories.RehabProfileRepository,
	exerciseRepo repositories.ExerciseRepository,
	logRepo repositories.ProgressLogRepository,
) *PatientService {
	return &PatientService{
		patientRepo:  patientRepo,
		profileRepo:  profileRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
	}
}

// Get retrieves a patient by rehab patient ID
func (s *PatientService) Get(ctx context.Context, rehabPatientID string) (*entities.Patient, error) {
	return s.patientRepo.GetByRehabID(ctx, rehabPatientID)
}

// GetProfile retrieves the patient's rehab profile: diagnosis, assigned
// doctor, and treatment window.
func (s *PatientService) GetProfile(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error) {
	return s.profileRepo.GetByPatient(ctx, rehabPatientID)
}

// VerifyDoctorAccess checks that the doctor is assigned to the patient
// through an active rehab profile. A missing link comes back as an
// authorization failure, not a lookup failure, so callers can map it
// straight to a forbidden response.
func (s *PatientService) VerifyDoctorAccess(ctx context.Context, doctorID, rehabPatientID string) error {
	_, err := s.profileRepo.GetByPatientAndDoctor(ctx, rehabPatientID, doctorID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return apperrors.NewUnauthorizedError("doctor is not assigned to this patient")
		}
		return err
	}
	return nil
}

// Delete removes the patient and everything hanging off the record:
// exercise assignments, progress logs, and the rehab profile. Children go
// first so a failure partway leaves no orphaned rows pointing at a
// deleted patient.
func (s *PatientService) Delete(ctx context.Context, rehabPatientID string) error {
	log := observability.LoggerFromContext(ctx)

	if _, err := s.patientRepo.GetByRehabID(ctx, rehabPatientID); err != nil {
		return err
	}

	if err := s.exerciseRepo.DeleteByPatient(ctx, rehabPatientID); err != nil {
		return apperrors.NewInternalError("failed to delete patient exercises", err)
	}
	if err := s.logRepo.DeleteByPatient(ctx, rehabPatientID); err != nil {
		return apperrors.NewInternalError("failed to delete patient progress logs", err)
	}
	if err := s.profileRepo.DeleteByPatient(ctx, rehabPatientID); err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return apperrors.NewInternalError("failed to delete rehab profile", err)
		}
	}
	if err := s.patientRepo.Delete(ctx, rehabPatientID); err != nil {
		return err
	}

	log.Info().
		Str("rehab_patient_id", rehabPatientID).
		Msg("patient deleted with cascading records")

	return nil
}
