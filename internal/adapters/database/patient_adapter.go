package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByRehabID retrieves a patient by rehab patient ID
func (a *PatientAdapter) GetByRehabID(ctx context.Context, rehabPatientID string) (*entities.Patient, error) {
	query, args, err := a.db.Select(
		"rehab_patient_id", "hospital_patient_id", "username", "email",
		"mobile_number", "streak", "last_streak_update", "created_at", "updated_at",
	).From("patients").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient := &entities.Patient{}
	var lastStreakUpdate sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&patient.RehabPatientID,
		&patient.HospitalPatientID,
		&patient.Username,
		&patient.Email,
		&patient.MobileNumber,
		&patient.Streak,
		&lastStreakUpdate,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", rehabPatientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}

	if lastStreakUpdate.Valid {
		patient.LastStreakUpdate = &lastStreakUpdate.Time
	}

	return patient, nil
}

// UpdateStreak persists a new streak count and last-update instant
func (a *PatientAdapter) UpdateStreak(ctx context.Context, rehabPatientID string, streak int, lastUpdate time.Time) error {
	query, args, err := a.db.Update("patients").
		Set(goqu.Record{
			"streak":             streak,
			"last_streak_update": lastUpdate,
			"updated_at":         time.Now(),
		}).
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build streak update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update streak", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", rehabPatientID))
	}

	return nil
}

// Delete removes the patient record
func (a *PatientAdapter) Delete(ctx context.Context, rehabPatientID string) error {
	query, args, err := a.db.Delete("patients").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", rehabPatientID))
	}

	return nil
}
