package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

var rehabProfileColumns = []interface{}{
	"id", "rehab_patient_id", "assigned_doctor_id", "primary_diagnosis",
	"rehab_start_date", "rehab_end_date", "status", "created_at", "updated_at",
}

// RehabProfileAdapter implements the RehabProfileRepository interface
type RehabProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRehabProfileAdapter creates a new rehab profile adapter
func NewRehabProfileAdapter(client *postgres.Client) repositories.RehabProfileRepository {
	return &RehabProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByPatient retrieves the profile for a patient
func (a *RehabProfileAdapter) GetByPatient(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error) {
	return a.getOne(ctx, goqu.Ex{"rehab_patient_id": rehabPatientID},
		fmt.Sprintf("rehab profile for patient %s not found", rehabPatientID))
}

// GetByPatientAndDoctor retrieves the profile linking the patient to the doctor
func (a *RehabProfileAdapter) GetByPatientAndDoctor(ctx context.Context, rehabPatientID, doctorID string) (*entities.RehabProfile, error) {
	return a.getOne(ctx,
		goqu.Ex{"rehab_patient_id": rehabPatientID, "assigned_doctor_id": doctorID},
		fmt.Sprintf("patient %s is not assigned to doctor %s", rehabPatientID, doctorID))
}

// DeleteByPatient removes the patient's profile
func (a *RehabProfileAdapter) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	query, args, err := a.db.Delete("rehab_profiles").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete rehab profile", err)
	}

	return nil
}

func (a *RehabProfileAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.RehabProfile, error) {
	query, args, err := a.db.Select(rehabProfileColumns...).
		From("rehab_profiles").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.RehabProfile{}
	var diagnosis sql.NullString
	var startDate, endDate sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.RehabPatientID,
		&profile.AssignedDoctorID,
		&diagnosis,
		&startDate,
		&endDate,
		&profile.Status,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rehab profile", err)
	}

	profile.PrimaryDiagnosis = diagnosis.String
	if startDate.Valid {
		profile.RehabStartDate = &startDate.Time
	}
	if endDate.Valid {
		profile.RehabEndDate = &endDate.Time
	}

	return profile, nil
}
