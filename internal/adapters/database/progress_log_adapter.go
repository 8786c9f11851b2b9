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

var progressLogColumns = []interface{}{
	"id", "rehab_patient_id", "visit_date", "pain_level", "confidence_level",
	"notes", "exercise_performance", "completed_exercise_ids",
	"created_at", "updated_at",
}

// ProgressLogAdapter implements the ProgressLogRepository interface
type ProgressLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProgressLogAdapter creates a new progress log adapter
func NewProgressLogAdapter(client *postgres.Client) repositories.ProgressLogRepository {
	return &ProgressLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByPatientAndDay retrieves the log for a patient on a calendar day
func (a *ProgressLogAdapter) GetByPatientAndDay(ctx context.Context, rehabPatientID string, day time.Time) (*entities.ProgressLog, error) {
	query, args, err := a.db.Select(progressLogColumns...).
		From("progress_logs").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID, "visit_date": day}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	log, err := scanProgressLog(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no progress log for patient %s on %s", rehabPatientID, day.Format("2006-01-02")))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get progress log", err)
	}

	return log, nil
}

// Upsert writes the log as a whole document, keyed on (patient, day). The
// unique constraint on that pair is what enforces one log per calendar
// day even when two writers race to create it.
func (a *ProgressLogAdapter) Upsert(ctx context.Context, log *entities.ProgressLog) error {
	log.UpdatedAt = time.Now()

	performance, err := marshalJSONB(log.ExercisePerformance)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal exercise performance", err)
	}
	completedIDs, err := marshalJSONB(log.CompletedExerciseIDs)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal completed exercise ids", err)
	}

	record := goqu.Record{
		"id":                     log.ID,
		"rehab_patient_id":       log.RehabPatientID,
		"visit_date":             log.Day,
		"pain_level":             log.PainLevel,
		"confidence_level":       log.ConfidenceLevel,
		"notes":                  log.Notes,
		"exercise_performance":   performance,
		"completed_exercise_ids": completedIDs,
		"created_at":             log.CreatedAt,
		"updated_at":             log.UpdatedAt,
	}

	update := goqu.Record{
		"pain_level":             log.PainLevel,
		"confidence_level":       log.ConfidenceLevel,
		"notes":                  log.Notes,
		"exercise_performance":   performance,
		"completed_exercise_ids": completedIDs,
		"updated_at":             log.UpdatedAt,
	}

	query, args, err := a.db.Insert("progress_logs").
		Rows(record).
		OnConflict(goqu.DoUpdate("rehab_patient_id, visit_date", update)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert progress log", err)
	}

	return nil
}

// ListSince retrieves the patient's logs with day >= since, ascending by day
func (a *ProgressLogAdapter) ListSince(ctx context.Context, rehabPatientID string, since time.Time) ([]*entities.ProgressLog, error) {
	query, args, err := a.db.Select(progressLogColumns...).
		From("progress_logs").
		Where(
			goqu.Ex{"rehab_patient_id": rehabPatientID},
			goqu.C("visit_date").Gte(since),
		).
		Order(goqu.I("visit_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list progress logs", err)
	}
	defer rows.Close()

	var logs []*entities.ProgressLog
	for rows.Next() {
		log, err := scanProgressLog(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan progress log", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// DeleteByPatient removes all logs for a patient
func (a *ProgressLogAdapter) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	query, args, err := a.db.Delete("progress_logs").
		Where(goqu.Ex{"rehab_patient_id": rehabPatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete progress logs", err)
	}

	return nil
}

func scanProgressLog(row rowScanner) (*entities.ProgressLog, error) {
	log := &entities.ProgressLog{}
	var painLevel, confidenceLevel sql.NullInt64
	var notes sql.NullString
	var performance, completedIDs []byte

	err := row.Scan(
		&log.ID,
		&log.RehabPatientID,
		&log.Day,
		&painLevel,
		&confidenceLevel,
		&notes,
		&performance,
		&completedIDs,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if painLevel.Valid {
		v := int(painLevel.Int64)
		log.PainLevel = &v
	}
	if confidenceLevel.Valid {
		v := int(confidenceLevel.Int64)
		log.ConfidenceLevel = &v
	}
	if notes.Valid {
		log.Notes = &notes.String
	}

	if len(performance) > 0 {
		if err := json.Unmarshal(performance, &log.ExercisePerformance); err != nil {
			return nil, fmt.Errorf("failed to unmarshal exercise performance: %w", err)
		}
	}
	if len(completedIDs) > 0 {
		if err := json.Unmarshal(completedIDs, &log.CompletedExerciseIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed exercise ids: %w", err)
		}
	}

	return log, nil
}
