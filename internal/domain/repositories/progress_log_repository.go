package repositories

import (
	"context"
	"time"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// ProgressLogRepository defines the interface for daily progress log data operations
type ProgressLogRepository interface {
	// GetByPatientAndDay retrieves the log for a patient on a calendar day.
	// day must be normalized to midnight.
	GetByPatientAndDay(ctx context.Context, rehabPatientID string, day time.Time) (*entities.ProgressLog, error)

	// Upsert writes the log as a whole document, creating it when no log
	// exists yet for its (patient, day) pair.
	Upsert(ctx context.Context, log *entities.ProgressLog) error

	// ListSince retrieves the patient's logs with day >= since, ascending by day
	ListSince(ctx context.Context, rehabPatientID string, since time.Time) ([]*entities.ProgressLog, error)

	// DeleteByPatient removes all logs for a patient
	DeleteByPatient(ctx context.Context, rehabPatientID string) error
}
