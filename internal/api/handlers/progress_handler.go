package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rehabnet/rehabtracking/backend/internal/application/services"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// ProgressService defines the progress log operations used by the handler.
type ProgressService interface {
	UpsertDailyCheckIn(ctx context.Context, rehabPatientID string, input services.CheckInInput) (*entities.ProgressLog, error)
	History(ctx context.Context, rehabPatientID string, windowDays int) ([]*entities.ProgressLog, error)
}

// ProgressHandler handles daily check-in and history routes.
type ProgressHandler struct {
	service ProgressService
	access  PatientAccessService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service ProgressService, access PatientAccessService) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		access:  access,
	}
}

type checkInRequest struct {
	Date                 string   `json:"date"`
	PainLevel            *int     `json:"pain_level"`
	ConfidenceLevel      *int     `json:"confidence_level"`
	Notes                *string  `json:"notes"`
	CompletedExerciseIDs []string `json:"completed_exercise_ids"`
}

// parseCheckInDate accepts a plain calendar date or a full timestamp. An
// empty string means today and returns the zero time.
func parseCheckInDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if day, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return day, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// CheckIn handles POST /api/progress. The check-in is a partial update of
// one day's log (today unless the body carries a date); omitted fields
// keep whatever an earlier check-in stored.
func (h *ProgressHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !identity.IsPatient() {
		respondWithError(w, http.StatusForbidden, "only patients can log a check-in")
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	day, err := parseCheckInDate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD or RFC 3339")
		return
	}

	log, err := h.service.UpsertDailyCheckIn(r.Context(), identity.RehabPatientID, services.CheckInInput{
		Day:                  day,
		PainLevel:            req.PainLevel,
		ConfidenceLevel:      req.ConfidenceLevel,
		Notes:                req.Notes,
		CompletedExerciseIDs: req.CompletedExerciseIDs,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, log)
}

// GetHistory handles GET /api/progress/{rehabPatientID}/history
func (h *ProgressHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	rehabPatientID := r.PathValue("rehabPatientID")
	if rehabPatientID == "" {
		respondWithError(w, http.StatusBadRequest, "rehab patient ID is required")
		return
	}

	if err := canAccessPatient(r.Context(), h.access, identity, rehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	windowDays := 0
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "window_days must be a positive integer")
			return
		}
		windowDays = parsed
	}

	logs, err := h.service.History(r.Context(), rehabPatientID, windowDays)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetPerformance handles GET /api/exercises/{rehabPatientID}/performance.
// It serves the dashboard's weekly exercise view: the trailing seven days
// of per-exercise set records.
func (h *ProgressHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	rehabPatientID := r.PathValue("rehabPatientID")
	if rehabPatientID == "" {
		respondWithError(w, http.StatusBadRequest, "rehab patient ID is required")
		return
	}

	if err := canAccessPatient(r.Context(), h.access, identity, rehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	logs, err := h.service.History(r.Context(), rehabPatientID, services.DefaultHistoryWindowDays)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	performance := make([]map[string]interface{}, 0, len(logs))
	for _, log := range logs {
		performance = append(performance, map[string]interface{}{
			"day":                    log.Day,
			"exercise_performance":   log.ExercisePerformance,
			"completed_exercise_ids": log.CompletedExerciseIDs,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"performance": performance,
		"count":       len(performance),
	})
}
