package handlers

import (
	"context"
	"net/http"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// PatientService defines the patient operations used by the handler.
type PatientService interface {
	Get(ctx context.Context, rehabPatientID string) (*entities.Patient, error)
	GetProfile(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error)
	Delete(ctx context.Context, rehabPatientID string) error
}

// PatientHandler handles patient streak reads and account removal.
type PatientHandler struct {
	service PatientService
	access  PatientAccessService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service PatientService, access PatientAccessService) *PatientHandler {
	return &PatientHandler{
		service: service,
		access:  access,
	}
}

// GetStreak handles GET /api/patients/{rehabPatientID}/streak
func (h *PatientHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
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

	patient, err := h.service.Get(r.Context(), rehabPatientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rehab_patient_id":   patient.RehabPatientID,
		"streak":             patient.Streak,
		"last_streak_update": patient.LastStreakUpdate,
	})
}

// GetProfile handles GET /api/patients/{rehabPatientID}/profile
func (h *PatientHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.service.GetProfile(r.Context(), rehabPatientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// DeletePatient handles DELETE /api/patients/{rehabPatientID}. The delete
// cascades over the patient's assignments, logs, and rehab profile.
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), rehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
