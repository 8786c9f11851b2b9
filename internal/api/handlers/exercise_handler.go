package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rehabnet/rehabtracking/backend/internal/application/services"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// ExerciseService defines the exercise operations used by the handler.
type ExerciseService interface {
	Assign(ctx context.Context, input services.AssignExerciseInput) (*entities.ExerciseAssignment, error)
	Get(ctx context.Context, id string) (*entities.ExerciseAssignment, error)
	ListForPatient(ctx context.Context, rehabPatientID string) ([]*entities.ExerciseAssignment, error)
	Edit(ctx context.Context, id string, input services.EditExerciseInput) (*entities.ExerciseAssignment, error)
	CompleteSet(ctx context.Context, id string, confidenceScore *int) (*entities.ExerciseAssignment, int, error)
	Delete(ctx context.Context, id string) error
}

// ExerciseHandler handles exercise prescription and set completion routes.
type ExerciseHandler struct {
	service ExerciseService
	access  PatientAccessService
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(service ExerciseService, access PatientAccessService) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
		access:  access,
	}
}

type assignExerciseRequest struct {
	RehabPatientID      string `json:"rehab_patient_id"`
	ExerciseKind        string `json:"exercise_kind"`
	NumberOfSets        int    `json:"number_of_sets"`
	TimePerSetSeconds   int    `json:"time_per_set_seconds"`
	ConfidenceThreshold int    `json:"confidence_threshold"`
}

type editExerciseRequest struct {
	ExerciseKind        *string `json:"exercise_kind"`
	NumberOfSets        *int    `json:"number_of_sets"`
	TimePerSetSeconds   *int    `json:"time_per_set_seconds"`
	ConfidenceThreshold *int    `json:"confidence_threshold"`
}

type completeSetRequest struct {
	ConfidenceScore *int `json:"confidence_score"`
}

// AssignExercise handles POST /api/exercises
func (h *ExerciseHandler) AssignExercise(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !identity.IsDoctor() {
		respondWithError(w, http.StatusForbidden, "only doctors can assign exercises")
		return
	}

	var req assignExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RehabPatientID == "" {
		respondWithError(w, http.StatusBadRequest, "rehab_patient_id is required")
		return
	}

	if err := h.access.VerifyDoctorAccess(r.Context(), identity.DoctorID, req.RehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	exercise, err := h.service.Assign(r.Context(), services.AssignExerciseInput{
		RehabPatientID:      req.RehabPatientID,
		ExerciseKind:        entities.ExerciseKind(req.ExerciseKind),
		NumberOfSets:        req.NumberOfSets,
		TimePerSetSeconds:   req.TimePerSetSeconds,
		ConfidenceThreshold: req.ConfidenceThreshold,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, exercise)
}

// ListExercises handles GET /api/exercises/{rehabPatientID}. Listing runs
// the daily reset, so the returned assignments always show today's state.
func (h *ExerciseHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
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

	exercises, err := h.service.ListForPatient(r.Context(), rehabPatientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"exercises": exercises,
		"count":     len(exercises),
	})
}

// EditExercise handles PUT /api/exercises/{id}
func (h *ExerciseHandler) EditExercise(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !identity.IsDoctor() {
		respondWithError(w, http.StatusForbidden, "only doctors can edit exercises")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "exercise ID is required")
		return
	}

	exercise, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := h.access.VerifyDoctorAccess(r.Context(), identity.DoctorID, exercise.RehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	var req editExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := services.EditExerciseInput{
		NumberOfSets:        req.NumberOfSets,
		TimePerSetSeconds:   req.TimePerSetSeconds,
		ConfidenceThreshold: req.ConfidenceThreshold,
	}
	if req.ExerciseKind != nil {
		kind := entities.ExerciseKind(*req.ExerciseKind)
		input.ExerciseKind = &kind
	}

	updated, err := h.service.Edit(r.Context(), id, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteExercise handles DELETE /api/exercises/{id}
func (h *ExerciseHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !identity.IsDoctor() {
		respondWithError(w, http.StatusForbidden, "only doctors can delete exercises")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "exercise ID is required")
		return
	}

	exercise, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := h.access.VerifyDoctorAccess(r.Context(), identity.DoctorID, exercise.RehabPatientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CompleteSet handles POST /api/exercises/{id}/complete-set
func (h *ExerciseHandler) CompleteSet(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !identity.IsPatient() {
		respondWithError(w, http.StatusForbidden, "only patients can complete sets")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "exercise ID is required")
		return
	}

	exercise, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if exercise.RehabPatientID != identity.RehabPatientID {
		respondWithAppError(w, apperrors.NewUnauthorizedError("exercise does not belong to this patient"))
		return
	}

	var req completeSetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	updated, setNumber, err := h.service.CompleteSet(r.Context(), id, req.ConfidenceScore)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":    fmt.Sprintf("Set %d completed", setNumber),
		"set_number": setNumber,
		"assignment": updated,
	})
}
