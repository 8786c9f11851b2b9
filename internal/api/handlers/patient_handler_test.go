package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rehabnet/rehabtracking/backend/internal/api/handlers"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

type stubPatientService struct {
	patients map[string]*entities.Patient
	profiles map[string]*entities.RehabProfile
	deleted  []string
}

func (s *stubPatientService) Get(ctx context.Context, rehabPatientID string) (*entities.Patient, error) {
	patient, ok := s.patients[rehabPatientID]
	if !ok {
		return nil, apperrors.NewNotFoundError("patient not found")
	}
	return patient, nil
}

func (s *stubPatientService) GetProfile(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error) {
	profile, ok := s.profiles[rehabPatientID]
	if !ok {
		return nil, apperrors.NewNotFoundError("rehab profile not found")
	}
	return profile, nil
}

func (s *stubPatientService) Delete(ctx context.Context, rehabPatientID string) error {
	if _, ok := s.patients[rehabPatientID]; !ok {
		return apperrors.NewNotFoundError("patient not found")
	}
	s.deleted = append(s.deleted, rehabPatientID)
	delete(s.patients, rehabPatientID)
	return nil
}

func TestPatientHandler_GetStreak(t *testing.T) {
	t.Run("patient reads their own streak", func(t *testing.T) {
		lastUpdate := time.Now().Add(-24 * time.Hour)
		service := &stubPatientService{patients: map[string]*entities.Patient{
			"patient-1": {RehabPatientID: "patient-1", Streak: 5, LastStreakUpdate: &lastUpdate},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetStreak, http.MethodGet, "/api/patients/patient-1/streak", "", patientIdentity())

		assert.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]interface{}
		err := json.Unmarshal(rec.Body.Bytes(), &payload)
		assert.NoError(t, err)
		assert.Equal(t, float64(5), payload["streak"])
	})

	t.Run("unassigned doctor is forbidden", func(t *testing.T) {
		service := &stubPatientService{patients: map[string]*entities.Patient{
			"patient-1": {RehabPatientID: "patient-1", Streak: 5},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetStreak, http.MethodGet, "/api/patients/patient-1/streak", "", doctorIdentity())

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown patient maps to a 404", func(t *testing.T) {
		service := &stubPatientService{patients: map[string]*entities.Patient{}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetStreak, http.MethodGet, "/api/patients/patient-1/streak", "", patientIdentity())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPatientHandler_GetProfile(t *testing.T) {
	t.Run("patient reads their own profile", func(t *testing.T) {
		service := &stubPatientService{profiles: map[string]*entities.RehabProfile{
			"patient-1": {
				ID:               "profile-1",
				RehabPatientID:   "patient-1",
				AssignedDoctorID: "doctor-1",
				PrimaryDiagnosis: "ACL reconstruction",
				Status:           entities.RehabStatusActive,
			},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetProfile, http.MethodGet, "/api/patients/patient-1/profile", "", patientIdentity())

		assert.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]interface{}
		err := json.Unmarshal(rec.Body.Bytes(), &payload)
		assert.NoError(t, err)
		assert.Equal(t, "doctor-1", payload["assigned_doctor_id"])
		assert.Equal(t, "ACL reconstruction", payload["primary_diagnosis"])
	})

	t.Run("unassigned doctor is forbidden", func(t *testing.T) {
		service := &stubPatientService{profiles: map[string]*entities.RehabProfile{
			"patient-1": {ID: "profile-1", RehabPatientID: "patient-1"},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetProfile, http.MethodGet, "/api/patients/patient-1/profile", "", doctorIdentity())

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing profile maps to a 404", func(t *testing.T) {
		service := &stubPatientService{profiles: map[string]*entities.RehabProfile{}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.GetProfile, http.MethodGet, "/api/patients/patient-1/profile", "", patientIdentity())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPatientHandler_DeletePatient(t *testing.T) {
	t.Run("patient deletes their own account", func(t *testing.T) {
		service := &stubPatientService{patients: map[string]*entities.Patient{
			"patient-1": {RehabPatientID: "patient-1"},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.DeletePatient, http.MethodDelete, "/api/patients/patient-1", "", patientIdentity())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"patient-1"}, service.deleted)
	})

	t.Run("patient cannot delete another account", func(t *testing.T) {
		service := &stubPatientService{patients: map[string]*entities.Patient{
			"patient-2": {RehabPatientID: "patient-2"},
		}}
		handler := handlers.NewPatientHandler(service, &stubAccessService{})

		rec := doRequest(handler.DeletePatient, http.MethodDelete, "/api/patients/patient-2", "", patientIdentity())

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, service.deleted)
	})
}
