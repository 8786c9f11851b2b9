package handlers

import (
	"context"
	"net/http"

	"github.com/rehabnet/rehabtracking/backend/internal/api/middleware"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	apperrors "github.com/rehabnet/rehabtracking/backend/pkg/errors"
)

// PatientAccessService checks doctor-to-patient assignment
type PatientAccessService interface {
	VerifyDoctorAccess(ctx context.Context, doctorID, rehabPatientID string) error
}

// identityFromRequest pulls the caller identity the auth middleware staged
// on the context. A missing identity means the route was wired without the
// middleware, which is a server bug, not a client error.
func identityFromRequest(r *http.Request) (entities.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return entities.Identity{}, apperrors.NewInternalError("caller identity missing from request context", nil)
	}
	return identity, nil
}

// canAccessPatient enforces the ownership rule shared by every
// patient-scoped read: the patient themselves, or a doctor assigned to
// them through a rehab profile.
func canAccessPatient(ctx context.Context, access PatientAccessService, identity entities.Identity, rehabPatientID string) error {
	switch {
	case identity.IsPatient():
		if identity.RehabPatientID != rehabPatientID {
			return apperrors.NewUnauthorizedError("patients can only access their own records")
		}
		return nil
	case identity.IsDoctor():
		return access.VerifyDoctorAccess(ctx, identity.DoctorID, rehabPatientID)
	default:
		return apperrors.NewUnauthorizedError("unrecognized caller role")
	}
}
