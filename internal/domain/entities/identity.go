package entities

// Role distinguishes the two caller kinds the boundary knows about
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Identity is the already-authenticated caller handed to us by the auth
// gateway. Token verification is not this service's concern; handlers only
// perform domain ownership checks against these fields.
type Identity struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	DoctorID       string `json:"doctor_id,omitempty"`
	RehabPatientID string `json:"rehab_patient_id,omitempty"`
}

// IsValid reports whether the role is one the boundary recognizes
func (r Role) IsValid() bool {
	return r == RoleDoctor || r == RolePatient
}

// IsDoctor reports whether the caller acts as a doctor
func (i Identity) IsDoctor() bool {
	return i.Role == RoleDoctor
}

// IsPatient reports whether the caller acts as a patient
func (i Identity) IsPatient() bool {
	return i.Role == RolePatient
}
