package model

type Consultation struct {
	Base
	PatientID        ID     `json:"patientId,omitempty"`
	Medecin          string `json:"medecin,omitempty"`
	Motif            string `json:"motif,omitempty"`
	Diagnostic       string `json:"diagnostic,omitempty"`
	Statut           string `json:"statut,omitempty"`
	DateConsultation string `json:"dateConsultation,omitempty"`

	// Legacy snake_case encodings still emitted by some endpoints.
	DateConsultationLegacy string `json:"date_consultation,omitempty"`
	CreatedAtLegacy        string `json:"created_at,omitempty"`
}

type CreateConsultationRequest struct {
	PatientID        ID     `json:"patientId" validate:"required"`
	Medecin          string `json:"medecin" validate:"required"`
	Motif            string `json:"motif" validate:"required,max=1000"`
	Diagnostic       string `json:"diagnostic,omitempty" validate:"max=2000"`
	DateConsultation string `json:"dateConsultation" validate:"required"`
}

type UpdateConsultationRequest struct {
	Motif      *string `json:"motif,omitempty" validate:"omitempty,max=1000"`
	Diagnostic *string `json:"diagnostic,omitempty" validate:"omitempty,max=2000"`
	Statut     *string `json:"statut,omitempty"`
}
