package model

type Operation struct {
	Base
	PatientID     ID     `json:"patientId,omitempty"`
	Type          string `json:"type,omitempty"`
	Chirurgien    string `json:"chirurgien,omitempty"`
	Salle         string `json:"salle,omitempty"`
	Statut        string `json:"statut,omitempty"`
	DateOperation string `json:"dateOperation,omitempty"`

	// Legacy snake_case encodings still emitted by some endpoints.
	DateOperationLegacy string `json:"date_operation,omitempty"`
	CreatedAtLegacy     string `json:"created_at,omitempty"`
}

type CreateOperationRequest struct {
	PatientID     ID     `json:"patientId" validate:"required"`
	Type          string `json:"type" validate:"required"`
	Chirurgien    string `json:"chirurgien" validate:"required"`
	Salle         string `json:"salle,omitempty"`
	DateOperation string `json:"dateOperation" validate:"required"`
}

type UpdateOperationRequest struct {
	Chirurgien    *string `json:"chirurgien,omitempty"`
	Salle         *string `json:"salle,omitempty"`
	Statut        *string `json:"statut,omitempty"`
	DateOperation *string `json:"dateOperation,omitempty"`
}
