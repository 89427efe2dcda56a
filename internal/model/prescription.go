package model

type Medication struct {
	Nom      string `json:"nom" validate:"required"`
	Dosage   string `json:"dosage" validate:"required"`
	Schedule string `json:"frequence,omitempty"`
}

type Prescription struct {
	Base
	PatientID        ID           `json:"patientId,omitempty"`
	ConsultationID   ID           `json:"consultationId,omitempty"`
	Medicaments      []Medication `json:"medicaments,omitempty"`
	Instructions     string       `json:"instructions,omitempty"`
	DatePrescription string       `json:"datePrescription,omitempty"`
}

type CreatePrescriptionRequest struct {
	PatientID      ID           `json:"patientId" validate:"required"`
	ConsultationID ID           `json:"consultationId,omitempty"`
	Medicaments    []Medication `json:"medicaments" validate:"required,min=1,dive"`
	Instructions   string       `json:"instructions,omitempty" validate:"max=2000"`
}

type UpdatePrescriptionRequest struct {
	Medicaments  []Medication `json:"medicaments,omitempty" validate:"omitempty,dive"`
	Instructions *string      `json:"instructions,omitempty" validate:"omitempty,max=2000"`
}
