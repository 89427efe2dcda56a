package model

type Hospitalization struct {
	Base
	PatientID ID     `json:"patientId,omitempty"`
	ChambreID ID     `json:"chambreId,omitempty"`
	Motif     string `json:"motif,omitempty"`
	Statut    string `json:"statut,omitempty"`
	DateDebut string `json:"dateDebut,omitempty"`
	DateFin   string `json:"dateFin,omitempty"`

	// Legacy snake_case encodings still emitted by some endpoints.
	DateDebutLegacy string `json:"date_debut,omitempty"`
	DateFinLegacy   string `json:"date_fin,omitempty"`
	CreatedAtLegacy string `json:"created_at,omitempty"`
}

type CreateHospitalizationRequest struct {
	PatientID ID     `json:"patientId" validate:"required"`
	ChambreID ID     `json:"chambreId" validate:"required"`
	Motif     string `json:"motif" validate:"required,max=1000"`
	DateDebut string `json:"dateDebut" validate:"required"`
}

type UpdateHospitalizationRequest struct {
	ChambreID *ID     `json:"chambreId,omitempty"`
	Motif     *string `json:"motif,omitempty" validate:"omitempty,max=1000"`
	DateFin   *string `json:"dateFin,omitempty"`
}

// EndHospitalizationRequest closes a stay; an empty DateFin lets the API use today.
type EndHospitalizationRequest struct {
	DateFin string `json:"dateFin,omitempty"`
}
