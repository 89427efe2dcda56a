package model

type PatientStatus string

const (
	PatientStatusActive       PatientStatus = "actif"
	PatientStatusHospitalized PatientStatus = "hospitalise"
	PatientStatusInactive     PatientStatus = "inactif"
)

type Patient struct {
	Base
	Nom           string        `json:"nom,omitempty"`
	Prenom        string        `json:"prenom,omitempty"`
	Email         string        `json:"email,omitempty"`
	Telephone     string        `json:"telephone,omitempty"`
	DateNaissance string        `json:"dateNaissance,omitempty"`
	Sexe          string        `json:"sexe,omitempty"`
	Adresse       string        `json:"adresse,omitempty"`
	Statut        PatientStatus `json:"statut,omitempty"`
	Hospitalise   bool          `json:"hospitalise,omitempty"`
}

func (p Patient) FullName() string {
	switch {
	case p.Prenom == "":
		return p.Nom
	case p.Nom == "":
		return p.Prenom
	}
	return p.Prenom + " " + p.Nom
}

type CreatePatientRequest struct {
	Nom           string `json:"nom" validate:"required"`
	Prenom        string `json:"prenom" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone     string `json:"telephone,omitempty"`
	DateNaissance string `json:"dateNaissance" validate:"required"`
	Sexe          string `json:"sexe,omitempty" validate:"omitempty,oneof=M F"`
	Adresse       string `json:"adresse,omitempty"`
}

type UpdatePatientRequest struct {
	Nom       *string        `json:"nom,omitempty" validate:"omitempty,min=1"`
	Prenom    *string        `json:"prenom,omitempty" validate:"omitempty,min=1"`
	Email     *string        `json:"email,omitempty" validate:"omitempty,email"`
	Telephone *string        `json:"telephone,omitempty"`
	Adresse   *string        `json:"adresse,omitempty"`
	Statut    *PatientStatus `json:"statut,omitempty"`
}
