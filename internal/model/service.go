package model

// Service is a hospital department, not to be confused with Go services.
type Service struct {
	Base
	Nom         string `json:"nom,omitempty"`
	Description string `json:"description,omitempty"`
	Responsable string `json:"responsable,omitempty"`
}

type CreateServiceRequest struct {
	Nom         string `json:"nom" validate:"required"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Responsable string `json:"responsable,omitempty"`
}

type UpdateServiceRequest struct {
	Nom         *string `json:"nom,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Responsable *string `json:"responsable,omitempty"`
}
