package model

type Room struct {
	Base
	Numero     string `json:"numero,omitempty"`
	Type       string `json:"type,omitempty"`
	Capacite   int    `json:"capacite,omitempty"`
	ServiceID  ID     `json:"serviceId,omitempty"`
	Disponible bool   `json:"disponible,omitempty"`
}

type CreateRoomRequest struct {
	Numero    string `json:"numero" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Capacite  int    `json:"capacite" validate:"required,gte=1"`
	ServiceID ID     `json:"serviceId" validate:"required"`
}

type UpdateRoomRequest struct {
	Type       *string `json:"type,omitempty"`
	Capacite   *int    `json:"capacite,omitempty" validate:"omitempty,gte=1"`
	Disponible *bool   `json:"disponible,omitempty"`
}
