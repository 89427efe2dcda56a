package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	Base
	PatientID ID                `json:"patientId,omitempty"`
	Medecin   string            `json:"medecin,omitempty"`
	// Date is D/M/YYYY.
	Date   string            `json:"date,omitempty"`
	Heure  string            `json:"heure,omitempty"`
	Motif  string            `json:"motif,omitempty"`
	Statut AppointmentStatus `json:"statut,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID ID     `json:"patientId" validate:"required"`
	Medecin   string `json:"medecin" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Heure     string `json:"heure" validate:"required"`
	Motif     string `json:"motif" validate:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Date   *string            `json:"date,omitempty"`
	Heure  *string            `json:"heure,omitempty"`
	Motif  *string            `json:"motif,omitempty" validate:"omitempty,max=1000"`
	Statut *AppointmentStatus `json:"statut,omitempty" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
}
