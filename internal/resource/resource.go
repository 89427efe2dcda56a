package resource

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/store"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

// Refresh topics carried by the notification broker.
const (
	TopicPatientsRefresh = "patients.refresh"
	TopicRoomsRefresh    = "rooms.refresh"
)

const (
	KindEnd          store.OperationKind = "end"
	KindGetByService store.OperationKind = "getByService"
)

// Options carries the collaborators shared by every store.
type Options struct {
	Notifier  store.Notifier
	Validator *validator.Validate
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

func (o Options) config(entity, label, collection string) store.Config {
	if o.Validator == nil {
		o.Validator = store.NewValidator()
	}
	return store.Config{
		Entity:    entity,
		Label:     label,
		Endpoints: store.Endpoints{Collection: collection},
		Notifier:  o.Notifier,
		Validator: o.Validator,
		Logger:    o.Logger,
		Metrics:   o.Metrics,
	}
}

// scoped returns the "<collection>/<scope>/<id>" listing path builder.
func scoped(collection, scope string) func(string) string {
	return func(id string) string {
		return strings.TrimRight(collection, "/") + "/" + scope + "/" + url.PathEscape(id)
	}
}

func NewPatientStore(req api.Requester, opts Options) *store.Store[model.Patient] {
	return store.New[model.Patient](req, opts.config("patient", "Patient", "/patients"))
}

func NewConsultationStore(req api.Requester, opts Options) *store.Store[model.Consultation] {
	cfg := opts.config("consultation", "Consultation", "/consultations")
	cfg.Endpoints.ByParent = scoped("/consultations", "patient")
	return store.New[model.Consultation](req, cfg)
}

func NewAppointmentStore(req api.Requester, opts Options) *store.Store[model.Appointment] {
	cfg := opts.config("appointment", "Appointment", "/rendez-vous")
	cfg.Endpoints.ByParent = scoped("/rendez-vous", "patient")
	return store.New[model.Appointment](req, cfg)
}

func NewOperationStore(req api.Requester, opts Options) *store.Store[model.Operation] {
	cfg := opts.config("operation", "Operation", "/operations")
	cfg.Endpoints.ByParent = scoped("/operations", "patient")
	return store.New[model.Operation](req, cfg)
}

func NewPrescriptionStore(req api.Requester, opts Options) *store.Store[model.Prescription] {
	cfg := opts.config("prescription", "Prescription", "/prescriptions")
	cfg.Endpoints.ByParent = scoped("/prescriptions", "patient")
	return store.New[model.Prescription](req, cfg)
}

func NewServiceStore(req api.Requester, opts Options) *store.Store[model.Service] {
	return store.New[model.Service](req, opts.config("service", "Service", "/services"))
}

// NewRoomStore lists rooms globally or per hospital service.
func NewRoomStore(req api.Requester, opts Options) *store.Store[model.Room] {
	cfg := opts.config("room", "Room", "/chambres")
	cfg.Endpoints.ByParent = scoped("/chambres", "service")
	cfg.ParentKind = KindGetByService
	return store.New[model.Room](req, cfg)
}
