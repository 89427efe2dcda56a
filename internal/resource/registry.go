package resource

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/store"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
)

// Registry owns one store per entity type and routes refresh notifications
// between them. Stores never reference each other directly.
type Registry struct {
	Patients         *store.Store[model.Patient]
	Consultations    *store.Store[model.Consultation]
	Appointments     *store.Store[model.Appointment]
	Hospitalizations *HospitalizationStore
	Operations       *store.Store[model.Operation]
	Prescriptions    *store.Store[model.Prescription]
	Services         *store.Store[model.Service]
	Rooms            *store.Store[model.Room]

	bus    messaging.MessageBroker
	opts   Options
	logger zerolog.Logger
	views  map[string]entityView
}

// entityView is the type-erased face of a store used by the view server.
type entityView struct {
	snapshot func() interface{}
	version  func() uint64
	refresh  func(ctx context.Context) error
	remove   func(ctx context.Context, id string) error
}

func viewOf[T model.Entity](s *store.Store[T]) entityView {
	return entityView{
		snapshot: func() interface{} { return s.Snapshot() },
		version:  s.Version,
		refresh:  func(ctx context.Context) error { return refresh(ctx, s) },
		remove: func(ctx context.Context, id string) error {
			_, err := s.Remove(ctx, id)
			return err
		},
	}
}

// NewRegistry builds every store on req. When broker is nil, mutations are not
// announced and Start has nothing to subscribe to.
func NewRegistry(req api.Requester, broker messaging.Broker, opts Options) *Registry {
	if broker != nil && opts.Notifier == nil {
		opts.Notifier = NewBrokerNotifier(broker, opts.Metrics, opts.Logger)
	}
	if opts.Validator == nil {
		opts.Validator = store.NewValidator()
	}

	r := &Registry{
		Patients:         NewPatientStore(req, opts),
		Consultations:    NewConsultationStore(req, opts),
		Appointments:     NewAppointmentStore(req, opts),
		Hospitalizations: NewHospitalizationStore(req, opts),
		Operations:       NewOperationStore(req, opts),
		Prescriptions:    NewPrescriptionStore(req, opts),
		Services:         NewServiceStore(req, opts),
		Rooms:            NewRoomStore(req, opts),
		opts:             opts,
		logger:           opts.Logger.With().Str("component", "registry").Logger(),
	}
	if broker != nil {
		r.bus = messaging.NewBrokerAdapter(broker, r.logger)
	}

	r.views = map[string]entityView{
		"patients":         viewOf(r.Patients),
		"consultations":    viewOf(r.Consultations),
		"appointments":     viewOf(r.Appointments),
		"hospitalizations": viewOf(r.Hospitalizations.Store),
		"operations":       viewOf(r.Operations),
		"prescriptions":    viewOf(r.Prescriptions),
		"services":         viewOf(r.Services),
		"rooms":            viewOf(r.Rooms),
	}
	return r
}

// Start subscribes the refresh topics. Subscriptions end with ctx.
func (r *Registry) Start(ctx context.Context) error {
	if r.bus == nil {
		return nil
	}
	if err := r.bus.Subscribe(ctx, TopicPatientsRefresh, r.refreshHandler(ctx, TopicPatientsRefresh, func(ctx context.Context) error {
		return refresh(ctx, r.Patients)
	})); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", TopicPatientsRefresh, err)
	}
	if err := r.bus.Subscribe(ctx, TopicRoomsRefresh, r.refreshHandler(ctx, TopicRoomsRefresh, func(ctx context.Context) error {
		return refresh(ctx, r.Rooms)
	})); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", TopicRoomsRefresh, err)
	}
	return nil
}

func (r *Registry) refreshHandler(ctx context.Context, topic string, run func(context.Context) error) func([]byte) error {
	return func(payload []byte) error {
		ev, err := decodeEvent(payload)
		if err != nil {
			return err
		}
		r.opts.Metrics.CountNotification(topic, "in")
		r.logger.Debug().
			Str("topic", topic).
			Str("source", ev.Entity).
			Str("kind", string(ev.Kind)).
			Msg("refreshing after notification")
		return run(ctx)
	}
}

// refresh reloads whatever the store currently represents: the parent-scoped
// list when one is loaded, the full list otherwise.
func refresh[T model.Entity](ctx context.Context, s *store.Store[T]) error {
	if parent := s.ParentID(); parent != "" {
		_, err := s.FetchByParent(ctx, parent)
		return err
	}
	_, err := s.FetchAll(ctx)
	return err
}

// LoadPatientRecord loads a patient together with their stays, operations and
// consultations. The fetches run concurrently and each settles on its own
// store; the first error is returned once all have finished.
func (r *Registry) LoadPatientRecord(ctx context.Context, patientID string) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := r.Patients.FetchByID(ctx, patientID)
		return err
	})
	g.Go(func() error {
		_, err := r.Hospitalizations.FetchByParent(ctx, patientID)
		return err
	})
	g.Go(func() error {
		_, err := r.Operations.FetchByParent(ctx, patientID)
		return err
	})
	g.Go(func() error {
		_, err := r.Consultations.FetchByParent(ctx, patientID)
		return err
	})
	return g.Wait()
}

// Entities lists the entity names accepted by Snapshot, sorted.
func (r *Registry) Entities() []string {
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) view(entity string) (entityView, error) {
	v, ok := r.views[entity]
	if !ok {
		return entityView{}, apperrors.NotFound(fmt.Sprintf("entity %q", entity), nil)
	}
	return v, nil
}

// Snapshot returns the state of the named store.
func (r *Registry) Snapshot(entity string) (interface{}, error) {
	v, err := r.view(entity)
	if err != nil {
		return nil, err
	}
	return v.snapshot(), nil
}

// Refresh reloads the named store.
func (r *Registry) Refresh(ctx context.Context, entity string) error {
	v, err := r.view(entity)
	if err != nil {
		return err
	}
	return v.refresh(ctx)
}

// Remove deletes id through the named store.
func (r *Registry) Remove(ctx context.Context, entity, id string) error {
	v, err := r.view(entity)
	if err != nil {
		return err
	}
	return v.remove(ctx, id)
}

// Version returns the version of the named store, 0 for unknown names.
func (r *Registry) Version(entity string) uint64 {
	if v, ok := r.views[entity]; ok {
		return v.version()
	}
	return 0
}
